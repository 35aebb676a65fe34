package telegram

import (
	"strings"
	"unicode"
)

// Command is a parsed bot command such as "/start@my_bot payload".
type Command struct {
	Name    string
	Mention string
	Args    string
}

// ParseCommand extracts the command at the start of text. ok is false when
// text is not a command.
func ParseCommand(text string) (cmd Command, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}
	head, args := text[1:], ""
	if i := strings.IndexFunc(head, unicode.IsSpace); i >= 0 {
		head, args = head[:i], strings.TrimSpace(head[i:])
	}
	name, mention, at := strings.Cut(head, "@")
	if name == "" || (at && mention == "") {
		return Command{}, false
	}
	return Command{Name: name, Mention: mention, Args: args}, true
}

// For reports whether the command is addressed to the bot named username.
// Commands without a mention are addressed to every bot in the chat.
func (c Command) For(username string) bool {
	return c.Mention == "" || username == "" || strings.EqualFold(c.Mention, username)
}
