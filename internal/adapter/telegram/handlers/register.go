// Package handlers contains the bot's command handlers and their
// registration.
package handlers

import (
	"telegraphbot/internal/adapter/telegram"
	"telegraphbot/internal/adapter/telegram/state"
)

var descriptions = map[string]string{
	"start": "Start the bot",
}

// RegisterUser binds the user commands to r. /start works in any state.
func RegisterUser(r telegram.CommandRouter) {
	r.OnCommand("start", state.Any, Start)
}

// Description returns the command menu text for cmd.
func Description(cmd string) string {
	if d, ok := descriptions[cmd]; ok {
		return d
	}
	return cmd
}
