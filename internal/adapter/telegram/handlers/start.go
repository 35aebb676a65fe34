package handlers

import (
	"context"

	"github.com/go-telegram/bot/models"

	"telegraphbot/internal/adapter/telegram"
)

const (
	// PhotoPrompt tells the user what the bot does.
	PhotoPrompt = "Send me a photo and I will upload it to telegra.ph"
	// Credits names the author.
	Credits = "Created by @HeavyWay"
)

// Greeting is the reply to /start for a user called firstName.
func Greeting(firstName string) string {
	return "Hey, " + firstName + "!"
}

// Start handles /start command: a greeting quoted as a reply, then the
// prompt and the credits. A failed send aborts the rest and is returned
// as is.
func Start(ctx context.Context, s telegram.Sender, msg *models.Message) error {
	var firstName string
	if msg.From != nil {
		firstName = msg.From.FirstName
	}
	return telegram.Deliver(ctx, s, msg,
		telegram.Reply(Greeting(firstName)),
		telegram.Answer(PhotoPrompt),
		telegram.Answer(Credits),
	).Err
}
