// Package telegram adapts the Bot API to the bot's handlers: command
// routing, ordered message delivery and the per-chat worker pool.
package telegram

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Sender is the part of *bot.Bot that handlers use.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

var _ Sender = (*bot.Bot)(nil)

// HandlerFunc processes a single update.
type HandlerFunc func(ctx context.Context, s Sender, upd *models.Update)

// CommandHandler handles a routed command message. A returned error is
// passed to the router's error handler.
type CommandHandler func(ctx context.Context, s Sender, msg *models.Message) error
