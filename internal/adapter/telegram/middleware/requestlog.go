package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"

	"telegraphbot/internal/adapter/telegram"
	"telegraphbot/internal/platform/logger"
)

// RequestLogger attaches a per-update logger to the context and logs how
// long the update took.
func RequestLogger(base *slog.Logger) Middleware {
	return func(next telegram.HandlerFunc) telegram.HandlerFunc {
		return func(ctx context.Context, s telegram.Sender, upd *models.Update) {
			log := base.With(
				slog.String("request_id", uuid.NewString()),
				slog.Int64("update_id", upd.ID),
				slog.Int64("chat_id", telegram.ChatID(upd)),
			)
			start := time.Now()
			next(logger.WithContext(ctx, log), s, upd)
			log.Debug("update handled", slog.Duration("dur", time.Since(start)))
		}
	}
}
