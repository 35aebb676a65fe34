package middleware

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"telegraphbot/internal/adapter/telegram"
	"telegraphbot/internal/platform/logger"
)

// DeniedText отправляется пользователю, которому доступ запрещён.
const DeniedText = "access denied"

// ACL проверяет доступ по списку разрешённых Telegram user IDs.
// Пустой список разрешает всех.
type ACL struct{ allowed map[int64]struct{} }

// NewACL создаёт ACL по списку ID
func NewACL(ids []int64) *ACL {
	m := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return &ACL{allowed: m}
}

// IsAllowed сообщает, имеет ли пользователь доступ
func (a *ACL) IsAllowed(id int64) bool {
	if len(a.allowed) == 0 {
		return true
	}
	_, ok := a.allowed[id]
	return ok
}

// Middleware блокирует выполнение хендлера для неразрешённых пользователей
func (a *ACL) Middleware(next telegram.HandlerFunc) telegram.HandlerFunc {
	return func(ctx context.Context, s telegram.Sender, upd *models.Update) {
		uid := telegram.UserID(upd)
		if uid == 0 || a.IsAllowed(uid) {
			next(ctx, s, upd)
			return
		}
		log := logger.FromContext(ctx)
		log.Info("access denied", slog.Int64("user_id", uid))
		if chat := telegram.ChatID(upd); chat != 0 && s != nil {
			if _, err := s.SendMessage(ctx, &bot.SendMessageParams{ChatID: chat, Text: DeniedText}); err != nil {
				log.Warn("send denial", slog.Any("err", err))
			}
		}
	}
}
