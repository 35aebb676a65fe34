// Package middleware содержит телеграм-middleware: логирование запросов,
// ACL по списку пользователей и ограничение частоты.
package middleware

import (
	"context"

	"github.com/go-telegram/bot/models"

	"telegraphbot/internal/adapter/telegram"
)

// Middleware wraps telegram.HandlerFunc.
type Middleware func(telegram.HandlerFunc) telegram.HandlerFunc

// Chain applies middlewares in order: the first one is outermost.
func Chain(h telegram.HandlerFunc, mws ...Middleware) telegram.HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Only applies mw to updates selected by match; the rest go straight to the
// next handler.
func Only(match func(*models.Update) bool, mw Middleware) Middleware {
	return func(next telegram.HandlerFunc) telegram.HandlerFunc {
		wrapped := mw(next)
		return func(ctx context.Context, s telegram.Sender, upd *models.Update) {
			if match(upd) {
				wrapped(ctx, s, upd)
				return
			}
			next(ctx, s, upd)
		}
	}
}
