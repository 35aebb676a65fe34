package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"telegraphbot/internal/adapter/telegram"
	"telegraphbot/internal/platform/logger"
)

// ThrottledText отправляется при превышении лимита.
const ThrottledText = "too many requests, slow down"

// RateLimiter restricts request frequency per user.
type RateLimiter struct {
	mu   sync.Mutex
	last map[int64]time.Time
	rate time.Duration
	now  func() time.Time
}

// NewRateLimiter creates limiter allowing one update per rate. A zero rate
// disables limiting.
func NewRateLimiter(rate time.Duration) *RateLimiter {
	return &RateLimiter{last: make(map[int64]time.Time), rate: rate, now: time.Now}
}

// Allow returns false if user hits the limit.
func (r *RateLimiter) Allow(userID int64) bool {
	if r.rate <= 0 {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if t, ok := r.last[userID]; ok && now.Sub(t) < r.rate {
		return false
	}
	r.last[userID] = now
	return true
}

// Prune удаляет записи старше olderThan и возвращает их количество.
func (r *RateLimiter) Prune(olderThan time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-olderThan)
	n := 0
	for id, t := range r.last {
		if t.Before(cutoff) {
			delete(r.last, id)
			n++
		}
	}
	return n
}

// Len returns the number of tracked users.
func (r *RateLimiter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.last)
}

// Middleware checks rate limit before calling next handler.
func (r *RateLimiter) Middleware(next telegram.HandlerFunc) telegram.HandlerFunc {
	return func(ctx context.Context, s telegram.Sender, upd *models.Update) {
		uid := telegram.UserID(upd)
		if uid == 0 || r.Allow(uid) {
			next(ctx, s, upd)
			return
		}
		log := logger.FromContext(ctx)
		log.Debug("throttled", slog.Int64("user_id", uid))
		if chat := telegram.ChatID(upd); chat != 0 && s != nil {
			if _, err := s.SendMessage(ctx, &bot.SendMessageParams{ChatID: chat, Text: ThrottledText}); err != nil {
				log.Warn("send throttle notice", slog.Any("err", err))
			}
		}
	}
}
