// Package telegramtest provides test doubles for the telegram adapter.
package telegramtest

import (
	"context"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Sender records SendMessage calls. Fail, when set, is consulted before
// each call with the 1-based call number; a non-nil result is returned as
// the call's error and the message is not recorded as sent.
type Sender struct {
	Fail func(call int, p *bot.SendMessageParams) error

	mu     sync.Mutex
	calls  int
	sent   []*bot.SendMessageParams
	nextID int
}

// SendMessage implements telegram.Sender.
func (s *Sender) SendMessage(_ context.Context, p *bot.SendMessageParams) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.Fail != nil {
		if err := s.Fail(s.calls, p); err != nil {
			return nil, err
		}
	}
	s.sent = append(s.sent, p)
	s.nextID++
	chatID, _ := p.ChatID.(int64)
	return &models.Message{ID: s.nextID, Chat: models.Chat{ID: chatID}, Text: p.Text}, nil
}

// Calls returns the number of SendMessage calls, failed ones included.
func (s *Sender) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Sent returns the parameters of successful calls in order.
func (s *Sender) Sent() []*bot.SendMessageParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*bot.SendMessageParams(nil), s.sent...)
}

// Texts returns the texts of successful calls in order.
func (s *Sender) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sent))
	for i, p := range s.sent {
		out[i] = p.Text
	}
	return out
}

// FailOn returns a Fail func failing call n with err.
func FailOn(n int, err error) func(int, *bot.SendMessageParams) error {
	return func(call int, _ *bot.SendMessageParams) error {
		if call == n {
			return err
		}
		return nil
	}
}

// Message builds an inbound text message.
func Message(chatID, userID int64, firstName, text string) *models.Message {
	return &models.Message{
		ID:   int(userID%1000) + 1,
		Chat: models.Chat{ID: chatID},
		From: &models.User{ID: userID, FirstName: firstName},
		Text: text,
	}
}

// Update wraps msg into an update.
func Update(id int64, msg *models.Message) *models.Update {
	return &models.Update{ID: id, Message: msg}
}
