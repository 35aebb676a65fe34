package telegram

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Outgoing is a text message to send in response to an inbound message.
type Outgoing struct {
	Text string
	// Reply threads the message to the inbound one.
	Reply bool
}

// Reply builds a message quoted as a reply to the inbound message.
func Reply(text string) Outgoing { return Outgoing{Text: text, Reply: true} }

// Answer builds a plain message to the inbound message's chat.
func Answer(text string) Outgoing { return Outgoing{Text: text} }

// Params returns the sendMessage parameters targeting the chat and topic
// of to.
func (o Outgoing) Params(to *models.Message) *bot.SendMessageParams {
	p := &bot.SendMessageParams{
		ChatID:          to.Chat.ID,
		MessageThreadID: to.MessageThreadID,
		Text:            o.Text,
	}
	if o.Reply {
		p.ReplyParameters = &models.ReplyParameters{MessageID: to.ID}
	}
	return p
}

// Delivery is the outcome of Deliver.
type Delivery struct {
	// Sent holds the messages Telegram accepted, in order.
	Sent []*models.Message
	// Err is the error of the first failed send, exactly as the Sender
	// returned it.
	Err error
}

// OK reports whether every message was sent.
func (d Delivery) OK() bool { return d.Err == nil }

// Deliver sends out one by one, waiting for each send to finish before
// starting the next. The first failure stops the sequence; later messages
// are not attempted.
func Deliver(ctx context.Context, s Sender, to *models.Message, out ...Outgoing) Delivery {
	d := Delivery{Sent: make([]*models.Message, 0, len(out))}
	for _, o := range out {
		m, err := s.SendMessage(ctx, o.Params(to))
		if err != nil {
			d.Err = err
			return d
		}
		d.Sent = append(d.Sent, m)
	}
	return d
}
