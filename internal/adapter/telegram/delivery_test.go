package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegraphbot/internal/adapter/telegram/telegramtest"
)

func TestOutgoing_Params(t *testing.T) {
	in := telegramtest.Message(-100500, 7, "Ana", "/start")
	in.MessageThreadID = 12

	reply := Reply("hi").Params(in)
	assert.Equal(t, int64(-100500), reply.ChatID)
	assert.Equal(t, 12, reply.MessageThreadID)
	assert.Equal(t, "hi", reply.Text)
	require.NotNil(t, reply.ReplyParameters)
	assert.Equal(t, in.ID, reply.ReplyParameters.MessageID)

	answer := Answer("plain").Params(in)
	assert.Equal(t, int64(-100500), answer.ChatID)
	assert.Equal(t, 12, answer.MessageThreadID)
	assert.Nil(t, answer.ReplyParameters)
}

func TestDeliver_SendsInOrder(t *testing.T) {
	s := &telegramtest.Sender{}
	in := telegramtest.Message(1, 1, "Ana", "/start")

	d := Deliver(context.Background(), s, in, Reply("a"), Answer("b"), Answer("c"))

	require.True(t, d.OK())
	assert.Len(t, d.Sent, 3)
	assert.Equal(t, []string{"a", "b", "c"}, s.Texts())
	assert.Equal(t, "a", d.Sent[0].Text)
}

func TestDeliver_StopsAtFirstFailure(t *testing.T) {
	boom := errors.New("network down")
	for failAt := 1; failAt <= 3; failAt++ {
		s := &telegramtest.Sender{Fail: telegramtest.FailOn(failAt, boom)}
		d := Deliver(context.Background(), s, telegramtest.Message(1, 1, "Ana", "/start"),
			Reply("a"), Answer("b"), Answer("c"))

		assert.False(t, d.OK())
		assert.Same(t, boom, d.Err, "error must be returned unmodified")
		assert.Equal(t, failAt, s.Calls(), "no send after the failing one")
		assert.Len(t, d.Sent, failAt-1)
	}
}

func TestDeliver_Empty(t *testing.T) {
	s := &telegramtest.Sender{}
	d := Deliver(context.Background(), s, telegramtest.Message(1, 1, "Ana", "/start"))
	assert.True(t, d.OK())
	assert.Empty(t, d.Sent)
	assert.Zero(t, s.Calls())
}
