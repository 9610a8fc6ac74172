package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []tgbotapi.MessageConfig
}

func (s *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		s.sent = append(s.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

type handlerFunc func(ctx context.Context, bot Sender, message *tgbotapi.Message, args []string) error

func (f handlerFunc) Handle(ctx context.Context, bot Sender, message *tgbotapi.Message, args []string) error {
	return f(ctx, bot, message, args)
}

func command(text string) *tgbotapi.Message {
	cmd := text
	if i := strings.IndexByte(text, ' '); i >= 0 {
		cmd = text[:i]
	}
	return &tgbotapi.Message{
		MessageID: 1,
		Text:      text,
		Chat:      &tgbotapi.Chat{ID: 77},
		From:      &tgbotapi.User{ID: 5},
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}
}

func TestRouter_DispatchesWithArgs(t *testing.T) {
	logger, _ := test.NewNullLogger()
	r := NewRouter(logger)

	var got []string
	r.RegisterCommand("link", handlerFunc(func(_ context.Context, _ Sender, _ *tgbotapi.Message, args []string) error {
		got = args
		return nil
	}))

	sender := &recordingSender{}
	r.HandleMessage(context.Background(), sender, command("/link abc-123"))

	assert.Equal(t, []string{"abc-123"}, got)
	assert.Empty(t, sender.sent)
}

func TestRouter_UnknownCommand(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := NewRouter(logger)

	sender := &recordingSender{}
	r.HandleMessage(context.Background(), sender, command("/nope"))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Text, "Unknown command")
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestRouter_HandlerErrorIsReported(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := NewRouter(logger)
	r.RegisterCommand("dibs", handlerFunc(func(context.Context, Sender, *tgbotapi.Message, []string) error {
		return errors.New("db down")
	}))

	sender := &recordingSender{}
	r.HandleMessage(context.Background(), sender, command("/dibs"))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Text, "error occurred")
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestRouter_IgnoresPlainText(t *testing.T) {
	logger, _ := test.NewNullLogger()
	r := NewRouter(logger)

	sender := &recordingSender{}
	r.HandleMessage(context.Background(), sender, &tgbotapi.Message{Text: "hello", Chat: &tgbotapi.Chat{ID: 1}})
	assert.Empty(t, sender.sent)
}
