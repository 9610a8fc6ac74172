package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/dibs/internal/models"
	"github.com/Kerhoff/dibs/internal/telegram"
)

// Channel is a delivery transport for notifications.
type Channel interface {
	Name() string
	// Accepts reports whether user wants notifications of type t on this
	// channel and can be reached on it.
	Accepts(user *models.User, t models.NotificationType) bool
	Deliver(ctx context.Context, user *models.User, n *models.Notification) error
}

// Message is a rendered email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer sends rendered emails.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes emails to the log instead of a mail transport.
type LogMailer struct {
	logger *logrus.Logger
}

func NewLogMailer(logger *logrus.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.WithFields(logrus.Fields{
		"from":    msg.From,
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info(msg.Body)
	return nil
}

// EmailChannel delivers to verified email addresses.
type EmailChannel struct {
	mailer Mailer
	from   string
}

func NewEmailChannel(mailer Mailer, from string) *EmailChannel {
	return &EmailChannel{mailer: mailer, from: from}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Accepts(user *models.User, t models.NotificationType) bool {
	return user.EmailAddressVerified && user.Email != "" && user.NotificationSettings.AllowsEmail(t)
}

func (c *EmailChannel) Deliver(ctx context.Context, user *models.User, n *models.Notification) error {
	subject, body, err := Render(n)
	if err != nil {
		return err
	}
	return c.mailer.Send(ctx, Message{From: c.from, To: user.Email, Subject: subject, Body: body})
}

// TelegramChannel delivers to users who linked a Telegram chat.
type TelegramChannel struct {
	sender telegram.Sender
}

func NewTelegramChannel(sender telegram.Sender) *TelegramChannel {
	return &TelegramChannel{sender: sender}
}

func (c *TelegramChannel) Name() string { return "telegram" }

func (c *TelegramChannel) Accepts(user *models.User, t models.NotificationType) bool {
	return user.TelegramChatID != nil && user.NotificationSettings.AllowsTelegram(t)
}

func (c *TelegramChannel) Deliver(_ context.Context, user *models.User, n *models.Notification) error {
	subject, body, err := Render(n)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(*user.TelegramChatID, subject+"\n\n"+body)
	if _, err := c.sender.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}
