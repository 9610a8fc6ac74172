package handlers

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/dibs/internal/apperr"
	"github.com/Kerhoff/dibs/internal/models"
	"github.com/Kerhoff/dibs/internal/service"
	"github.com/Kerhoff/dibs/internal/telegram"
)

// LinkHandler handles /link <code>, binding the chat to a Dibs account.
type LinkHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(svc *service.Service, logger *logrus.Logger) *LinkHandler {
	return &LinkHandler{svc: svc, logger: logger}
}

// Handle processes the /link command.
func (h *LinkHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) != 1 {
		return reply(bot, message, "❌ Please provide your link code.\nUsage: /link <code>")
	}

	user, err := h.svc.LinkTelegram(ctx, message.Chat.ID, args[0])
	if err != nil {
		var verr *apperr.ValidationError
		if errors.As(err, &verr) {
			return reply(bot, message, "❌ That code is invalid or has already been used. Request a new one in the app.")
		}
		return fmt.Errorf("link telegram chat: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": user.ID,
	}).Info("Linked telegram chat")

	return reply(bot, message, fmt.Sprintf("✅ Linked to %s. You will now receive notifications here.", user.FullName()))
}

// linkedUser resolves the chat's user, replying with instructions when the
// chat is not linked. A nil user with a nil error means a reply was sent.
func linkedUser(ctx context.Context, svc *service.Service, bot telegram.Sender, message *tgbotapi.Message) (*models.User, error) {
	user, err := svc.UserByTelegramChat(ctx, message.Chat.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, reply(bot, message, "This chat is not linked yet. Use /link <code> with a code from the app.")
	}
	return user, nil
}

func reply(bot telegram.Sender, message *tgbotapi.Message, text string) error {
	if _, err := bot.Send(tgbotapi.NewMessage(message.Chat.ID, text)); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}
