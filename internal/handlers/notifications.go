package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/dibs/internal/notify"
	"github.com/Kerhoff/dibs/internal/repository"
	"github.com/Kerhoff/dibs/internal/service"
	"github.com/Kerhoff/dibs/internal/telegram"
)

const recentNotifications = 10

// NotificationsHandler handles /notifications, showing the latest entries.
type NotificationsHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewNotificationsHandler creates a new NotificationsHandler.
func NewNotificationsHandler(svc *service.Service, logger *logrus.Logger) *NotificationsHandler {
	return &NotificationsHandler{svc: svc, logger: logger}
}

// Handle processes the /notifications command.
func (h *NotificationsHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	user, err := linkedUser(ctx, h.svc, bot, message)
	if err != nil || user == nil {
		return err
	}

	list, err := h.svc.ListNotifications(ctx, user.ID, repository.NotificationFilters{Limit: recentNotifications})
	if err != nil {
		return fmt.Errorf("list notifications: %w", err)
	}

	if len(list) == 0 {
		return reply(bot, message, "🔔 No notifications yet.")
	}

	var sb strings.Builder
	sb.WriteString("🔔 Latest notifications\n")
	for _, n := range list {
		subject, _, err := notify.Render(n)
		if err != nil {
			h.logger.WithError(err).WithField("notification_id", n.ID).Warn("Failed to render notification")
			continue
		}
		marker := "•"
		if !n.IsRead {
			marker = "🆕"
		}
		fmt.Fprintf(&sb, "\n%s %s (%s)", marker, subject, n.CreatedAt.Format("Jan 2 15:04"))
	}

	return reply(bot, message, sb.String())
}
