package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/dibs/internal/dibs"
	"github.com/Kerhoff/dibs/internal/service"
	"github.com/Kerhoff/dibs/internal/telegram"
)

// DibsHandler handles /dibs, listing the linked user's recipients with
// their budget and spend totals.
type DibsHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewDibsHandler creates a new DibsHandler.
func NewDibsHandler(svc *service.Service, logger *logrus.Logger) *DibsHandler {
	return &DibsHandler{svc: svc, logger: logger}
}

// Handle processes the /dibs command.
func (h *DibsHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	user, err := linkedUser(ctx, h.svc, bot, message)
	if err != nil || user == nil {
		return err
	}

	recipients, err := h.svc.Recipients(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("get recipients: %w", err)
	}

	if len(recipients) == 0 {
		return reply(bot, message, "🎁 You have not dibbed any gifts yet.")
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"recipients": len(recipients),
	}).Debug("Listing recipients")

	return reply(bot, message, formatRecipients(recipients))
}

func formatRecipients(recipients []dibs.Recipient) string {
	var sb strings.Builder
	sb.WriteString("🎁 Your dibs\n")

	var budgeted, paid float64
	for _, r := range recipients {
		name := strings.TrimSpace(r.FirstName + " " + r.LastName)
		fmt.Fprintf(&sb, "\n%s: budgeted %.2f, paid %.2f\n", name, r.TotalBudgeted, r.TotalPricePaid)
		for _, list := range r.WishLists {
			for _, gift := range list.Gifts {
				quantity := 0
				delivered := true
				for _, d := range gift.Dibs {
					quantity += d.Quantity
					delivered = delivered && d.IsDelivered
				}
				status := ""
				if delivered && len(gift.Dibs) > 0 {
					status = " ✅"
				}
				fmt.Fprintf(&sb, "  • %s: %s ×%d%s\n", list.Name, gift.Name, quantity, status)
			}
		}
		budgeted += r.TotalBudgeted
		paid += r.TotalPricePaid
	}

	fmt.Fprintf(&sb, "\nTotal: budgeted %.2f, paid %.2f", budgeted, paid)
	return sb.String()
}
