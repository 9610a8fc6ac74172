// Package notify persists social notifications and delivers them over the
// channels a recipient has enabled.
package notify

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/dibs/internal/apperr"
	"github.com/Kerhoff/dibs/internal/metrics"
	"github.com/Kerhoff/dibs/internal/models"
	"github.com/Kerhoff/dibs/internal/repository"
)

// Subject carries the entities a notification is about. Any field may be nil.
type Subject struct {
	Gift    *models.Gift
	Dib     *models.Dib
	Comment *models.Comment
}

// Dispatcher persists notifications and hands them to a background worker
// for delivery.
type Dispatcher struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	channels      []Channel
	queue         chan *models.Notification
	logger        *logrus.Logger
}

// NewDispatcher creates a dispatcher with a delivery queue of queueSize.
func NewDispatcher(
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	logger *logrus.Logger,
	queueSize int,
	channels ...Channel,
) *Dispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Dispatcher{
		notifications: notifications,
		users:         users,
		channels:      channels,
		queue:         make(chan *models.Notification, queueSize),
		logger:        logger,
	}
}

// Notify stores a notification for recipientID and queues it for delivery.
// Delivery problems never surface here; only the insert can fail. A
// recipient equal to the actor is skipped and yields nil, nil.
func (d *Dispatcher) Notify(ctx context.Context, t models.NotificationType, recipientID int64, actor models.UserSummary, subject Subject) (*models.Notification, error) {
	if !t.Valid() {
		return nil, apperr.Validation(apperr.Field("type", fmt.Sprintf("unknown notification type %q", t)))
	}
	if recipientID == 0 {
		return nil, apperr.MissingID("recipientId")
	}
	if recipientID == actor.ID {
		d.logger.WithFields(logrus.Fields{"type": t, "user_id": actor.ID}).Debug("Skipping self notification")
		return nil, nil
	}

	n, err := d.notifications.Create(ctx, Snapshot(t, recipientID, actor, subject))
	if err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}
	metrics.RecordNotification(string(t))

	d.enqueue(n)
	return n, nil
}

// Snapshot copies the actor and subject into a new notification by value.
func Snapshot(t models.NotificationType, recipientID int64, actor models.UserSummary, subject Subject) *models.Notification {
	n := &models.Notification{UserID: recipientID, Type: t}

	if t == models.NotificationFriendshipNew {
		n.Follower = &models.FollowerSnapshot{ID: actor.ID, FirstName: actor.FirstName, LastName: actor.LastName}
	}
	if g := subject.Gift; g != nil {
		n.Gift = &models.GiftSnapshot{ID: g.ID, Name: g.Name, WishListID: g.WishListID, OwnerID: g.UserID}
	}
	if dib := subject.Dib; dib != nil {
		who := identify(dib.UserID, dib.User, actor)
		var price *float64
		if dib.PricePaid != nil {
			p := *dib.PricePaid
			price = &p
		}
		n.Dib = &models.DibSnapshot{
			ID:        dib.ID,
			Quantity:  dib.Quantity,
			PricePaid: price,
			UserID:    dib.UserID,
			FirstName: who.FirstName,
			LastName:  who.LastName,
		}
	}
	if c := subject.Comment; c != nil {
		who := identify(c.UserID, c.User, actor)
		n.Comment = &models.CommentSnapshot{
			ID:        c.ID,
			Body:      c.Body,
			UserID:    c.UserID,
			FirstName: who.FirstName,
			LastName:  who.LastName,
		}
	}
	return n
}

func identify(userID int64, attached *models.UserSummary, actor models.UserSummary) models.UserSummary {
	if attached != nil {
		return *attached
	}
	if actor.ID == userID {
		return actor
	}
	return models.UserSummary{ID: userID}
}

func (d *Dispatcher) enqueue(n *models.Notification) {
	select {
	case d.queue <- n:
		metrics.SetQueueDepth(len(d.queue))
	default:
		metrics.RecordDropped()
		d.logger.WithFields(logrus.Fields{
			"notification_id": n.ID,
			"user_id":         n.UserID,
		}).Warn("Delivery queue full, notification stored but not delivered")
	}
}

// Run delivers queued notifications until ctx is cancelled. It blocks, so it
// should be launched in a separate goroutine.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info("Notification dispatcher started")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Notification dispatcher stopped")
			return
		case n := <-d.queue:
			metrics.SetQueueDepth(len(d.queue))
			d.deliver(ctx, n)
		}
	}
}

// deliver sends n on every channel that accepts the recipient. Failures are
// logged.
func (d *Dispatcher) deliver(ctx context.Context, n *models.Notification) {
	entry := d.logger.WithFields(logrus.Fields{
		"notification_id": n.ID,
		"user_id":         n.UserID,
		"type":            n.Type,
	})

	user, err := d.users.GetByID(ctx, n.UserID)
	if err != nil {
		entry.WithError(err).Error("Failed to load notification recipient")
		return
	}
	if user == nil {
		entry.Warn("Notification recipient no longer exists")
		return
	}

	var result *multierror.Error
	for _, ch := range d.channels {
		if !ch.Accepts(user, n.Type) {
			continue
		}
		err := ch.Deliver(ctx, user, n)
		metrics.RecordDelivery(ch.Name(), err)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", ch.Name(), err))
			continue
		}
		entry.WithField("channel", ch.Name()).Debug("Notification delivered")
	}

	if err := result.ErrorOrNil(); err != nil {
		entry.WithError(err).Warn("Notification delivery failed")
	}
}
