package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kerhoff/dibs/internal/apperr"
	"github.com/Kerhoff/dibs/internal/models"
	"github.com/Kerhoff/dibs/internal/repository"
)

const notificationColumns = `id, user_id, type, follower, gift, dib, comment, is_read, created_at, updated_at`

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func scanNotification(row rowScanner) (*models.Notification, error) {
	n := &models.Notification{}
	var follower, gift, dib, comment []byte
	if err := row.Scan(
		&n.ID, &n.UserID, &n.Type, &follower, &gift, &dib, &comment,
		&n.IsRead, &n.CreatedAt, &n.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if n.Follower, err = scanNullableJSON[models.FollowerSnapshot](follower); err != nil {
		return nil, fmt.Errorf("failed to decode follower snapshot: %w", err)
	}
	if n.Gift, err = scanNullableJSON[models.GiftSnapshot](gift); err != nil {
		return nil, fmt.Errorf("failed to decode gift snapshot: %w", err)
	}
	if n.Dib, err = scanNullableJSON[models.DibSnapshot](dib); err != nil {
		return nil, fmt.Errorf("failed to decode dib snapshot: %w", err)
	}
	if n.Comment, err = scanNullableJSON[models.CommentSnapshot](comment); err != nil {
		return nil, fmt.Errorf("failed to decode comment snapshot: %w", err)
	}
	return n, nil
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	query := `INSERT INTO notifications (user_id, type, follower, gift, dib, comment, is_read, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id, created_at, updated_at`

	follower, err := nullableJSONParam(n.Follower)
	if err != nil {
		return nil, fmt.Errorf("failed to encode follower snapshot: %w", err)
	}
	gift, err := nullableJSONParam(n.Gift)
	if err != nil {
		return nil, fmt.Errorf("failed to encode gift snapshot: %w", err)
	}
	dib, err := nullableJSONParam(n.Dib)
	if err != nil {
		return nil, fmt.Errorf("failed to encode dib snapshot: %w", err)
	}
	comment, err := nullableJSONParam(n.Comment)
	if err != nil {
		return nil, fmt.Errorf("failed to encode comment snapshot: %w", err)
	}

	n.CreatedAt = time.Now()
	err = r.db.QueryRowContext(ctx, query,
		n.UserID, string(n.Type), follower, gift, dib, comment, n.IsRead, n.CreatedAt,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return n, nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id int64) (*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	n, err := scanNotification(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

func (r *notificationRepository) GetByUser(ctx context.Context, userID int64, filters repository.NotificationFilters) ([]*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	args := []interface{}{userID}
	argIdx := 2

	if filters.UnreadOnly {
		query += " AND is_read = FALSE"
	}

	query += " ORDER BY created_at DESC, id DESC"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
		argIdx++
	}
	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, filters.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// Update only persists the read flag; snapshots are immutable.
func (r *notificationRepository) Update(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	query := `UPDATE notifications SET is_read = $2, updated_at = $3 WHERE id = $1 RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, n.ID, n.IsRead, time.Now()).Scan(&n.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("notification", n.ID)
		}
		return nil, fmt.Errorf("failed to update notification: %w", err)
	}
	return n, nil
}

func (r *notificationRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return apperr.NotFound("notification", id)
	}
	return nil
}
