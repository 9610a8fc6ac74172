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

type friendshipRepository struct {
	db *sql.DB
}

// NewFriendshipRepository creates a new friendship repository
func NewFriendshipRepository(db *sql.DB) repository.FriendshipRepository {
	return &friendshipRepository{db: db}
}

func (r *friendshipRepository) Create(ctx context.Context, f *models.Friendship) (*models.Friendship, error) {
	query := `
		INSERT INTO friendships (user_id, friend_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	f.CreatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query, f.UserID, f.FriendID, f.CreatedAt).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		if verr := constraintError(err); verr != nil {
			return nil, verr
		}
		return nil, fmt.Errorf("failed to create friendship: %w", err)
	}

	return f, nil
}

func (r *friendshipRepository) GetByID(ctx context.Context, id int64) (*models.Friendship, error) {
	query := `SELECT id, user_id, friend_id, created_at FROM friendships WHERE id = $1`

	f := &models.Friendship{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&f.ID, &f.UserID, &f.FriendID, &f.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get friendship by ID: %w", err)
	}

	return f, nil
}

func (r *friendshipRepository) GetFollowing(ctx context.Context, userID int64) ([]*models.Friendship, error) {
	return r.list(ctx, `SELECT id, user_id, friend_id, created_at
		FROM friendships WHERE user_id = $1 ORDER BY created_at ASC`, userID)
}

func (r *friendshipRepository) GetFollowers(ctx context.Context, userID int64) ([]*models.Friendship, error) {
	return r.list(ctx, `SELECT id, user_id, friend_id, created_at
		FROM friendships WHERE friend_id = $1 ORDER BY created_at ASC`, userID)
}

func (r *friendshipRepository) GetForUser(ctx context.Context, userID int64) ([]*models.Friendship, error) {
	return r.list(ctx, `SELECT id, user_id, friend_id, created_at
		FROM friendships WHERE user_id = $1 OR friend_id = $1 ORDER BY created_at ASC`, userID)
}

func (r *friendshipRepository) list(ctx context.Context, query string, userID int64) ([]*models.Friendship, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query friendships: %w", err)
	}
	defer rows.Close()

	var friendships []*models.Friendship
	for rows.Next() {
		f := &models.Friendship{}
		if err := rows.Scan(&f.ID, &f.UserID, &f.FriendID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friendship: %w", err)
		}
		friendships = append(friendships, f)
	}
	return friendships, rows.Err()
}

func (r *friendshipRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM friendships WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete friendship: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return apperr.NotFound("friendship", id)
	}
	return nil
}
