package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Kerhoff/dibs/internal/apperr"
	"github.com/Kerhoff/dibs/internal/models"
	"github.com/Kerhoff/dibs/internal/repository"
)

const wishListColumns = `id, user_id, name, kind, privacy_type, privacy_allow, created_at, updated_at`

type wishListRepository struct {
	db *sql.DB
}

// NewWishListRepository creates a new wish list repository
func NewWishListRepository(db *sql.DB) repository.WishListRepository {
	return &wishListRepository{db: db}
}

func scanWishList(row rowScanner) (*models.WishList, error) {
	list := &models.WishList{}
	err := row.Scan(
		&list.ID,
		&list.UserID,
		&list.Name,
		&list.Kind,
		&list.Privacy.Type,
		pq.Array(&list.Privacy.Allow),
		&list.CreatedAt,
		&list.UpdatedAt,
	)
	return list, err
}

func allowOrEmpty(allow []int64) []int64 {
	if allow == nil {
		return []int64{}
	}
	return allow
}

func (r *wishListRepository) Create(ctx context.Context, list *models.WishList) (*models.WishList, error) {
	query := `
		INSERT INTO wish_lists (user_id, name, kind, privacy_type, privacy_allow, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	list.CreatedAt = now
	list.UpdatedAt = now
	list.Privacy.Allow = allowOrEmpty(list.Privacy.Allow)

	err := r.db.QueryRowContext(ctx, query,
		list.UserID,
		list.Name,
		list.Kind,
		list.Privacy.Type,
		pq.Array(list.Privacy.Allow),
		list.CreatedAt,
		list.UpdatedAt,
	).Scan(&list.ID, &list.CreatedAt, &list.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create wish list: %w", err)
	}

	return list, nil
}

func (r *wishListRepository) GetByID(ctx context.Context, id int64) (*models.WishList, error) {
	query := `SELECT ` + wishListColumns + ` FROM wish_lists WHERE id = $1`

	list, err := scanWishList(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get wish list by ID: %w", err)
	}

	return list, nil
}

func (r *wishListRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.WishList, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + wishListColumns + ` FROM wish_lists WHERE id = ANY($1) ORDER BY id ASC`
	return r.list(ctx, query, pq.Array(ids))
}

func (r *wishListRepository) GetByUser(ctx context.Context, userID int64) ([]*models.WishList, error) {
	query := `SELECT ` + wishListColumns + ` FROM wish_lists WHERE user_id = $1 ORDER BY created_at ASC`
	return r.list(ctx, query, userID)
}

func (r *wishListRepository) list(ctx context.Context, query string, arg any) ([]*models.WishList, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query wish lists: %w", err)
	}
	defer rows.Close()

	var lists []*models.WishList
	for rows.Next() {
		list, err := scanWishList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wish list: %w", err)
		}
		lists = append(lists, list)
	}

	return lists, rows.Err()
}

func (r *wishListRepository) Update(ctx context.Context, list *models.WishList) (*models.WishList, error) {
	query := `
		UPDATE wish_lists
		SET name = $2, kind = $3, privacy_type = $4, privacy_allow = $5, updated_at = $6
		WHERE id = $1
		RETURNING updated_at`

	list.UpdatedAt = time.Now()
	list.Privacy.Allow = allowOrEmpty(list.Privacy.Allow)

	err := r.db.QueryRowContext(ctx, query,
		list.ID,
		list.Name,
		list.Kind,
		list.Privacy.Type,
		pq.Array(list.Privacy.Allow),
		list.UpdatedAt,
	).Scan(&list.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("wishList", list.ID)
		}
		return nil, fmt.Errorf("failed to update wish list: %w", err)
	}

	return list, nil
}

// Delete removes the list; gifts, dibs and comments follow by cascade.
func (r *wishListRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM wish_lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete wish list: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperr.NotFound("wishList", id)
	}

	return nil
}
