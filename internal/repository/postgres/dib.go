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

const dibColumns = `id, gift_id, user_id, quantity, price_paid, is_delivered, date_delivered, created_at, updated_at`

type dibRepository struct {
	db *sql.DB
}

// NewDibRepository creates a new dib repository
func NewDibRepository(db *sql.DB) repository.DibRepository {
	return &dibRepository{db: db}
}

func scanDib(row rowScanner) (*models.Dib, error) {
	d := &models.Dib{}
	err := row.Scan(
		&d.ID,
		&d.GiftID,
		&d.UserID,
		&d.Quantity,
		&d.PricePaid,
		&d.IsDelivered,
		&d.DateDelivered,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	return d, err
}

func (r *dibRepository) Create(ctx context.Context, d *models.Dib) (*models.Dib, error) {
	query := `
		INSERT INTO dibs (gift_id, user_id, quantity, price_paid, is_delivered, date_delivered, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		d.GiftID,
		d.UserID,
		d.Quantity,
		d.PricePaid,
		d.IsDelivered,
		d.DateDelivered,
		d.CreatedAt,
		d.UpdatedAt,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)

	if err != nil {
		if verr := constraintError(err); verr != nil {
			return nil, verr
		}
		return nil, fmt.Errorf("failed to create dib: %w", err)
	}

	return d, nil
}

func (r *dibRepository) GetByID(ctx context.Context, id int64) (*models.Dib, error) {
	query := `SELECT ` + dibColumns + ` FROM dibs WHERE id = $1`

	d, err := scanDib(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get dib by ID: %w", err)
	}
	return d, nil
}

func (r *dibRepository) GetByGift(ctx context.Context, giftID int64) ([]*models.Dib, error) {
	query := `SELECT ` + dibColumns + ` FROM dibs WHERE gift_id = $1 ORDER BY created_at ASC, id ASC`
	return r.list(ctx, query, giftID)
}

func (r *dibRepository) GetByGifts(ctx context.Context, giftIDs []int64) ([]*models.Dib, error) {
	if len(giftIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + dibColumns + ` FROM dibs WHERE gift_id = ANY($1) ORDER BY created_at ASC, id ASC`
	return r.list(ctx, query, pq.Array(giftIDs))
}

func (r *dibRepository) list(ctx context.Context, query string, arg any) ([]*models.Dib, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query dibs: %w", err)
	}
	defer rows.Close()

	var dibs []*models.Dib
	for rows.Next() {
		d, err := scanDib(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dib: %w", err)
		}
		dibs = append(dibs, d)
	}
	return dibs, rows.Err()
}

func (r *dibRepository) Update(ctx context.Context, d *models.Dib) (*models.Dib, error) {
	query := `
		UPDATE dibs
		SET quantity = $2, price_paid = $3, is_delivered = $4, date_delivered = $5, updated_at = $6
		WHERE id = $1
		RETURNING updated_at`

	d.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		d.ID,
		d.Quantity,
		d.PricePaid,
		d.IsDelivered,
		d.DateDelivered,
		d.UpdatedAt,
	).Scan(&d.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("dib", d.ID)
		}
		if verr := constraintError(err); verr != nil {
			return nil, verr
		}
		return nil, fmt.Errorf("failed to update dib: %w", err)
	}
	return d, nil
}

func (r *dibRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM dibs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dib: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return apperr.NotFound("dib", id)
	}
	return nil
}
