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

const giftColumns = `g.id, g.user_id, g.wish_list_id, g.name, g.budget, g.quantity, g.priority,
	g.order_in_wish_list, g.is_received, g.external_urls, g.created_at, g.updated_at`

type giftRepository struct {
	db *sql.DB
}

// NewGiftRepository creates a new gift repository
func NewGiftRepository(db *sql.DB) repository.GiftRepository {
	return &giftRepository{db: db}
}

func scanGift(row rowScanner) (*models.Gift, error) {
	gift := &models.Gift{}
	var urls []byte
	if err := row.Scan(
		&gift.ID,
		&gift.UserID,
		&gift.WishListID,
		&gift.Name,
		&gift.Budget,
		&gift.Quantity,
		&gift.Priority,
		&gift.OrderInWishList,
		&gift.IsReceived,
		&urls,
		&gift.CreatedAt,
		&gift.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := scanJSON(urls, &gift.ExternalURLs); err != nil {
		return nil, fmt.Errorf("failed to decode external urls: %w", err)
	}
	if gift.ExternalURLs == nil {
		gift.ExternalURLs = []models.ExternalURL{}
	}
	return gift, nil
}

func urlsParam(urls []models.ExternalURL) (string, error) {
	if urls == nil {
		urls = []models.ExternalURL{}
	}
	return jsonParam(urls)
}

func (r *giftRepository) Create(ctx context.Context, gift *models.Gift) (*models.Gift, error) {
	query := `
		INSERT INTO gifts (user_id, wish_list_id, name, budget, quantity, priority,
			order_in_wish_list, is_received, external_urls, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	if gift.Quantity == 0 {
		gift.Quantity = 1
	}
	urls, err := urlsParam(gift.ExternalURLs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode external urls: %w", err)
	}

	now := time.Now()
	gift.CreatedAt = now
	gift.UpdatedAt = now

	err = r.db.QueryRowContext(ctx, query,
		gift.UserID,
		gift.WishListID,
		gift.Name,
		gift.Budget,
		gift.Quantity,
		gift.Priority,
		gift.OrderInWishList,
		gift.IsReceived,
		urls,
		gift.CreatedAt,
		gift.UpdatedAt,
	).Scan(&gift.ID, &gift.CreatedAt, &gift.UpdatedAt)

	if err != nil {
		if verr := constraintError(err); verr != nil {
			return nil, verr
		}
		return nil, fmt.Errorf("failed to create gift: %w", err)
	}

	return gift, nil
}

func (r *giftRepository) GetByID(ctx context.Context, id int64) (*models.Gift, error) {
	query := `SELECT ` + giftColumns + ` FROM gifts g WHERE g.id = $1`

	gift, err := scanGift(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get gift by ID: %w", err)
	}

	return gift, nil
}

func (r *giftRepository) GetByWishList(ctx context.Context, wishListID int64) ([]*models.Gift, error) {
	query := `SELECT ` + giftColumns + `
		FROM gifts g
		WHERE g.wish_list_id = $1
		ORDER BY g.order_in_wish_list ASC, g.created_at ASC`
	return r.list(ctx, query, wishListID)
}

// GetDibbedBy orders gifts by when userID dibbed them.
func (r *giftRepository) GetDibbedBy(ctx context.Context, userID int64) ([]*models.Gift, error) {
	query := `SELECT ` + giftColumns + `
		FROM gifts g
		INNER JOIN dibs d ON d.gift_id = g.id
		WHERE d.user_id = $1
		ORDER BY d.created_at ASC, d.id ASC`
	return r.list(ctx, query, userID)
}

func (r *giftRepository) list(ctx context.Context, query string, arg int64) ([]*models.Gift, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query gifts: %w", err)
	}
	defer rows.Close()

	var gifts []*models.Gift
	for rows.Next() {
		gift, err := scanGift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gift: %w", err)
		}
		gifts = append(gifts, gift)
	}
	return gifts, rows.Err()
}

func (r *giftRepository) Update(ctx context.Context, gift *models.Gift) (*models.Gift, error) {
	query := `
		UPDATE gifts
		SET name = $2, budget = $3, quantity = $4, priority = $5, order_in_wish_list = $6,
			is_received = $7, external_urls = $8, updated_at = $9
		WHERE id = $1
		RETURNING updated_at`

	urls, err := urlsParam(gift.ExternalURLs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode external urls: %w", err)
	}
	gift.UpdatedAt = time.Now()

	err = r.db.QueryRowContext(ctx, query,
		gift.ID,
		gift.Name,
		gift.Budget,
		gift.Quantity,
		gift.Priority,
		gift.OrderInWishList,
		gift.IsReceived,
		urls,
		gift.UpdatedAt,
	).Scan(&gift.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("gift", gift.ID)
		}
		if verr := constraintError(err); verr != nil {
			return nil, verr
		}
		return nil, fmt.Errorf("failed to update gift: %w", err)
	}

	return gift, nil
}

func (r *giftRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM gifts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete gift: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperr.NotFound("gift", id)
	}

	return nil
}
