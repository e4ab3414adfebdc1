package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/loyalty-ledger/internal/model"
	"github.com/fairyhunter13/loyalty-ledger/internal/service"
	"github.com/fairyhunter13/loyalty-ledger/pkg/database"
)

const promotionColumns = `id, name, description, kind, starts_at, ends_at, min_spend, rate, points, created_at`

// PromotionRepository provides data access for the promotion catalog and the
// one-time usage records using pgx.
type PromotionRepository struct {
	pool PoolInterface
}

// NewPromotionRepository creates a new PromotionRepository with the given pool.
func NewPromotionRepository(pool *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// NewPromotionRepositoryWithPool creates a new PromotionRepository with a custom
// pool interface. This is primarily used for testing.
func NewPromotionRepositoryWithPool(pool PoolInterface) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

func scanPromotion(row pgx.Row) (*model.Promotion, error) {
	var p model.Promotion
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Kind, &p.StartsAt, &p.EndsAt,
		&p.MinSpend, &p.Rate, &p.Points, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPromotions(rows pgx.Rows) ([]model.Promotion, error) {
	defer rows.Close()

	promotions := []model.Promotion{}
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		promotions = append(promotions, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate promotion rows: %w", err)
	}
	return promotions, nil
}

// Insert adds a promotion to the catalog.
func (r *PromotionRepository) Insert(ctx context.Context, p *model.Promotion) (int64, error) {
	query := `INSERT INTO promotions (name, description, kind, starts_at, ends_at, min_spend, rate, points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		p.Name, p.Description, p.Kind, p.StartsAt, p.EndsAt, p.MinSpend, p.Rate, p.Points).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert promotion %s: %w", p.Name, err)
	}
	return p.ID, nil
}

// GetByID retrieves one promotion.
// Returns nil, nil if the promotion is not found (service layer handles this).
func (r *PromotionRepository) GetByID(ctx context.Context, id int64) (*model.Promotion, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotions WHERE id = $1`

	p, err := scanPromotion(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get promotion %d: %w", id, err)
	}
	return p, nil
}

// GetByIDs retrieves every promotion whose id is in ids. Absent ids are simply
// missing from the result; the resolver decides what that means.
func (r *PromotionRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Promotion, error) {
	if len(ids) == 0 {
		return []model.Promotion{}, nil
	}
	query := `SELECT ` + promotionColumns + ` FROM promotions WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get promotions by ids: %w", err)
	}
	return collectPromotions(rows)
}

// ListAutomaticActive returns every automatic promotion whose activity window
// contains asOf and whose minimum spend (if any) is at most spent, in catalog
// order.
func (r *PromotionRepository) ListAutomaticActive(ctx context.Context, asOf time.Time, spent float64) ([]model.Promotion, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotions
		WHERE kind = 'automatic'
		  AND starts_at <= $1 AND $1 < ends_at
		  AND (min_spend IS NULL OR min_spend <= $2)
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, asOf, spent)
	if err != nil {
		return nil, fmt.Errorf("list automatic promotions: %w", err)
	}
	return collectPromotions(rows)
}

// List returns one page of the catalog matching the filter plus the total
// match count.
func (r *PromotionRepository) List(ctx context.Context, f model.PromotionFilter, page, limit int) (int64, []model.Promotion, error) {
	where := " WHERE 1=1"
	args := []any{}

	if f.Kind != "" {
		args = append(args, f.Kind)
		where += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	if f.ActiveAt != nil {
		args = append(args, *f.ActiveAt)
		n := len(args)
		where += fmt.Sprintf(" AND starts_at <= $%d AND $%d < ends_at", n, n)
	}

	var count int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM promotions"+where, args...).Scan(&count); err != nil {
		return 0, nil, fmt.Errorf("count promotions: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf("SELECT %s FROM promotions%s ORDER BY id LIMIT $%d OFFSET $%d",
		promotionColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return 0, nil, fmt.Errorf("list promotions: %w", err)
	}
	promotions, err := collectPromotions(rows)
	if err != nil {
		return 0, nil, err
	}
	return count, promotions, nil
}

// Delete removes a promotion from the catalog.
// Returns service.ErrPromotionNotFound if nothing was deleted and
// service.ErrPromotionStarted if usage or transaction references block the
// delete (a referenced promotion has necessarily started).
func (r *PromotionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return service.ErrPromotionStarted
		}
		return fmt.Errorf("delete promotion %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrPromotionNotFound
	}
	return nil
}

// UsageExists reports whether the user has already consumed the one-time
// promotion. Read-only; the authoritative guard is the uniqueness constraint
// hit by MarkUsed inside the purchase unit.
func (r *PromotionRepository) UsageExists(ctx context.Context, userID, promotionID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM promotion_usages WHERE user_id = $1 AND promotion_id = $2)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, userID, promotionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check promotion usage: %w", err)
	}
	return exists, nil
}

// MarkUsed records consumption of a one-time promotion within a unit.
// Returns service.ErrPromotionAlreadyUsed when the (user, promotion) pair
// already exists, which is how the losing side of a concurrent double-use
// surfaces.
func (r *PromotionRepository) MarkUsed(ctx context.Context, q database.TxQuerier, userID, promotionID int64) error {
	query := `INSERT INTO promotion_usages (user_id, promotion_id) VALUES ($1, $2)`

	_, err := q.Exec(ctx, query, userID, promotionID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return service.ErrPromotionAlreadyUsed
		}
		return fmt.Errorf("insert promotion usage: %w", err)
	}
	return nil
}
