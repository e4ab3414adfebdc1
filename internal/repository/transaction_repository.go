package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/loyalty-ledger/internal/model"
	"github.com/fairyhunter13/loyalty-ledger/internal/service"
	"github.com/fairyhunter13/loyalty-ledger/pkg/database"
)

// transactionColumns are the row columns joined with the owner's utorid and
// the aggregated promotion ids. Used by the pool-level reads; unit-level reads
// skip the join.
const transactionColumns = `t.id, t.user_id, u.utorid, t.type, t.amount, t.spent, t.redeemed,
	t.related_id, t.suspicious, t.remark, t.created_by, t.processed_by, t.processed_at, t.created_at,
	(SELECT COALESCE(ARRAY_AGG(tp.promotion_id ORDER BY tp.promotion_id), '{}')
	   FROM transaction_promotions tp WHERE tp.transaction_id = t.id)`

// TransactionRepository provides data access for ledger rows using pgx.
type TransactionRepository struct {
	pool PoolInterface
}

// NewTransactionRepository creates a new TransactionRepository with the given pool.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// NewTransactionRepositoryWithPool creates a new TransactionRepository with a
// custom pool interface. This is primarily used for testing.
func NewTransactionRepositoryWithPool(pool PoolInterface) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	var t model.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.Utorid, &t.Type, &t.Amount, &t.Spent, &t.Redeemed,
		&t.RelatedID, &t.Suspicious, &t.Remark, &t.CreatedBy, &t.ProcessedBy, &t.ProcessedAt,
		&t.CreatedAt, &t.PromotionIDs)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Insert creates a ledger row within a unit and returns its id.
func (r *TransactionRepository) Insert(ctx context.Context, q database.TxQuerier, t *model.Transaction) (int64, error) {
	query := `INSERT INTO transactions (user_id, type, amount, spent, redeemed, related_id, suspicious, remark, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, created_at`

	err := q.QueryRow(ctx, query,
		t.UserID, t.Type, t.Amount, t.Spent, t.Redeemed, t.RelatedID, t.Suspicious, t.Remark, t.CreatedBy).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert %s transaction: %w", t.Type, err)
	}
	return t.ID, nil
}

// LinkPromotions associates promotions with a transaction within a unit.
// Associations are fixed at creation; there is no unlink.
func (r *TransactionRepository) LinkPromotions(ctx context.Context, q database.TxQuerier, transactionID int64, promotionIDs []int64) error {
	query := `INSERT INTO transaction_promotions (transaction_id, promotion_id)
		SELECT $1, unnest($2::BIGINT[])`

	_, err := q.Exec(ctx, query, transactionID, promotionIDs)
	if err != nil {
		return fmt.Errorf("link promotions to transaction %d: %w", transactionID, err)
	}
	return nil
}

// Exists reports whether a transaction row exists, within a unit.
func (r *TransactionRepository) Exists(ctx context.Context, q database.TxQuerier, id int64) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check transaction %d: %w", id, err)
	}
	return exists, nil
}

// GetForUpdate retrieves a transaction with a row lock (SELECT FOR UPDATE).
// The lock is held until the unit completes, serializing flag toggles and
// redemption processing on the same row.
// Returns service.ErrTransactionNotFound if the transaction doesn't exist.
func (r *TransactionRepository) GetForUpdate(ctx context.Context, q database.TxQuerier, id int64) (*model.Transaction, error) {
	query := `SELECT id, user_id, type, amount, spent, redeemed, related_id, suspicious,
		remark, created_by, processed_by, processed_at, created_at
		FROM transactions WHERE id = $1 FOR UPDATE`

	var t model.Transaction
	err := q.QueryRow(ctx, query, id).Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Spent,
		&t.Redeemed, &t.RelatedID, &t.Suspicious, &t.Remark, &t.CreatedBy, &t.ProcessedBy,
		&t.ProcessedAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("get transaction for update %d: %w", id, err)
	}
	return &t, nil
}

// SetRelatedID backfills the related id, pairing the transfer debit row with
// its credit row within the unit that created both.
func (r *TransactionRepository) SetRelatedID(ctx context.Context, q database.TxQuerier, id, relatedID int64) error {
	_, err := q.Exec(ctx, `UPDATE transactions SET related_id = $1 WHERE id = $2`, relatedID, id)
	if err != nil {
		return fmt.Errorf("set related id on transaction %d: %w", id, err)
	}
	return nil
}

// MarkProcessed stamps the processor onto a redemption within a unit.
func (r *TransactionRepository) MarkProcessed(ctx context.Context, q database.TxQuerier, id int64, processedBy string, processedAt time.Time) error {
	_, err := q.Exec(ctx,
		`UPDATE transactions SET processed_by = $1, processed_at = $2 WHERE id = $3`,
		processedBy, processedAt, id)
	if err != nil {
		return fmt.Errorf("mark transaction %d processed: %w", id, err)
	}
	return nil
}

// SetSuspicious flips the suspicious flag within a unit.
func (r *TransactionRepository) SetSuspicious(ctx context.Context, q database.TxQuerier, id int64, suspicious bool) error {
	_, err := q.Exec(ctx, `UPDATE transactions SET suspicious = $1 WHERE id = $2`, suspicious, id)
	if err != nil {
		return fmt.Errorf("set suspicious on transaction %d: %w", id, err)
	}
	return nil
}

// Get retrieves the full record for one transaction, including the owner
// utorid and promotion associations.
// Returns nil, nil if the transaction is not found (service layer handles this).
func (r *TransactionRepository) Get(ctx context.Context, id int64) (*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions t JOIN users u ON u.id = t.user_id WHERE t.id = $1`

	t, err := scanTransaction(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

// List returns one page of ledger rows matching the filter, newest first, plus
// the total match count. Filter validity (related id needs a type, amount
// needs an operator) is the service's responsibility.
func (r *TransactionRepository) List(ctx context.Context, f model.TransactionFilter, page, limit int) (int64, []model.Transaction, error) {
	where := " WHERE 1=1"
	args := []any{}

	if f.Name != "" {
		args = append(args, f.Name)
		n := len(args)
		where += fmt.Sprintf(" AND (u.utorid = $%d OR u.name ILIKE '%%' || $%d || '%%')", n, n)
	}
	if f.CreatedBy != "" {
		args = append(args, f.CreatedBy)
		where += fmt.Sprintf(" AND t.created_by = $%d", len(args))
	}
	if f.Suspicious != nil {
		args = append(args, *f.Suspicious)
		where += fmt.Sprintf(" AND t.suspicious = $%d", len(args))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		where += fmt.Sprintf(" AND t.type = $%d", len(args))
	}
	if f.RelatedID != nil {
		args = append(args, *f.RelatedID)
		where += fmt.Sprintf(" AND t.related_id = $%d", len(args))
	}
	if f.Amount != nil {
		op := ">="
		if f.Operator == model.OperatorLTE {
			op = "<="
		}
		args = append(args, *f.Amount)
		where += fmt.Sprintf(" AND t.amount %s $%d", op, len(args))
	}
	if f.PromotionID != nil {
		args = append(args, *f.PromotionID)
		where += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM transaction_promotions tp"+
			" WHERE tp.transaction_id = t.id AND tp.promotion_id = $%d)", len(args))
	}

	from := ` FROM transactions t JOIN users u ON u.id = t.user_id`

	var count int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*)"+from+where, args...).Scan(&count); err != nil {
		return 0, nil, fmt.Errorf("count transactions: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf("SELECT %s%s%s ORDER BY t.id DESC LIMIT $%d OFFSET $%d",
		transactionColumns, from, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return 0, nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return 0, nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, *t)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return count, transactions, nil
}
