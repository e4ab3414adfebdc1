package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/loyalty-ledger/internal/model"
	"github.com/fairyhunter13/loyalty-ledger/internal/service"
)

func TestTransactionRepository_Insert_Success(t *testing.T) {
	var capturedSQL string
	var capturedArgs []any
	mockTx := &mockTxQuerier{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			capturedSQL = sql
			capturedArgs = args
			return &mockRow{scanFn: func(dest ...any) error {
				*(dest[0].(*int64)) = 101
				*(dest[1].(*time.Time)) = time.Now()
				return nil
			}}
		},
	}

	spent := 25.0
	repo := NewTransactionRepositoryWithPool(&mockPool{})
	id, err := repo.Insert(context.Background(), mockTx, &model.Transaction{
		UserID:    7,
		Type:      model.TxPurchase,
		Amount:    37,
		Spent:     &spent,
		CreatedBy: "cashier1",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(101), id)
	assert.Contains(t, capturedSQL, "INSERT INTO transactions")
	assert.Contains(t, capturedSQL, "RETURNING id")
	assert.Equal(t, int64(7), capturedArgs[0])
	assert.Equal(t, model.TxPurchase, capturedArgs[1])
	assert.Equal(t, int64(37), capturedArgs[2])
}

func TestTransactionRepository_Insert_DatabaseError(t *testing.T) {
	dbErr := errors.New("database insert timeout")
	mockTx := &mockTxQuerier{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{scanFn: func(dest ...any) error {
				return dbErr
			}}
		},
	}

	repo := NewTransactionRepositoryWithPool(&mockPool{})
	_, err := repo.Insert(context.Background(), mockTx, &model.Transaction{Type: model.TxAdjustment})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert adjustment transaction")
	assert.True(t, errors.Is(err, dbErr), "should wrap original error")
}

func TestTransactionRepository_LinkPromotions_SingleStatement(t *testing.T) {
	var capturedSQL string
	var capturedArgs []any
	mockTx := &mockTxQuerier{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			capturedSQL = sql
			capturedArgs = arguments
			return pgconn.NewCommandTag("INSERT 0 2"), nil
		},
	}

	repo := NewTransactionRepositoryWithPool(&mockPool{})
	err := repo.LinkPromotions(context.Background(), mockTx, 101, []int64{3, 5})

	require.NoError(t, err)
	assert.Contains(t, capturedSQL, "transaction_promotions")
	assert.Contains(t, capturedSQL, "unnest")
	assert.Equal(t, int64(101), capturedArgs[0])
	assert.Equal(t, []int64{3, 5}, capturedArgs[1])
}

func TestTransactionRepository_Exists(t *testing.T) {
	mockTx := &mockTxQuerier{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{scanFn: func(dest ...any) error {
				*(dest[0].(*bool)) = true
				return nil
			}}
		},
	}

	repo := NewTransactionRepositoryWithPool(&mockPool{})
	ok, err := repo.Exists(context.Background(), mockTx, 101)

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTransactionRepository_GetForUpdate_NotFound(t *testing.T) {
	var capturedSQL string
	mockTx := &mockTxQuerier{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			capturedSQL = sql
			return &mockRow{scanFn: func(dest ...any) error {
				return pgx.ErrNoRows
			}}
		},
	}

	repo := NewTransactionRepositoryWithPool(&mockPool{})
	row, err := repo.GetForUpdate(context.Background(), mockTx, 404)

	require.Error(t, err)
	assert.Nil(t, row)
	assert.True(t, errors.Is(err, service.ErrTransactionNotFound))
	assert.Contains(t, capturedSQL, "FOR UPDATE", "must lock the row for the unit")
}

func TestTransactionRepository_MarkProcessed_StampsProcessor(t *testing.T) {
	var capturedSQL string
	var capturedArgs []any
	mockTx := &mockTxQuerier{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			capturedSQL = sql
			capturedArgs = arguments
			return pgconn.NewCommandTag("UPDATE 1"), nil
		},
	}

	processedAt := time.Now().UTC()
	repo := NewTransactionRepositoryWithPool(&mockPool{})
	err := repo.MarkProcessed(context.Background(), mockTx, 101, "cashier1", processedAt)

	require.NoError(t, err)
	assert.Contains(t, capturedSQL, "processed_by = $1")
	assert.Contains(t, capturedSQL, "processed_at = $2")
	assert.Equal(t, "cashier1", capturedArgs[0])
	assert.Equal(t, processedAt, capturedArgs[1])
	assert.Equal(t, int64(101), capturedArgs[2])
}

func TestTransactionRepository_SetRelatedID(t *testing.T) {
	var capturedArgs []any
	mockTx := &mockTxQuerier{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			capturedArgs = arguments
			return pgconn.NewCommandTag("UPDATE 1"), nil
		},
	}

	repo := NewTransactionRepositoryWithPool(&mockPool{})
	err := repo.SetRelatedID(context.Background(), mockTx, 101, 102)

	require.NoError(t, err)
	assert.Equal(t, int64(102), capturedArgs[0], "related id first")
	assert.Equal(t, int64(101), capturedArgs[1])
}

func TestTransactionRepository_Get_NotFound(t *testing.T) {
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{scanFn: func(dest ...any) error {
				return pgx.ErrNoRows
			}}
		},
	}

	repo := NewTransactionRepositoryWithPool(mock)
	row, err := repo.Get(context.Background(), 404)

	require.NoError(t, err, "absent transaction is nil, nil - service decides")
	assert.Nil(t, row)
}

func TestTransactionRepository_List_BuildsFilterClauses(t *testing.T) {
	var countSQL, listSQL string
	var listArgs []any
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			countSQL = sql
			return &mockRow{scanFn: func(dest ...any) error {
				*(dest[0].(*int64)) = 0
				return nil
			}}
		},
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			listSQL = sql
			listArgs = args
			return &mockRows{}, nil
		},
	}

	suspicious := true
	amount := int64(50)
	promoID := int64(3)
	repo := NewTransactionRepositoryWithPool(mock)
	count, rows, err := repo.List(context.Background(), model.TransactionFilter{
		Name:        "johndoe1",
		CreatedBy:   "cashier1",
		Suspicious:  &suspicious,
		Type:        "purchase",
		Amount:      &amount,
		Operator:    model.OperatorGTE,
		PromotionID: &promoID,
	}, 2, 10)

	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
	assert.NotNil(t, rows, "should return empty slice, not nil")
	assert.Contains(t, countSQL, "COUNT(*)")
	assert.Contains(t, listSQL, "t.created_by = $2")
	assert.Contains(t, listSQL, "t.suspicious = $3")
	assert.Contains(t, listSQL, "t.type = $4")
	assert.Contains(t, listSQL, "t.amount >= $5")
	assert.Contains(t, listSQL, "tp.promotion_id = $6")
	assert.Contains(t, listSQL, "ORDER BY t.id DESC")
	// limit 10, offset (2-1)*10
	assert.Equal(t, 10, listArgs[len(listArgs)-2])
	assert.Equal(t, 10, listArgs[len(listArgs)-1])
}

func TestTransactionRepository_List_AmountLTE(t *testing.T) {
	var listSQL string
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{scanFn: func(dest ...any) error {
				*(dest[0].(*int64)) = 0
				return nil
			}}
		},
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			listSQL = sql
			return &mockRows{}, nil
		},
	}

	amount := int64(50)
	repo := NewTransactionRepositoryWithPool(mock)
	_, _, err := repo.List(context.Background(), model.TransactionFilter{
		Amount:   &amount,
		Operator: model.OperatorLTE,
	}, 1, 10)

	require.NoError(t, err)
	assert.Contains(t, listSQL, "t.amount <= $1")
}

func TestTransactionRepository_List_CountError(t *testing.T) {
	dbErr := errors.New("database query timeout")
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{scanFn: func(dest ...any) error {
				return dbErr
			}}
		},
	}

	repo := NewTransactionRepositoryWithPool(mock)
	_, _, err := repo.List(context.Background(), model.TransactionFilter{}, 1, 10)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "count transactions")
	assert.True(t, errors.Is(err, dbErr), "should wrap original error")
}

// TestNewTransactionRepository_Production verifies the production constructor.
func TestNewTransactionRepository_Production(t *testing.T) {
	repo := NewTransactionRepository(nil)
	require.NotNil(t, repo)
}
