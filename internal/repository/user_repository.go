package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/loyalty-ledger/internal/model"
	"github.com/fairyhunter13/loyalty-ledger/internal/service"
	"github.com/fairyhunter13/loyalty-ledger/pkg/database"
)

// PoolInterface defines the database operations needed by repositories.
// This allows for easier testing with mocks.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const userColumns = `id, utorid, name, role, points, suspicious, created_at`

// UserRepository provides data access for user accounts using pgx.
type UserRepository struct {
	pool PoolInterface
}

// NewUserRepository creates a new UserRepository with the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// NewUserRepositoryWithPool creates a new UserRepository with a custom pool interface.
// This is primarily used for testing.
func NewUserRepositoryWithPool(pool PoolInterface) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Utorid, &u.Name, &u.Role, &u.Points, &u.Suspicious, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Insert creates a new user account.
// Returns service.ErrUserExists if the utorid is already taken.
func (r *UserRepository) Insert(ctx context.Context, user *model.User) (int64, error) {
	query := `INSERT INTO users (utorid, name, role) VALUES ($1, $2, $3) RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, user.Utorid, user.Name, user.Role).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, service.ErrUserExists
		}
		return 0, fmt.Errorf("insert user %s: %w", user.Utorid, err)
	}
	return user.ID, nil
}

// GetByUtorid retrieves a user by utorid outside any unit.
// Returns nil, nil if the user is not found (service layer handles this).
func (r *UserRepository) GetByUtorid(ctx context.Context, utorid string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE utorid = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, utorid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get user by utorid %s: %w", utorid, err)
	}
	return u, nil
}

// Get retrieves a user by utorid inside a unit, without locking.
// Returns service.ErrUserNotFound if the user doesn't exist.
func (r *UserRepository) Get(ctx context.Context, q database.TxQuerier, utorid string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE utorid = $1`

	u, err := scanUser(q.QueryRow(ctx, query, utorid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", utorid, err)
	}
	return u, nil
}

// GetForUpdate retrieves a user by utorid with a row lock (SELECT FOR UPDATE).
// The lock is held until the transaction completes.
// Returns service.ErrUserNotFound if the user doesn't exist.
func (r *UserRepository) GetForUpdate(ctx context.Context, q database.TxQuerier, utorid string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE utorid = $1 FOR UPDATE`

	u, err := scanUser(q.QueryRow(ctx, query, utorid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user for update %s: %w", utorid, err)
	}
	return u, nil
}

// GetByIDForUpdate retrieves a user by id with a row lock (SELECT FOR UPDATE).
// Returns service.ErrUserNotFound if the user doesn't exist.
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, q database.TxQuerier, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`

	u, err := scanUser(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user for update %d: %w", id, err)
	}
	return u, nil
}

// AddPoints applies `points = points + delta` atomically at the storage layer.
// Must be called within a unit. The CHECK constraint on points maps a would-be
// negative balance to service.ErrNegativeBalance.
func (r *UserRepository) AddPoints(ctx context.Context, q database.TxQuerier, userID, delta int64) error {
	query := `UPDATE users SET points = points + $1 WHERE id = $2`

	_, err := q.Exec(ctx, query, delta, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23514" {
			return service.ErrNegativeBalance
		}
		return fmt.Errorf("add %d points to user %d: %w", delta, userID, err)
	}
	return nil
}

// SetSuspicious flips the per-user suspicious flag, which withholds credit on
// future purchases recorded by this user.
func (r *UserRepository) SetSuspicious(ctx context.Context, utorid string, suspicious bool) error {
	query := `UPDATE users SET suspicious = $1 WHERE utorid = $2`

	tag, err := r.pool.Exec(ctx, query, suspicious, utorid)
	if err != nil {
		return fmt.Errorf("set user %s suspicious: %w", utorid, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrUserNotFound
	}
	return nil
}
