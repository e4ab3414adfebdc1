package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// schema is the complete DDL for the ledger. Statements are idempotent so the
// migration can run on every startup. The CHECK on users.points is the
// storage-level backstop for the balance invariant; the UNIQUE pair on
// promotion_usages is the concurrency-safety primitive against double
// redemption of one-time promotions.
const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		utorid VARCHAR(32) NOT NULL UNIQUE,
		name VARCHAR(128) NOT NULL,
		role VARCHAR(16) NOT NULL DEFAULT 'regular',
		points BIGINT NOT NULL DEFAULT 0 CHECK (points >= 0),
		suspicious BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS promotions (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		kind VARCHAR(16) NOT NULL CHECK (kind IN ('automatic', 'one-time')),
		starts_at TIMESTAMPTZ NOT NULL,
		ends_at TIMESTAMPTZ NOT NULL,
		min_spend DOUBLE PRECISION NULL,
		rate DOUBLE PRECISION NULL,
		points BIGINT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS promotion_usages (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		promotion_id BIGINT NOT NULL REFERENCES promotions(id),
		used_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, promotion_id)
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		type VARCHAR(16) NOT NULL CHECK (type IN ('purchase', 'adjustment', 'redemption', 'transfer', 'event')),
		amount BIGINT NOT NULL,
		spent DOUBLE PRECISION NULL,
		redeemed BIGINT NULL,
		related_id BIGINT NULL,
		suspicious BOOLEAN NOT NULL DEFAULT FALSE,
		remark TEXT NOT NULL DEFAULT '',
		created_by VARCHAR(32) NOT NULL,
		processed_by VARCHAR(32) NULL,
		processed_at TIMESTAMPTZ NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS transaction_promotions (
		transaction_id BIGINT NOT NULL REFERENCES transactions(id),
		promotion_id BIGINT NOT NULL REFERENCES promotions(id),
		PRIMARY KEY (transaction_id, promotion_id)
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions(user_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_type ON transactions(type);
	CREATE INDEX IF NOT EXISTS idx_transactions_created_by ON transactions(created_by);
	CREATE INDEX IF NOT EXISTS idx_promotion_usages_user_id ON promotion_usages(user_id);
`

// Migrate applies the ledger schema. It runs at server and seeder startup and
// from the integration test harness.
func Migrate(ctx context.Context, q TxQuerier) error {
	if _, err := q.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	log.Debug().Msg("database schema up to date")
	return nil
}
