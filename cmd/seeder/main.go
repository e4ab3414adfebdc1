package main

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/loyalty-ledger/internal/config"
	"github.com/fairyhunter13/loyalty-ledger/pkg/database"
)

const (
	totalUsers    = 1000
	initialPoints = 500
)

// Seeds a local database with throwaway accounts and a small promotion
// catalog for load testing. Existing data is left alone.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to connect to database")
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate schema")
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		log.Fatal().Err(err).Msg("failed to count users")
	}
	if count >= totalUsers {
		log.Info().Int("users", count).Msg("database already seeded, skipping")
		return
	}

	log.Info().Int("users", totalUsers).Msg("generating accounts")
	rows := make([][]interface{}, 0, totalUsers)
	for i := 0; i < totalUsers; i++ {
		utorid := strings.ReplaceAll(uuid.New().String(), "-", "")
		rows = append(rows, []interface{}{utorid, "Seed User", "regular", int64(initialPoints), time.Now().UTC()})
	}

	copied, err := pool.CopyFrom(
		ctx,
		pgx.Identifier{"users"},
		[]string{"utorid", "name", "role", "points", "created_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("bulk insert failed")
	}
	log.Info().Int64("users", copied).Msg("seeded accounts")

	// One promotion of each kind, active for the next week.
	now := time.Now().UTC()
	_, err = pool.Exec(ctx, `
		INSERT INTO promotions (name, description, kind, starts_at, ends_at, min_spend, rate, points)
		VALUES
			('seed automatic bonus', 'half point per dollar', 'automatic', $1, $2, NULL, 0.5, NULL),
			('seed one-time bonus', 'flat 100 points', 'one-time', $1, $2, 10.0, NULL, 100)
	`, now, now.Add(7*24*time.Hour))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed promotions")
	}
	log.Info().Msg("seeded promotions")
}
