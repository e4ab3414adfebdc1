package stress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/loyalty-ledger/internal/model"
	"github.com/fairyhunter13/loyalty-ledger/internal/service"
)

// TestOneTimePromotionDoubleSpend fires 10 concurrent purchases for the SAME
// user all selecting the same one-time promotion. The UNIQUE(user_id,
// promotion_id) constraint must let exactly one through; every loser rolls
// back completely.
func TestOneTimePromotionDoubleSpend(t *testing.T) {
	cleanupTables(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	ledger := newLedger()
	seedUser(t, "cashier1", model.RoleCashier, 0)
	seedUser(t, "greedy01", model.RoleRegular, 0)

	var promoID int64
	now := time.Now().UTC()
	require.NoError(t, testPool.QueryRow(ctx,
		"INSERT INTO promotions (name, kind, starts_at, ends_at, points) VALUES ('flash bonus', 'one-time', $1, $2, 100) RETURNING id",
		now.Add(-time.Hour), now.Add(time.Hour)).Scan(&promoID))

	const attempts = 10
	cashier := model.Identity{Utorid: "cashier1", Role: model.RoleCashier}

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	start := make(chan struct{})

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := ledger.CreatePurchase(ctx, model.PurchaseCommand{
				OwnerUtorid:  "greedy01",
				Creator:      cashier,
				Spent:        25,
				PromotionIDs: []int64{promoID},
			})
			results <- err
		}()
	}

	close(start)
	wg.Wait()
	close(results)

	var successes, rejected int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, service.ErrPromotionAlreadyUsed):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes, "exactly one attempt may consume the promotion")
	assert.Equal(t, attempts-1, rejected)
	assert.Equal(t, int64(125), userPoints(t, "greedy01"), "one base award plus one flat bonus")

	var usageCount, txCount int
	require.NoError(t, testPool.QueryRow(ctx, "SELECT COUNT(*) FROM promotion_usages").Scan(&usageCount))
	require.NoError(t, testPool.QueryRow(ctx, "SELECT COUNT(*) FROM transactions").Scan(&txCount))
	assert.Equal(t, 1, usageCount)
	assert.Equal(t, 1, txCount, "losers persist nothing")
}

// TestConcurrentRedemptionsNeverOverdraw races many redemption processings
// against a balance that can only cover some of them. The CHECK(points >= 0)
// backstop plus the row locks must keep the balance non-negative.
func TestConcurrentRedemptionsNeverOverdraw(t *testing.T) {
	cleanupTables(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	ledger := newLedger()
	seedUser(t, "cashier1", model.RoleCashier, 0)
	seedUser(t, "member01", model.RoleRegular, 100)

	member := model.Identity{Utorid: "member01", Role: model.RoleRegular}
	cashier := model.Identity{Utorid: "cashier1", Role: model.RoleCashier}

	// Five pending redemptions of 30 against a balance of 100: at most three
	// can ever complete.
	ids := make([]int64, 0, 5)
	for i := 0; i < 5; i++ {
		res, err := ledger.CreateRedemption(ctx, model.RedemptionCommand{Owner: member, Amount: 30})
		require.NoError(t, err)
		ids = append(ids, res.TransactionID)
	}

	var wg sync.WaitGroup
	results := make(chan error, len(ids))
	for _, id := range ids {
		wg.Add(1)
		go func(txID int64) {
			defer wg.Done()
			_, err := ledger.ProcessRedemption(ctx, model.ProcessRedemptionCommand{
				TransactionID: txID,
				Processor:     cashier,
			})
			results <- err
		}(id)
	}
	wg.Wait()
	close(results)

	var successes, insufficient int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, service.ErrNegativeBalance):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 3, successes, "only three 30-point debits fit in 100")
	assert.Equal(t, 2, insufficient)

	remaining := userPoints(t, "member01")
	assert.Equal(t, int64(10), remaining)
	assert.GreaterOrEqual(t, remaining, int64(0), "balance never goes negative")
}
