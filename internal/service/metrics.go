package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_transactions_total",
		Help: "Committed ledger transactions by type",
	}, []string{"type"})

	rejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_rejections_total",
		Help: "Rejected ledger mutations by reason",
	}, []string{"reason"})

	unitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_unit_duration_seconds",
		Help:    "Duration of atomic ledger units",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"op"})
)

// rejectionReason buckets an error into a stable metric label.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrTransactionNotFound), errors.Is(err, ErrPromotionNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidPromotion):
		return "invalid_promotion"
	case errors.Is(err, ErrPromotionNotApplicable):
		return "promotion_not_applicable"
	case errors.Is(err, ErrPromotionAlreadyUsed):
		return "promotion_already_used"
	case errors.Is(err, ErrNegativeBalance):
		return "negative_balance"
	case errors.Is(err, ErrAlreadyProcessed):
		return "already_processed"
	case errors.Is(err, ErrNotRedemption):
		return "not_redemption"
	case errors.Is(err, ErrSelfTransfer):
		return "self_transfer"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}

// observeUnit records the outcome of one ledger operation. txType is counted
// only on success.
func observeUnit(op string, txType string, seconds float64, err error) {
	unitDuration.WithLabelValues(op).Observe(seconds)
	if err != nil {
		rejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
		return
	}
	if txType != "" {
		transactionsTotal.WithLabelValues(txType).Inc()
	}
}
