package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fairyhunter13/loyalty-ledger/internal/model"
)

// PromotionCatalog defines the read-only promotion access the resolver needs.
type PromotionCatalog interface {
	ListAutomaticActive(ctx context.Context, asOf time.Time, spent float64) ([]model.Promotion, error)
	GetByIDs(ctx context.Context, ids []int64) ([]model.Promotion, error)
	UsageExists(ctx context.Context, userID, promotionID int64) (bool, error)
}

// PromotionResolver decides which promotions apply to a purchase. It performs
// reads only; usage rows are written later inside the purchase unit so nothing
// is reserved for a purchase that never commits.
type PromotionResolver struct {
	catalog PromotionCatalog
}

// NewPromotionResolver creates a resolver over the given catalog.
func NewPromotionResolver(catalog PromotionCatalog) *PromotionResolver {
	return &PromotionResolver{catalog: catalog}
}

// Resolve returns the de-duplicated set of promotions applicable to a purchase
// of spent by userID at asOf: every automatic promotion whose window contains
// asOf and whose minimum spend is met, plus every manually selected promotion.
// Manual ids must exist (ErrInvalidPromotion), satisfy the window and minimum
// spend (ErrPromotionNotApplicable), and for one-time promotions have no prior
// usage by this user (ErrPromotionAlreadyUsed). The result keeps catalog order
// for automatic promotions followed by manual selections not already present.
func (r *PromotionResolver) Resolve(ctx context.Context, userID int64, spent float64, manualIDs []int64, asOf time.Time) ([]model.Promotion, error) {
	automatic, err := r.catalog.ListAutomaticActive(ctx, asOf, spent)
	if err != nil {
		return nil, fmt.Errorf("list automatic promotions: %w", err)
	}

	resolved := make([]model.Promotion, 0, len(automatic)+len(manualIDs))
	seen := make(map[int64]struct{}, len(automatic)+len(manualIDs))
	for _, p := range automatic {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		resolved = append(resolved, p)
	}

	if len(manualIDs) == 0 {
		return resolved, nil
	}

	manual, err := r.catalog.GetByIDs(ctx, manualIDs)
	if err != nil {
		return nil, fmt.Errorf("get selected promotions: %w", err)
	}
	byID := make(map[int64]model.Promotion, len(manual))
	for _, p := range manual {
		byID[p.ID] = p
	}

	for _, id := range manualIDs {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("promotion %d: %w", id, ErrInvalidPromotion)
		}
		if !p.ActiveAt(asOf) || !p.MinSpendMet(spent) {
			return nil, fmt.Errorf("promotion %d: %w", id, ErrPromotionNotApplicable)
		}
		if p.Kind == model.PromotionOneTime {
			used, err := r.catalog.UsageExists(ctx, userID, id)
			if err != nil {
				return nil, fmt.Errorf("check promotion usage: %w", err)
			}
			if used {
				return nil, fmt.Errorf("promotion %d: %w", id, ErrPromotionAlreadyUsed)
			}
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		resolved = append(resolved, p)
	}

	return resolved, nil
}
