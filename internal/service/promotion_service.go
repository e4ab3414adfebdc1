package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fairyhunter13/loyalty-ledger/internal/model"
)

// PromotionStore defines the catalog write/read access the promotion service
// needs beyond what the resolver reads.
type PromotionStore interface {
	Insert(ctx context.Context, p *model.Promotion) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Promotion, error)
	List(ctx context.Context, f model.PromotionFilter, page, limit int) (int64, []model.Promotion, error)
	Delete(ctx context.Context, id int64) error
}

// PromotionService manages the promotion catalog the resolver reads. There is
// no update operation: once a promotion exists it is immutable, and deletion
// is rejected after the activity window opens so historical awards keep their
// referenced promotions.
type PromotionService struct {
	store PromotionStore
}

// NewPromotionService creates a PromotionService over the given store.
func NewPromotionService(store PromotionStore) *PromotionService {
	return &PromotionService{store: store}
}

// Create adds a promotion to the catalog. Requires manager. The award shape
// must match the kind: automatic promotions carry a bonus rate, one-time
// promotions a flat point award, never both.
func (s *PromotionService) Create(ctx context.Context, actor model.Identity, req *model.CreatePromotionRequest) (*model.Promotion, error) {
	if !actor.Role.AtLeast(model.RoleManager) {
		return nil, ErrForbidden
	}
	if req == nil {
		return nil, ErrInvalidRequest
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, fmt.Errorf("activity window must end after it starts: %w", ErrInvalidRequest)
	}

	kind := model.PromotionKind(req.Kind)
	switch kind {
	case model.PromotionAutomatic:
		if req.Rate == nil || req.Points != nil {
			return nil, fmt.Errorf("automatic promotions carry a rate, not a flat award: %w", ErrInvalidRequest)
		}
	case model.PromotionOneTime:
		if req.Points == nil || req.Rate != nil {
			return nil, fmt.Errorf("one-time promotions carry a flat award, not a rate: %w", ErrInvalidRequest)
		}
	default:
		return nil, fmt.Errorf("unknown promotion kind %q: %w", req.Kind, ErrInvalidRequest)
	}

	p := &model.Promotion{
		Name:        req.Name,
		Description: req.Description,
		Kind:        kind,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		MinSpend:    req.MinSpend,
		Rate:        req.Rate,
		Points:      req.Points,
	}
	if _, err := s.store.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("create promotion: %w", err)
	}
	return p, nil
}

// Get returns one promotion. Returns ErrPromotionNotFound when absent.
func (s *PromotionService) Get(ctx context.Context, id int64) (*model.Promotion, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get promotion: %w", err)
	}
	if p == nil {
		return nil, ErrPromotionNotFound
	}
	return p, nil
}

// List returns one page of the catalog plus the total match count.
func (s *PromotionService) List(ctx context.Context, f model.PromotionFilter, page, limit int) (*model.PromotionList, error) {
	if f.Kind != "" && f.Kind != string(model.PromotionAutomatic) && f.Kind != string(model.PromotionOneTime) {
		return nil, fmt.Errorf("unknown promotion kind %q: %w", f.Kind, ErrInvalidRequest)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	count, promotions, err := s.store.List(ctx, f, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	return &model.PromotionList{Count: count, Results: promotions}, nil
}

// Delete removes a promotion that has not started yet. Requires manager.
// Returns ErrPromotionStarted once the activity window has opened, which also
// covers every promotion a committed purchase references.
func (s *PromotionService) Delete(ctx context.Context, actor model.Identity, id int64) error {
	if !actor.Role.AtLeast(model.RoleManager) {
		return ErrForbidden
	}

	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get promotion: %w", err)
	}
	if p == nil {
		return ErrPromotionNotFound
	}
	if !time.Now().UTC().Before(p.StartsAt) {
		return ErrPromotionStarted
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete promotion: %w", err)
	}
	return nil
}
