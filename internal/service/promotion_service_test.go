package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/loyalty-ledger/internal/model"
)

// mockPromotionStore is a mock implementation of PromotionStore.
type mockPromotionStore struct {
	insertFn  func(ctx context.Context, p *model.Promotion) (int64, error)
	getByIDFn func(ctx context.Context, id int64) (*model.Promotion, error)
	listFn    func(ctx context.Context, f model.PromotionFilter, page, limit int) (int64, []model.Promotion, error)
	deleteFn  func(ctx context.Context, id int64) error
}

func (m *mockPromotionStore) Insert(ctx context.Context, p *model.Promotion) (int64, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, p)
	}
	return 1, nil
}

func (m *mockPromotionStore) GetByID(ctx context.Context, id int64) (*model.Promotion, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockPromotionStore) List(ctx context.Context, f model.PromotionFilter, page, limit int) (int64, []model.Promotion, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f, page, limit)
	}
	return 0, []model.Promotion{}, nil
}

func (m *mockPromotionStore) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func validAutomaticRequest() *model.CreatePromotionRequest {
	now := time.Now().UTC()
	return &model.CreatePromotionRequest{
		Name:     "double points weekend",
		Kind:     "automatic",
		StartsAt: now.Add(24 * time.Hour),
		EndsAt:   now.Add(72 * time.Hour),
		Rate:     floatPtr(1),
	}
}

func validOneTimeRequest() *model.CreatePromotionRequest {
	now := time.Now().UTC()
	return &model.CreatePromotionRequest{
		Name:     "welcome bonus",
		Kind:     "one-time",
		StartsAt: now.Add(24 * time.Hour),
		EndsAt:   now.Add(72 * time.Hour),
		Points:   int64Ptr(100),
	}
}

func TestPromotionService_Create_Automatic(t *testing.T) {
	var inserted *model.Promotion
	store := &mockPromotionStore{
		insertFn: func(ctx context.Context, p *model.Promotion) (int64, error) {
			p.ID = 5
			inserted = p
			return 5, nil
		},
	}

	svc := NewPromotionService(store)
	p, err := svc.Create(context.Background(), manager, validAutomaticRequest())

	require.NoError(t, err)
	assert.Equal(t, int64(5), p.ID)
	assert.Equal(t, model.PromotionAutomatic, p.Kind)
	require.NotNil(t, inserted.Rate)
	assert.Nil(t, inserted.Points)
}

func TestPromotionService_Create_OneTime(t *testing.T) {
	store := &mockPromotionStore{}
	svc := NewPromotionService(store)

	p, err := svc.Create(context.Background(), manager, validOneTimeRequest())

	require.NoError(t, err)
	assert.Equal(t, model.PromotionOneTime, p.Kind)
	require.NotNil(t, p.Points)
	assert.Equal(t, int64(100), *p.Points)
}

func TestPromotionService_Create_ForbiddenBelowManager(t *testing.T) {
	svc := NewPromotionService(&mockPromotionStore{})
	_, err := svc.Create(context.Background(), cashier, validAutomaticRequest())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestPromotionService_Create_WindowMustEndAfterStart(t *testing.T) {
	req := validAutomaticRequest()
	req.EndsAt = req.StartsAt

	svc := NewPromotionService(&mockPromotionStore{})
	_, err := svc.Create(context.Background(), manager, req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestPromotionService_Create_AwardShapeMustMatchKind(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*model.CreatePromotionRequest)
	}{
		{
			name:   "automatic without rate",
			mutate: func(r *model.CreatePromotionRequest) { r.Kind = "automatic"; r.Rate = nil; r.Points = int64Ptr(10) },
		},
		{
			name:   "automatic with flat award",
			mutate: func(r *model.CreatePromotionRequest) { r.Points = int64Ptr(10) },
		},
		{
			name:   "one-time without points",
			mutate: func(r *model.CreatePromotionRequest) { r.Kind = "one-time"; r.Rate = floatPtr(1) },
		},
		{
			name:   "unknown kind",
			mutate: func(r *model.CreatePromotionRequest) { r.Kind = "seasonal" },
		},
	}

	svc := NewPromotionService(&mockPromotionStore{})
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := validAutomaticRequest()
			tc.mutate(req)

			_, err := svc.Create(context.Background(), manager, req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRequest))
		})
	}
}

func TestPromotionService_Get_NotFound(t *testing.T) {
	svc := NewPromotionService(&mockPromotionStore{})
	_, err := svc.Get(context.Background(), 404)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPromotionNotFound))
}

func TestPromotionService_List_RejectsUnknownKind(t *testing.T) {
	svc := NewPromotionService(&mockPromotionStore{})
	_, err := svc.List(context.Background(), model.PromotionFilter{Kind: "seasonal"}, 1, 10)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestPromotionService_List_ClampsPagination(t *testing.T) {
	var gotPage, gotLimit int
	store := &mockPromotionStore{
		listFn: func(ctx context.Context, f model.PromotionFilter, page, limit int) (int64, []model.Promotion, error) {
			gotPage, gotLimit = page, limit
			return 0, []model.Promotion{}, nil
		},
	}

	svc := NewPromotionService(store)
	res, err := svc.List(context.Background(), model.PromotionFilter{}, -1, 0)

	require.NoError(t, err)
	assert.Equal(t, 1, gotPage)
	assert.Equal(t, 10, gotLimit)
	assert.NotNil(t, res.Results)
}

func TestPromotionService_Delete_BeforeStart(t *testing.T) {
	deleted := int64(0)
	store := &mockPromotionStore{
		getByIDFn: func(ctx context.Context, id int64) (*model.Promotion, error) {
			return &model.Promotion{ID: id, StartsAt: time.Now().UTC().Add(time.Hour)}, nil
		},
		deleteFn: func(ctx context.Context, id int64) error {
			deleted = id
			return nil
		},
	}

	svc := NewPromotionService(store)
	err := svc.Delete(context.Background(), manager, 5)

	require.NoError(t, err)
	assert.Equal(t, int64(5), deleted)
}

func TestPromotionService_Delete_RejectedOnceStarted(t *testing.T) {
	store := &mockPromotionStore{
		getByIDFn: func(ctx context.Context, id int64) (*model.Promotion, error) {
			return &model.Promotion{ID: id, StartsAt: time.Now().UTC().Add(-time.Hour)}, nil
		},
	}

	svc := NewPromotionService(store)
	err := svc.Delete(context.Background(), manager, 5)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPromotionStarted))
}

func TestPromotionService_Delete_NotFound(t *testing.T) {
	svc := NewPromotionService(&mockPromotionStore{})
	err := svc.Delete(context.Background(), manager, 404)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPromotionNotFound))
}

func TestPromotionService_Delete_ForbiddenBelowManager(t *testing.T) {
	svc := NewPromotionService(&mockPromotionStore{})
	err := svc.Delete(context.Background(), cashier, 5)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrForbidden))
}
