package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/loyalty-ledger/internal/model"
	"github.com/fairyhunter13/loyalty-ledger/internal/service"
	"github.com/fairyhunter13/loyalty-ledger/internal/validator"
)

// mockPromotionService is a mock implementation of PromotionServiceInterface.
type mockPromotionService struct {
	createFn func(ctx context.Context, actor model.Identity, req *model.CreatePromotionRequest) (*model.Promotion, error)
	getFn    func(ctx context.Context, id int64) (*model.Promotion, error)
	listFn   func(ctx context.Context, f model.PromotionFilter, page, limit int) (*model.PromotionList, error)
	deleteFn func(ctx context.Context, actor model.Identity, id int64) error
}

func (m *mockPromotionService) Create(ctx context.Context, actor model.Identity, req *model.CreatePromotionRequest) (*model.Promotion, error) {
	if m.createFn != nil {
		return m.createFn(ctx, actor, req)
	}
	return &model.Promotion{}, nil
}

func (m *mockPromotionService) Get(ctx context.Context, id int64) (*model.Promotion, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &model.Promotion{ID: id}, nil
}

func (m *mockPromotionService) List(ctx context.Context, f model.PromotionFilter, page, limit int) (*model.PromotionList, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f, page, limit)
	}
	return &model.PromotionList{Results: []model.Promotion{}}, nil
}

func (m *mockPromotionService) Delete(ctx context.Context, actor model.Identity, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, actor, id)
	}
	return nil
}

func setupPromotionApp(mockSvc *mockPromotionService) *fiber.App {
	app := fiber.New()
	h := NewPromotionHandler(mockSvc, validator.New())
	app.Post("/api/promotions", h.CreatePromotion)
	app.Get("/api/promotions", h.ListPromotions)
	app.Get("/api/promotions/:id", h.GetPromotion)
	app.Delete("/api/promotions/:id", h.DeletePromotion)
	return app
}

func TestCreatePromotion_Success(t *testing.T) {
	var gotReq *model.CreatePromotionRequest
	mockSvc := &mockPromotionService{
		createFn: func(ctx context.Context, actor model.Identity, req *model.CreatePromotionRequest) (*model.Promotion, error) {
			gotReq = req
			return &model.Promotion{ID: 5, Name: req.Name, Kind: model.PromotionKind(req.Kind)}, nil
		},
	}
	app := setupPromotionApp(mockSvc)

	body := `{"name": "double points weekend", "kind": "automatic", "starts_at": "2026-09-01T00:00:00Z", "ends_at": "2026-09-03T00:00:00Z", "rate": 1.0}`
	resp, err := app.Test(newRequest(http.MethodPost, "/api/promotions", body, "manager1", "manager"))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.NotNil(t, gotReq)
	assert.Equal(t, "automatic", gotReq.Kind)
	require.NotNil(t, gotReq.Rate)
	assert.Equal(t, 1.0, *gotReq.Rate)
}

func TestCreatePromotion_MissingName(t *testing.T) {
	app := setupPromotionApp(&mockPromotionService{})

	body := `{"kind": "automatic", "starts_at": "2026-09-01T00:00:00Z", "ends_at": "2026-09-03T00:00:00Z", "rate": 1.0}`
	resp, err := app.Test(newRequest(http.MethodPost, "/api/promotions", body, "manager1", "manager"))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	result := decodeBody(t, resp)
	assert.Equal(t, "invalid request: Name is required", result["error"])
}

func TestCreatePromotion_UnknownKind(t *testing.T) {
	app := setupPromotionApp(&mockPromotionService{})

	body := `{"name": "x promo", "kind": "seasonal", "starts_at": "2026-09-01T00:00:00Z", "ends_at": "2026-09-03T00:00:00Z"}`
	resp, err := app.Test(newRequest(http.MethodPost, "/api/promotions", body, "manager1", "manager"))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	result := decodeBody(t, resp)
	assert.Equal(t, "invalid request: Kind must be one of automatic one-time", result["error"])
}

func TestCreatePromotion_Forbidden(t *testing.T) {
	mockSvc := &mockPromotionService{
		createFn: func(ctx context.Context, actor model.Identity, req *model.CreatePromotionRequest) (*model.Promotion, error) {
			return nil, service.ErrForbidden
		},
	}
	app := setupPromotionApp(mockSvc)

	body := `{"name": "double points weekend", "kind": "automatic", "starts_at": "2026-09-01T00:00:00Z", "ends_at": "2026-09-03T00:00:00Z", "rate": 1.0}`
	resp, err := app.Test(newRequest(http.MethodPost, "/api/promotions", body, "cashier1", "cashier"))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestGetPromotion_NotFound(t *testing.T) {
	mockSvc := &mockPromotionService{
		getFn: func(ctx context.Context, id int64) (*model.Promotion, error) {
			return nil, service.ErrPromotionNotFound
		},
	}
	app := setupPromotionApp(mockSvc)

	resp, err := app.Test(newRequest(http.MethodGet, "/api/promotions/404", "", "johndoe1", "regular"))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	result := decodeBody(t, resp)
	assert.Equal(t, "promotion not found", result["error"])
}

func TestListPromotions_ActiveFilter(t *testing.T) {
	var gotFilter model.PromotionFilter
	mockSvc := &mockPromotionService{
		listFn: func(ctx context.Context, f model.PromotionFilter, page, limit int) (*model.PromotionList, error) {
			gotFilter = f
			return &model.PromotionList{Results: []model.Promotion{}}, nil
		},
	}
	app := setupPromotionApp(mockSvc)

	before := time.Now().UTC()
	resp, err := app.Test(newRequest(http.MethodGet, "/api/promotions?kind=automatic&active=true", "", "johndoe1", "regular"))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "automatic", gotFilter.Kind)
	require.NotNil(t, gotFilter.ActiveAt)
	assert.False(t, gotFilter.ActiveAt.Before(before))
}

func TestDeletePromotion_Success(t *testing.T) {
	var gotID int64
	mockSvc := &mockPromotionService{
		deleteFn: func(ctx context.Context, actor model.Identity, id int64) error {
			gotID = id
			return nil
		},
	}
	app := setupPromotionApp(mockSvc)

	resp, err := app.Test(newRequest(http.MethodDelete, "/api/promotions/5", "", "manager1", "manager"))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, int64(5), gotID)
}

func TestDeletePromotion_AlreadyStarted(t *testing.T) {
	mockSvc := &mockPromotionService{
		deleteFn: func(ctx context.Context, actor model.Identity, id int64) error {
			return service.ErrPromotionStarted
		},
	}
	app := setupPromotionApp(mockSvc)

	resp, err := app.Test(newRequest(http.MethodDelete, "/api/promotions/5", "", "manager1", "manager"))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	result := decodeBody(t, resp)
	assert.Equal(t, "promotion already started", result["error"])
}
