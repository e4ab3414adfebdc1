package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/loyalty-ledger/internal/model"
)

// PromotionServiceInterface defines the interface for promotion catalog logic.
type PromotionServiceInterface interface {
	Create(ctx context.Context, actor model.Identity, req *model.CreatePromotionRequest) (*model.Promotion, error)
	Get(ctx context.Context, id int64) (*model.Promotion, error)
	List(ctx context.Context, f model.PromotionFilter, page, limit int) (*model.PromotionList, error)
	Delete(ctx context.Context, actor model.Identity, id int64) error
}

// PromotionHandler handles HTTP requests for the promotion catalog.
type PromotionHandler struct {
	service   PromotionServiceInterface
	validator *validator.Validate
}

// NewPromotionHandler creates a new PromotionHandler with the given service and validator.
func NewPromotionHandler(svc PromotionServiceInterface, v *validator.Validate) *PromotionHandler {
	return &PromotionHandler{service: svc, validator: v}
}

// CreatePromotion handles POST /api/promotions.
func (h *PromotionHandler) CreatePromotion(c *fiber.Ctx) error {
	identity, err := identityFromRequest(c)
	if err != nil {
		return unauthenticated(c)
	}

	var req model.CreatePromotionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	p, err := h.service.Create(c.Context(), identity, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// GetPromotion handles GET /api/promotions/:id.
func (h *PromotionHandler) GetPromotion(c *fiber.Ctx) error {
	if _, err := identityFromRequest(c); err != nil {
		return unauthenticated(c)
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid promotion id"})
	}

	p, err := h.service.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

// ListPromotions handles GET /api/promotions. The `active` flag narrows the
// catalog to promotions whose activity window contains the current time.
func (h *PromotionHandler) ListPromotions(c *fiber.Ctx) error {
	if _, err := identityFromRequest(c); err != nil {
		return unauthenticated(c)
	}

	f := model.PromotionFilter{Kind: c.Query("kind")}
	if v := c.Query("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid active filter"})
		}
		if active {
			now := time.Now().UTC()
			f.ActiveAt = &now
		}
	}

	res, err := h.service.List(c.Context(), f, c.QueryInt("page", 1), c.QueryInt("limit", 10))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// DeletePromotion handles DELETE /api/promotions/:id.
func (h *PromotionHandler) DeletePromotion(c *fiber.Ctx) error {
	identity, err := identityFromRequest(c)
	if err != nil {
		return unauthenticated(c)
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid promotion id"})
	}

	if err := h.service.Delete(c.Context(), identity, id); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusNoContent).Send(nil)
}
