package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/loyalty-ledger/internal/model"
)

// UserServiceInterface defines the interface for account logic.
type UserServiceInterface interface {
	Register(ctx context.Context, actor model.Identity, req *model.RegisterUserRequest) (*model.UserResponse, error)
	Get(ctx context.Context, actor model.Identity, utorid string) (*model.UserResponse, error)
	SetSuspicious(ctx context.Context, actor model.Identity, utorid string, suspicious bool) error
}

// UserHandler handles HTTP requests for account operations.
type UserHandler struct {
	service   UserServiceInterface
	validator *validator.Validate
}

// NewUserHandler creates a new UserHandler with the given service and validator.
func NewUserHandler(svc UserServiceInterface, v *validator.Validate) *UserHandler {
	return &UserHandler{service: svc, validator: v}
}

// RegisterUser handles POST /api/users.
func (h *UserHandler) RegisterUser(c *fiber.Ctx) error {
	identity, err := identityFromRequest(c)
	if err != nil {
		return unauthenticated(c)
	}

	var req model.RegisterUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	user, err := h.service.Register(c.Context(), identity, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// GetUser handles GET /api/users/:utorid.
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	identity, err := identityFromRequest(c)
	if err != nil {
		return unauthenticated(c)
	}
	utorid := c.Params("utorid")

	user, err := h.service.Get(c.Context(), identity, utorid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// SetUserSuspicious handles PATCH /api/users/:utorid/suspicious. Flagging a
// cashier makes their future purchases withhold credit until review.
func (h *UserHandler) SetUserSuspicious(c *fiber.Ctx) error {
	identity, err := identityFromRequest(c)
	if err != nil {
		return unauthenticated(c)
	}
	utorid := c.Params("utorid")

	var req model.SetSuspiciousRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	if err := h.service.SetSuspicious(c.Context(), identity, utorid, *req.Suspicious); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"utorid": utorid, "suspicious": *req.Suspicious})
}
