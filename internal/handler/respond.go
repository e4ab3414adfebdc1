package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/loyalty-ledger/internal/model"
	"github.com/fairyhunter13/loyalty-ledger/internal/service"
)

// identityFromRequest reads the pre-verified caller from the X-Utorid and
// X-Role headers the gateway forwards. Requests without a valid pair never
// reach a service.
func identityFromRequest(c *fiber.Ctx) (model.Identity, error) {
	utorid := c.Get("X-Utorid")
	if utorid == "" {
		return model.Identity{}, errors.New("missing X-Utorid header")
	}
	role, ok := model.ParseRole(c.Get("X-Role"))
	if !ok {
		return model.Identity{}, errors.New("missing or unknown X-Role header")
	}
	return model.Identity{Utorid: utorid, Role: role}, nil
}

// unauthenticated rejects a request that arrived without a usable identity.
func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthenticated"})
}

// respondError maps a service error to its HTTP status. Sentinels the caller
// can act on keep a stable message; anything unrecognized is logged and
// returned opaque.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	case errors.Is(err, service.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
	case errors.Is(err, service.ErrTransactionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "transaction not found"})
	case errors.Is(err, service.ErrPromotionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "promotion not found"})
	case errors.Is(err, service.ErrUserExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "user already exists"})
	case errors.Is(err, service.ErrPromotionAlreadyUsed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "promotion already used"})
	case errors.Is(err, service.ErrAlreadyProcessed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "redemption already processed"})
	case errors.Is(err, service.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict"})
	case errors.Is(err, service.ErrNegativeBalance):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "insufficient points"})
	case errors.Is(err, service.ErrInvalidPromotion):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "promotion does not exist"})
	case errors.Is(err, service.ErrPromotionNotApplicable):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "promotion not applicable"})
	case errors.Is(err, service.ErrPromotionStarted):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "promotion already started"})
	case errors.Is(err, service.ErrNotRedemption):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "transaction is not a redemption"})
	case errors.Is(err, service.ErrSelfTransfer):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot transfer to yourself"})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}

// formatValidationError converts validator errors to stable client messages.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := fe.Field()
			switch fe.Tag() {
			case "required":
				return "invalid request: " + field + " is required"
			case "utorid":
				return "invalid request: " + field + " must be 2-32 lowercase letters or digits"
			case "oneof":
				return "invalid request: " + field + " must be one of " + fe.Param()
			case "notblank":
				return "invalid request: " + field + " cannot be whitespace only"
			case "max":
				return "invalid request: " + field + " exceeds maximum length"
			case "gt", "gte":
				return "invalid request: " + field + " must be positive"
			default:
				return "invalid request: " + field + " is invalid"
			}
		}
	}
	return "invalid request"
}
