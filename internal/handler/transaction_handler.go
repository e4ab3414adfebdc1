package handler

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/loyalty-ledger/internal/model"
)

// LedgerServiceInterface defines the interface for ledger business logic.
type LedgerServiceInterface interface {
	CreatePurchase(ctx context.Context, cmd model.PurchaseCommand) (*model.PurchaseResult, error)
	CreateAdjustment(ctx context.Context, cmd model.AdjustmentCommand) (*model.AdjustmentResult, error)
	CreateRedemption(ctx context.Context, cmd model.RedemptionCommand) (*model.RedemptionResult, error)
	ProcessRedemption(ctx context.Context, cmd model.ProcessRedemptionCommand) (*model.ProcessRedemptionResult, error)
	CreateTransfer(ctx context.Context, cmd model.TransferCommand) (*model.TransferResult, error)
	CreateEventAward(ctx context.Context, cmd model.EventAwardCommand) (*model.EventAwardResult, error)
	SetSuspicious(ctx context.Context, transactionID int64, value bool, actor model.Identity) (*model.SuspiciousResult, error)
	Get(ctx context.Context, id int64) (*model.TransactionResponse, error)
	List(ctx context.Context, f model.TransactionFilter, page, limit int) (*model.TransactionList, error)
}

// TransactionHandler handles HTTP requests for ledger operations.
type TransactionHandler struct {
	service   LedgerServiceInterface
	validator *validator.Validate
}

// NewTransactionHandler creates a new TransactionHandler with the given service and validator.
func NewTransactionHandler(svc LedgerServiceInterface, v *validator.Validate) *TransactionHandler {
	return &TransactionHandler{service: svc, validator: v}
}

// CreateTransaction handles POST /api/transactions. The request type selects
// the operation: purchase, adjustment, or event award.
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	identity, err := identityFromRequest(c)
	if err != nil {
		return unauthenticated(c)
	}

	var req model.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	switch model.TransactionType(req.Type) {
	case model.TxPurchase:
		if req.Spent == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: spent is required for purchases"})
		}
		res, err := h.service.CreatePurchase(c.Context(), model.PurchaseCommand{
			OwnerUtorid:  req.Utorid,
			Creator:      identity,
			Spent:        *req.Spent,
			PromotionIDs: req.PromotionIDs,
			Remark:       req.Remark,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)

	case model.TxAdjustment:
		if req.Amount == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: amount is required for adjustments"})
		}
		res, err := h.service.CreateAdjustment(c.Context(), model.AdjustmentCommand{
			OwnerUtorid: req.Utorid,
			Creator:     identity,
			Amount:      *req.Amount,
			RelatedID:   req.RelatedID,
			Remark:      req.Remark,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)

	case model.TxEvent:
		if req.Amount == nil || req.RelatedID == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: amount and related_id are required for event awards"})
		}
		res, err := h.service.CreateEventAward(c.Context(), model.EventAwardCommand{
			OwnerUtorid: req.Utorid,
			Creator:     identity,
			Amount:      *req.Amount,
			EventID:     *req.RelatedID,
			Remark:      req.Remark,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}

	// Unreachable when validation holds; oneof already rejected other types.
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: unknown transaction type"})
}

// CreateRedemption handles POST /api/users/me/redemptions. The caller redeems
// their own points; the redemption stays pending until a cashier processes it.
func (h *TransactionHandler) CreateRedemption(c *fiber.Ctx) error {
	identity, err := identityFromRequest(c)
	if err != nil {
		return unauthenticated(c)
	}

	var req model.CreateRedemptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	res, err := h.service.CreateRedemption(c.Context(), model.RedemptionCommand{
		Owner:  identity,
		Amount: *req.Amount,
		Remark: req.Remark,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// ProcessRedemption handles POST /api/transactions/:id/processed.
func (h *TransactionHandler) ProcessRedemption(c *fiber.Ctx) error {
	identity, err := identityFromRequest(c)
	if err != nil {
		return unauthenticated(c)
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid transaction id"})
	}

	res, err := h.service.ProcessRedemption(c.Context(), model.ProcessRedemptionCommand{
		TransactionID: id,
		Processor:     identity,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// CreateTransfer handles POST /api/users/me/transfers.
func (h *TransactionHandler) CreateTransfer(c *fiber.Ctx) error {
	identity, err := identityFromRequest(c)
	if err != nil {
		return unauthenticated(c)
	}

	var req model.CreateTransferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	res, err := h.service.CreateTransfer(c.Context(), model.TransferCommand{
		Sender:         identity,
		ReceiverUtorid: req.Utorid,
		Amount:         *req.Amount,
		Remark:         req.Remark,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// SetSuspicious handles PATCH /api/transactions/:id/suspicious.
func (h *TransactionHandler) SetSuspicious(c *fiber.Ctx) error {
	identity, err := identityFromRequest(c)
	if err != nil {
		return unauthenticated(c)
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid transaction id"})
	}

	var req model.SetSuspiciousRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	res, err := h.service.SetSuspicious(c.Context(), id, *req.Suspicious, identity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// GetTransaction handles GET /api/transactions/:id. Cashiers and above may
// inspect any row, e.g. to look up a redemption before processing it.
func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	identity, err := identityFromRequest(c)
	if err != nil {
		return unauthenticated(c)
	}
	if !identity.Role.AtLeast(model.RoleCashier) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid transaction id"})
	}

	res, err := h.service.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// ListTransactions handles GET /api/transactions. The listing is an audit
// surface, so it requires manager.
func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	identity, err := identityFromRequest(c)
	if err != nil {
		return unauthenticated(c)
	}
	if !identity.Role.AtLeast(model.RoleManager) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	f := model.TransactionFilter{
		Name:      c.Query("name"),
		CreatedBy: c.Query("created_by"),
		Type:      c.Query("type"),
		Operator:  c.Query("operator"),
	}
	if v := c.Query("suspicious"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid suspicious filter"})
		}
		f.Suspicious = &b
	}
	for _, q := range []struct {
		key  string
		dest **int64
	}{
		{"related_id", &f.RelatedID},
		{"amount", &f.Amount},
		{"promotion_id", &f.PromotionID},
	} {
		if v := c.Query(q.key); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid " + q.key + " filter"})
			}
			*q.dest = &n
		}
	}

	res, err := h.service.List(c.Context(), f, c.QueryInt("page", 1), c.QueryInt("limit", 10))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}
