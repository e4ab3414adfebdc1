package model

// CreateTransactionRequest is the DTO for POST /api/transactions. Type selects
// the operation; the handler checks the type-specific fields before building a
// command (spent for purchase, amount for adjustment and event, related_id for
// the event id).
type CreateTransactionRequest struct {
	Utorid       string   `json:"utorid" validate:"required,utorid"`
	Type         string   `json:"type" validate:"required,oneof=purchase adjustment event"`
	Spent        *float64 `json:"spent" validate:"omitempty,gt=0"`
	Amount       *int64   `json:"amount"`
	RelatedID    *int64   `json:"related_id" validate:"omitempty,gt=0"`
	PromotionIDs []int64  `json:"promotion_ids" validate:"omitempty,dive,gt=0"`
	Remark       string   `json:"remark" validate:"max=512"`
}

// CreateRedemptionRequest is the DTO for POST /api/users/me/redemptions.
type CreateRedemptionRequest struct {
	Amount *int64 `json:"amount" validate:"required,gt=0"`
	Remark string `json:"remark" validate:"max=512"`
}

// CreateTransferRequest is the DTO for POST /api/users/me/transfers.
type CreateTransferRequest struct {
	Utorid string `json:"utorid" validate:"required,utorid"`
	Amount *int64 `json:"amount" validate:"required,gt=0"`
	Remark string `json:"remark" validate:"max=512"`
}

// SetSuspiciousRequest is the DTO for PATCH /api/transactions/:id/suspicious.
type SetSuspiciousRequest struct {
	Suspicious *bool `json:"suspicious" validate:"required"`
}
