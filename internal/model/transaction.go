package model

import "time"

// TransactionType discriminates ledger entries.
type TransactionType string

const (
	TxPurchase   TransactionType = "purchase"
	TxAdjustment TransactionType = "adjustment"
	TxRedemption TransactionType = "redemption"
	TxTransfer   TransactionType = "transfer"
	TxEvent      TransactionType = "event"
)

// ValidTransactionType reports whether s names a known transaction type.
func ValidTransactionType(s string) bool {
	switch TransactionType(s) {
	case TxPurchase, TxAdjustment, TxRedemption, TxTransfer, TxEvent:
		return true
	}
	return false
}

// Transaction is a ledger row. Amount is the signed points delta intended for
// the owner. After creation only Suspicious and, for redemptions,
// ProcessedAt/ProcessedBy may change; everything else is append-only.
//
// Amount semantics per type: purchase amount = earned points (>= 0) with Spent
// set; adjustment amount is signed; redemption amount = -Redeemed and the row
// is pending while ProcessedAt is nil; transfer rows come in a -X/+X pair
// referencing each other via RelatedID; event amount > 0 with RelatedID set to
// the event id.
type Transaction struct {
	ID           int64
	UserID       int64
	Utorid       string // owner utorid, joined in on reads
	Type         TransactionType
	Amount       int64
	Spent        *float64
	Redeemed     *int64
	RelatedID    *int64
	Suspicious   bool
	Remark       string
	CreatedBy    string
	ProcessedBy  *string
	ProcessedAt  *time.Time
	CreatedAt    time.Time
	PromotionIDs []int64
}

// Pending reports whether a redemption is still awaiting a processor.
func (t *Transaction) Pending() bool {
	return t.Type == TxRedemption && t.ProcessedAt == nil
}

// --- Typed commands, one per ledger operation ---

// PurchaseCommand records a spend and credits the earned points.
type PurchaseCommand struct {
	OwnerUtorid  string
	Creator      Identity
	Spent        float64
	PromotionIDs []int64
	Remark       string
}

// AdjustmentCommand applies a signed manual correction to a user's balance.
type AdjustmentCommand struct {
	OwnerUtorid string
	Creator     Identity
	Amount      int64
	RelatedID   *int64
	Remark      string
}

// RedemptionCommand opens a pending redemption for the caller's own points.
type RedemptionCommand struct {
	Owner  Identity
	Amount int64
	Remark string
}

// ProcessRedemptionCommand completes a pending redemption.
type ProcessRedemptionCommand struct {
	TransactionID int64
	Processor     Identity
}

// TransferCommand moves points from the caller to another user.
type TransferCommand struct {
	Sender         Identity
	ReceiverUtorid string
	Amount         int64
	Remark         string
}

// EventAwardCommand credits points granted by an event.
type EventAwardCommand struct {
	OwnerUtorid string
	Creator     Identity
	Amount      int64
	EventID     int64
	Remark      string
}

// --- Operation results ---

// PurchaseResult reports what a committed purchase did.
type PurchaseResult struct {
	TransactionID      int64   `json:"id"`
	Utorid             string  `json:"utorid"`
	Earned             int64   `json:"earned"`
	Spent              float64 `json:"spent"`
	PromotionIDs       []int64 `json:"promotion_ids"`
	SuspiciousWithheld bool    `json:"suspicious_withheld"`
}

// AdjustmentResult reports a committed adjustment.
type AdjustmentResult struct {
	TransactionID int64  `json:"id"`
	Utorid        string `json:"utorid"`
	Amount        int64  `json:"amount"`
}

// RedemptionResult reports a newly opened redemption.
type RedemptionResult struct {
	TransactionID int64  `json:"id"`
	Utorid        string `json:"utorid"`
	Redeemed      int64  `json:"redeemed"`
	Status        string `json:"status"`
}

// ProcessRedemptionResult reports a completed redemption.
type ProcessRedemptionResult struct {
	TransactionID int64     `json:"id"`
	Utorid        string    `json:"utorid"`
	Redeemed      int64     `json:"redeemed"`
	ProcessedBy   string    `json:"processed_by"`
	ProcessedAt   time.Time `json:"processed_at"`
}

// TransferResult reports the committed debit/credit pair.
type TransferResult struct {
	SenderTransactionID   int64  `json:"sender_transaction_id"`
	ReceiverTransactionID int64  `json:"receiver_transaction_id"`
	Sender                string `json:"sender"`
	Receiver              string `json:"receiver"`
	Amount                int64  `json:"amount"`
}

// EventAwardResult reports a committed event award.
type EventAwardResult struct {
	TransactionID int64  `json:"id"`
	Utorid        string `json:"utorid"`
	Amount        int64  `json:"amount"`
	EventID       int64  `json:"event_id"`
}

// SuspiciousResult reports a suspicious-flag toggle and the balance delta it applied.
type SuspiciousResult struct {
	TransactionID int64 `json:"id"`
	Suspicious    bool  `json:"suspicious"`
	BalanceDelta  int64 `json:"balance_delta"`
}

// --- Read side ---

// AmountOperator values accepted by TransactionFilter.
const (
	OperatorGTE = "gte"
	OperatorLTE = "lte"
)

// TransactionFilter narrows ledger listings. RelatedID is only meaningful
// together with Type; Amount requires Operator.
type TransactionFilter struct {
	Name        string // owner utorid or display name
	CreatedBy   string
	Suspicious  *bool
	Type        string
	RelatedID   *int64
	Amount      *int64
	Operator    string
	PromotionID *int64
}

// TransactionResponse is the API representation of a ledger row. Type-specific
// fields are omitted when unset: Spent for purchases, Redeemed plus the
// processing pair for redemptions, RelatedID for adjustment/transfer/event.
type TransactionResponse struct {
	ID           int64           `json:"id"`
	Utorid       string          `json:"utorid"`
	Type         TransactionType `json:"type"`
	Amount       int64           `json:"amount"`
	Spent        *float64        `json:"spent,omitempty"`
	Redeemed     *int64          `json:"redeemed,omitempty"`
	RelatedID    *int64          `json:"related_id,omitempty"`
	PromotionIDs []int64         `json:"promotion_ids"`
	Suspicious   bool            `json:"suspicious"`
	Remark       string          `json:"remark"`
	CreatedBy    string          `json:"created_by"`
	ProcessedBy  *string         `json:"processed_by,omitempty"`
	ProcessedAt  *time.Time      `json:"processed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// TransactionList is a paginated ledger slice.
type TransactionList struct {
	Count   int64                 `json:"count"`
	Results []TransactionResponse `json:"results"`
}

// Response converts a ledger row into its API representation.
func (t *Transaction) Response() *TransactionResponse {
	ids := t.PromotionIDs
	if ids == nil {
		ids = []int64{}
	}
	return &TransactionResponse{
		ID:           t.ID,
		Utorid:       t.Utorid,
		Type:         t.Type,
		Amount:       t.Amount,
		Spent:        t.Spent,
		Redeemed:     t.Redeemed,
		RelatedID:    t.RelatedID,
		PromotionIDs: ids,
		Suspicious:   t.Suspicious,
		Remark:       t.Remark,
		CreatedBy:    t.CreatedBy,
		ProcessedBy:  t.ProcessedBy,
		ProcessedAt:  t.ProcessedAt,
		CreatedAt:    t.CreatedAt,
	}
}
