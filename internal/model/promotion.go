package model

import "time"

// PromotionKind distinguishes catalog-wide promotions from consumable ones.
type PromotionKind string

const (
	// PromotionAutomatic applies to every qualifying purchase without selection.
	PromotionAutomatic PromotionKind = "automatic"
	// PromotionOneTime is manually selected and consumable at most once per user.
	PromotionOneTime PromotionKind = "one-time"
)

// Promotion is a catalog row. Once a committed purchase references a promotion
// it is immutable: there is no update operation, and deletion is rejected after
// the activity window opens.
type Promotion struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Kind        PromotionKind `json:"kind"`
	StartsAt    time.Time     `json:"starts_at"`
	EndsAt      time.Time     `json:"ends_at"`
	MinSpend    *float64      `json:"min_spend,omitempty"`
	Rate        *float64      `json:"rate,omitempty"`
	Points      *int64        `json:"points,omitempty"`
	CreatedAt   time.Time     `json:"-"`
}

// ActiveAt reports whether at falls inside the half-open window [StartsAt, EndsAt).
func (p *Promotion) ActiveAt(at time.Time) bool {
	return !at.Before(p.StartsAt) && at.Before(p.EndsAt)
}

// MinSpendMet reports whether spent satisfies the optional minimum spend.
func (p *Promotion) MinSpendMet(spent float64) bool {
	return p.MinSpend == nil || *p.MinSpend <= spent
}

// PromotionUsage records that a user has consumed a one-time promotion.
// The (UserID, PromotionID) pair is unique in storage; the row is created
// exactly once inside the purchase unit and never deleted.
type PromotionUsage struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	PromotionID int64     `json:"promotion_id"`
	UsedAt      time.Time `json:"used_at"`
}

// CreatePromotionRequest is the DTO for adding a promotion to the catalog.
type CreatePromotionRequest struct {
	Name        string    `json:"name" validate:"required,notblank,max=255"`
	Description string    `json:"description" validate:"max=1024"`
	Kind        string    `json:"kind" validate:"required,oneof=automatic one-time"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required"`
	MinSpend    *float64  `json:"min_spend" validate:"omitempty,gt=0"`
	Rate        *float64  `json:"rate" validate:"omitempty,gt=0"`
	Points      *int64    `json:"points" validate:"omitempty,gte=1"`
}

// PromotionFilter narrows promotion listings.
type PromotionFilter struct {
	Kind     string
	ActiveAt *time.Time
}

// PromotionList is a paginated catalog slice.
type PromotionList struct {
	Count   int64       `json:"count"`
	Results []Promotion `json:"results"`
}
