package service

import "errors"

var (
	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrForbidden is returned when the caller's role is insufficient for the mutation
	ErrForbidden = errors.New("insufficient role")

	// ErrUserNotFound is returned when a referenced user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when registering a utorid that is already taken
	ErrUserExists = errors.New("user already exists")

	// ErrTransactionNotFound is returned when a referenced transaction cannot be found
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrPromotionNotFound is returned when a promotion cannot be found in the catalog
	ErrPromotionNotFound = errors.New("promotion not found")

	// ErrInvalidPromotion is returned when a manually selected promotion id does not exist
	ErrInvalidPromotion = errors.New("promotion does not exist")

	// ErrPromotionNotApplicable is returned when a manual promotion fails its
	// activity window or minimum spend check
	ErrPromotionNotApplicable = errors.New("promotion not applicable")

	// ErrPromotionAlreadyUsed is returned when a user selects a one-time promotion
	// they have already consumed, including the losing side of a concurrent race
	ErrPromotionAlreadyUsed = errors.New("promotion already used")

	// ErrPromotionStarted is returned when deleting a promotion whose window has opened
	ErrPromotionStarted = errors.New("promotion already started")

	// ErrNegativeBalance is returned when a mutation would drive a balance below zero
	ErrNegativeBalance = errors.New("insufficient points")

	// ErrAlreadyProcessed is returned when processing a redemption a second time
	ErrAlreadyProcessed = errors.New("redemption already processed")

	// ErrNotRedemption is returned when processing a transaction that is not a redemption
	ErrNotRedemption = errors.New("transaction is not a redemption")

	// ErrSelfTransfer is returned when a user attempts to transfer points to themselves
	ErrSelfTransfer = errors.New("cannot transfer to self")

	// ErrConflict is returned for uniqueness violations that have no more specific sentinel
	ErrConflict = errors.New("conflicting concurrent write")
)
