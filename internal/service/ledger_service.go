package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/loyalty-ledger/internal/model"
	"github.com/fairyhunter13/loyalty-ledger/pkg/database"
)

// UserStore defines the user data access the ledger needs. Balance mutations
// go through AddPoints, an atomic increment at the storage layer; the ledger
// never writes a balance it previously read.
type UserStore interface {
	// GetByUtorid reads outside any unit. Returns nil, nil when absent.
	GetByUtorid(ctx context.Context, utorid string) (*model.User, error)
	// Get reads inside a unit without locking. Returns ErrUserNotFound when absent.
	Get(ctx context.Context, q database.TxQuerier, utorid string) (*model.User, error)
	// GetForUpdate locks the user row until the unit ends.
	GetForUpdate(ctx context.Context, q database.TxQuerier, utorid string) (*model.User, error)
	// GetByIDForUpdate locks the user row by id until the unit ends.
	GetByIDForUpdate(ctx context.Context, q database.TxQuerier, id int64) (*model.User, error)
	// AddPoints applies `points = points + delta` atomically.
	AddPoints(ctx context.Context, q database.TxQuerier, userID, delta int64) error
}

// TransactionStore defines the ledger row access. Reads that serve the API
// (Get, List) run against the pool; every write takes the unit's querier.
type TransactionStore interface {
	Insert(ctx context.Context, q database.TxQuerier, t *model.Transaction) (int64, error)
	LinkPromotions(ctx context.Context, q database.TxQuerier, transactionID int64, promotionIDs []int64) error
	Exists(ctx context.Context, q database.TxQuerier, id int64) (bool, error)
	GetForUpdate(ctx context.Context, q database.TxQuerier, id int64) (*model.Transaction, error)
	SetRelatedID(ctx context.Context, q database.TxQuerier, id, relatedID int64) error
	MarkProcessed(ctx context.Context, q database.TxQuerier, id int64, processedBy string, processedAt time.Time) error
	SetSuspicious(ctx context.Context, q database.TxQuerier, id int64, suspicious bool) error
	Get(ctx context.Context, id int64) (*model.Transaction, error)
	List(ctx context.Context, f model.TransactionFilter, page, limit int) (int64, []model.Transaction, error)
}

// PromotionUsageTracker records one-time promotion consumption. MarkUsed runs
// inside the purchase unit; the (user, promotion) uniqueness constraint is the
// concurrency-safety primitive against double redemption, surfaced as
// ErrPromotionAlreadyUsed.
type PromotionUsageTracker interface {
	MarkUsed(ctx context.Context, q database.TxQuerier, userID, promotionID int64) error
}

// Resolver decides which promotions apply to a purchase.
type Resolver interface {
	Resolve(ctx context.Context, userID int64, spent float64, manualIDs []int64, asOf time.Time) ([]model.Promotion, error)
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// LedgerService creates transactions of every type and mutates balances
// alongside, one storage transaction per operation: all writes of an operation
// commit or roll back together, so no transaction row ever exists without its
// matching balance change.
type LedgerService struct {
	pool         TxBeginner
	users        UserStore
	transactions TransactionStore
	usages       PromotionUsageTracker
	resolver     Resolver
	calculator   *Calculator
}

// NewLedgerService creates a LedgerService with the given pool and collaborators.
func NewLedgerService(pool *pgxpool.Pool, users UserStore, transactions TransactionStore, usages PromotionUsageTracker, resolver Resolver, calculator *Calculator) *LedgerService {
	return &LedgerService{
		pool:         pool,
		users:        users,
		transactions: transactions,
		usages:       usages,
		resolver:     resolver,
		calculator:   calculator,
	}
}

// NewLedgerServiceWithTxBeginner creates a LedgerService with a custom TxBeginner.
// Primarily used for testing.
func NewLedgerServiceWithTxBeginner(pool TxBeginner, users UserStore, transactions TransactionStore, usages PromotionUsageTracker, resolver Resolver, calculator *Calculator) *LedgerService {
	return &LedgerService{
		pool:         pool,
		users:        users,
		transactions: transactions,
		usages:       usages,
		resolver:     resolver,
		calculator:   calculator,
	}
}

// CreatePurchase resolves the applicable promotions, computes the award, and
// commits the purchase row, its promotion links, the one-time usage rows, and
// the balance credit as one unit. A purchase recorded by a suspicious creator
// stores the full award but withholds the credit until the flag is cleared.
// Returns:
//   - ErrForbidden if the creator is below cashier
//   - ErrUserNotFound if the owner or creator does not exist
//   - ErrInvalidPromotion / ErrPromotionNotApplicable / ErrPromotionAlreadyUsed
//     from promotion resolution, the last also when a concurrent purchase wins
//     the same one-time promotion
func (s *LedgerService) CreatePurchase(ctx context.Context, cmd model.PurchaseCommand) (res *model.PurchaseResult, err error) {
	defer func(start time.Time) {
		observeUnit("purchase", string(model.TxPurchase), time.Since(start).Seconds(), err)
	}(time.Now())

	if cmd.Spent <= 0 {
		return nil, fmt.Errorf("spent must be positive: %w", ErrInvalidRequest)
	}
	if !cmd.Creator.Role.AtLeast(model.RoleCashier) {
		return nil, ErrForbidden
	}

	owner, err := s.users.GetByUtorid(ctx, cmd.OwnerUtorid)
	if err != nil {
		return nil, fmt.Errorf("get owner: %w", err)
	}
	if owner == nil {
		return nil, ErrUserNotFound
	}

	asOf := time.Now().UTC()
	promotions, err := s.resolver.Resolve(ctx, owner.ID, cmd.Spent, cmd.PromotionIDs, asOf)
	if err != nil {
		return nil, err
	}
	earned := s.calculator.Calculate(cmd.Spent, promotions)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// The withholding decision uses the creator's current flag, read inside
	// the unit rather than trusted from the identity.
	creator, err := s.users.Get(ctx, tx, cmd.Creator.Utorid)
	if err != nil {
		return nil, fmt.Errorf("get creator: %w", err)
	}

	spent := cmd.Spent
	id, err := s.transactions.Insert(ctx, tx, &model.Transaction{
		UserID:     owner.ID,
		Type:       model.TxPurchase,
		Amount:     earned,
		Spent:      &spent,
		Suspicious: creator.Suspicious,
		Remark:     cmd.Remark,
		CreatedBy:  creator.Utorid,
	})
	if err != nil {
		return nil, fmt.Errorf("insert purchase: %w", err)
	}

	applied := make([]int64, 0, len(promotions))
	for _, p := range promotions {
		applied = append(applied, p.ID)
	}
	if len(applied) > 0 {
		if err := s.transactions.LinkPromotions(ctx, tx, id, applied); err != nil {
			return nil, fmt.Errorf("link promotions: %w", err)
		}
	}

	// One-time promotions can only enter the set through manual selection;
	// the uniqueness constraint rejects the slower of two concurrent uses.
	for _, p := range promotions {
		if p.Kind != model.PromotionOneTime {
			continue
		}
		if err := s.usages.MarkUsed(ctx, tx, owner.ID, p.ID); err != nil {
			return nil, fmt.Errorf("mark promotion %d used: %w", p.ID, err)
		}
	}

	if !creator.Suspicious && earned > 0 {
		if err := s.users.AddPoints(ctx, tx, owner.ID, earned); err != nil {
			return nil, fmt.Errorf("credit points: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase: %w", err)
	}

	return &model.PurchaseResult{
		TransactionID:      id,
		Utorid:             owner.Utorid,
		Earned:             earned,
		Spent:              cmd.Spent,
		PromotionIDs:       applied,
		SuspiciousWithheld: creator.Suspicious,
	}, nil
}

// CreateAdjustment applies a signed manual correction. The owner row is locked
// before the balance check so a concurrent debit cannot slip underneath it.
// Returns ErrForbidden below manager, ErrUserNotFound for an unknown owner,
// ErrTransactionNotFound for a dangling related id, and ErrNegativeBalance
// when owner.points + amount would drop below zero.
func (s *LedgerService) CreateAdjustment(ctx context.Context, cmd model.AdjustmentCommand) (res *model.AdjustmentResult, err error) {
	defer func(start time.Time) {
		observeUnit("adjustment", string(model.TxAdjustment), time.Since(start).Seconds(), err)
	}(time.Now())

	if cmd.Amount == 0 {
		return nil, fmt.Errorf("amount must be non-zero: %w", ErrInvalidRequest)
	}
	if !cmd.Creator.Role.AtLeast(model.RoleManager) {
		return nil, ErrForbidden
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	owner, err := s.users.GetForUpdate(ctx, tx, cmd.OwnerUtorid)
	if err != nil {
		return nil, fmt.Errorf("lock owner: %w", err)
	}
	if owner.Points+cmd.Amount < 0 {
		return nil, ErrNegativeBalance
	}

	if cmd.RelatedID != nil {
		ok, err := s.transactions.Exists(ctx, tx, *cmd.RelatedID)
		if err != nil {
			return nil, fmt.Errorf("check related transaction: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("related transaction %d: %w", *cmd.RelatedID, ErrTransactionNotFound)
		}
	}

	id, err := s.transactions.Insert(ctx, tx, &model.Transaction{
		UserID:    owner.ID,
		Type:      model.TxAdjustment,
		Amount:    cmd.Amount,
		RelatedID: cmd.RelatedID,
		Remark:    cmd.Remark,
		CreatedBy: cmd.Creator.Utorid,
	})
	if err != nil {
		return nil, fmt.Errorf("insert adjustment: %w", err)
	}

	if err := s.users.AddPoints(ctx, tx, owner.ID, cmd.Amount); err != nil {
		return nil, fmt.Errorf("apply adjustment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit adjustment: %w", err)
	}

	return &model.AdjustmentResult{TransactionID: id, Utorid: owner.Utorid, Amount: cmd.Amount}, nil
}

// CreateRedemption opens a pending redemption for the caller's own points. The
// balance is untouched until a cashier processes it; the stored amount is the
// negated redeemed value. Creation rejects amounts above the current balance so
// users cannot queue redemptions they cannot pay; the authoritative check runs
// again at processing time.
func (s *LedgerService) CreateRedemption(ctx context.Context, cmd model.RedemptionCommand) (res *model.RedemptionResult, err error) {
	defer func(start time.Time) {
		observeUnit("redemption", string(model.TxRedemption), time.Since(start).Seconds(), err)
	}(time.Now())

	if cmd.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", ErrInvalidRequest)
	}

	owner, err := s.users.GetByUtorid(ctx, cmd.Owner.Utorid)
	if err != nil {
		return nil, fmt.Errorf("get owner: %w", err)
	}
	if owner == nil {
		return nil, ErrUserNotFound
	}
	if owner.Points < cmd.Amount {
		return nil, ErrNegativeBalance
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	redeemed := cmd.Amount
	id, err := s.transactions.Insert(ctx, tx, &model.Transaction{
		UserID:    owner.ID,
		Type:      model.TxRedemption,
		Amount:    -cmd.Amount,
		Redeemed:  &redeemed,
		Remark:    cmd.Remark,
		CreatedBy: owner.Utorid,
	})
	if err != nil {
		return nil, fmt.Errorf("insert redemption: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit redemption: %w", err)
	}

	return &model.RedemptionResult{
		TransactionID: id,
		Utorid:        owner.Utorid,
		Redeemed:      cmd.Amount,
		Status:        "pending",
	}, nil
}

// ProcessRedemption completes a pending redemption: it stamps the processor
// and debits the owner in one unit. The transaction row is locked first so two
// processors cannot both complete it; the second sees ErrAlreadyProcessed.
// Returns ErrForbidden below cashier, ErrTransactionNotFound, ErrNotRedemption,
// ErrAlreadyProcessed, or ErrNegativeBalance if the owner can no longer pay.
func (s *LedgerService) ProcessRedemption(ctx context.Context, cmd model.ProcessRedemptionCommand) (res *model.ProcessRedemptionResult, err error) {
	defer func(start time.Time) {
		observeUnit("redemption_process", "", time.Since(start).Seconds(), err)
	}(time.Now())

	if !cmd.Processor.Role.AtLeast(model.RoleCashier) {
		return nil, ErrForbidden
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row, err := s.transactions.GetForUpdate(ctx, tx, cmd.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("lock transaction: %w", err)
	}
	if row.Type != model.TxRedemption {
		return nil, ErrNotRedemption
	}
	if row.ProcessedAt != nil {
		return nil, ErrAlreadyProcessed
	}

	owner, err := s.users.GetByIDForUpdate(ctx, tx, row.UserID)
	if err != nil {
		return nil, fmt.Errorf("lock owner: %w", err)
	}
	// row.Amount is the negated redeemed value.
	if owner.Points+row.Amount < 0 {
		return nil, ErrNegativeBalance
	}

	processedAt := time.Now().UTC()
	if err := s.transactions.MarkProcessed(ctx, tx, row.ID, cmd.Processor.Utorid, processedAt); err != nil {
		return nil, fmt.Errorf("mark processed: %w", err)
	}
	if err := s.users.AddPoints(ctx, tx, owner.ID, row.Amount); err != nil {
		return nil, fmt.Errorf("debit points: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit processing: %w", err)
	}

	return &model.ProcessRedemptionResult{
		TransactionID: row.ID,
		Utorid:        owner.Utorid,
		Redeemed:      -row.Amount,
		ProcessedBy:   cmd.Processor.Utorid,
		ProcessedAt:   processedAt,
	}, nil
}

// CreateTransfer moves points between users as a debit/credit pair referencing
// each other via related id; both rows and both balance updates commit together
// or not at all. User rows are locked in ascending id order so two opposing
// transfers cannot deadlock. Returns ErrSelfTransfer, ErrUserNotFound, or
// ErrNegativeBalance when the sender cannot cover the amount.
func (s *LedgerService) CreateTransfer(ctx context.Context, cmd model.TransferCommand) (res *model.TransferResult, err error) {
	defer func(start time.Time) {
		observeUnit("transfer", string(model.TxTransfer), time.Since(start).Seconds(), err)
	}(time.Now())

	if cmd.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", ErrInvalidRequest)
	}
	if !cmd.Sender.Role.AtLeast(model.RoleRegular) {
		return nil, ErrForbidden
	}
	if cmd.Sender.Utorid == cmd.ReceiverUtorid {
		return nil, ErrSelfTransfer
	}

	sender, err := s.users.GetByUtorid(ctx, cmd.Sender.Utorid)
	if err != nil {
		return nil, fmt.Errorf("get sender: %w", err)
	}
	if sender == nil {
		return nil, ErrUserNotFound
	}
	receiver, err := s.users.GetByUtorid(ctx, cmd.ReceiverUtorid)
	if err != nil {
		return nil, fmt.Errorf("get receiver: %w", err)
	}
	if receiver == nil {
		return nil, ErrUserNotFound
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Ascending-id lock order prevents deadlock between opposing transfers.
	firstID, secondID := sender.ID, receiver.ID
	if firstID > secondID {
		firstID, secondID = secondID, firstID
	}
	first, err := s.users.GetByIDForUpdate(ctx, tx, firstID)
	if err != nil {
		return nil, fmt.Errorf("lock user %d: %w", firstID, err)
	}
	second, err := s.users.GetByIDForUpdate(ctx, tx, secondID)
	if err != nil {
		return nil, fmt.Errorf("lock user %d: %w", secondID, err)
	}

	lockedSender := first
	if second.ID == sender.ID {
		lockedSender = second
	}
	if lockedSender.Points < cmd.Amount {
		return nil, ErrNegativeBalance
	}

	debitID, err := s.transactions.Insert(ctx, tx, &model.Transaction{
		UserID:    sender.ID,
		Type:      model.TxTransfer,
		Amount:    -cmd.Amount,
		Remark:    cmd.Remark,
		CreatedBy: sender.Utorid,
	})
	if err != nil {
		return nil, fmt.Errorf("insert debit: %w", err)
	}
	creditID, err := s.transactions.Insert(ctx, tx, &model.Transaction{
		UserID:    receiver.ID,
		Type:      model.TxTransfer,
		Amount:    cmd.Amount,
		RelatedID: &debitID,
		Remark:    cmd.Remark,
		CreatedBy: sender.Utorid,
	})
	if err != nil {
		return nil, fmt.Errorf("insert credit: %w", err)
	}
	if err := s.transactions.SetRelatedID(ctx, tx, debitID, creditID); err != nil {
		return nil, fmt.Errorf("pair transfer rows: %w", err)
	}

	if err := s.users.AddPoints(ctx, tx, sender.ID, -cmd.Amount); err != nil {
		return nil, fmt.Errorf("debit sender: %w", err)
	}
	if err := s.users.AddPoints(ctx, tx, receiver.ID, cmd.Amount); err != nil {
		return nil, fmt.Errorf("credit receiver: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transfer: %w", err)
	}

	return &model.TransferResult{
		SenderTransactionID:   debitID,
		ReceiverTransactionID: creditID,
		Sender:                sender.Utorid,
		Receiver:              receiver.Utorid,
		Amount:                cmd.Amount,
	}, nil
}

// CreateEventAward credits points granted by an event, with the event id kept
// as the related id. Never withheld.
func (s *LedgerService) CreateEventAward(ctx context.Context, cmd model.EventAwardCommand) (res *model.EventAwardResult, err error) {
	defer func(start time.Time) {
		observeUnit("event_award", string(model.TxEvent), time.Since(start).Seconds(), err)
	}(time.Now())

	if cmd.Amount <= 0 || cmd.EventID <= 0 {
		return nil, fmt.Errorf("amount and event id must be positive: %w", ErrInvalidRequest)
	}
	if !cmd.Creator.Role.AtLeast(model.RoleManager) {
		return nil, ErrForbidden
	}

	owner, err := s.users.GetByUtorid(ctx, cmd.OwnerUtorid)
	if err != nil {
		return nil, fmt.Errorf("get owner: %w", err)
	}
	if owner == nil {
		return nil, ErrUserNotFound
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	eventID := cmd.EventID
	id, err := s.transactions.Insert(ctx, tx, &model.Transaction{
		UserID:    owner.ID,
		Type:      model.TxEvent,
		Amount:    cmd.Amount,
		RelatedID: &eventID,
		Remark:    cmd.Remark,
		CreatedBy: cmd.Creator.Utorid,
	})
	if err != nil {
		return nil, fmt.Errorf("insert event award: %w", err)
	}

	if err := s.users.AddPoints(ctx, tx, owner.ID, cmd.Amount); err != nil {
		return nil, fmt.Errorf("credit points: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit event award: %w", err)
	}

	return &model.EventAwardResult{
		TransactionID: id,
		Utorid:        owner.Utorid,
		Amount:        cmd.Amount,
		EventID:       cmd.EventID,
	}, nil
}

// SetSuspicious toggles a transaction's suspicious flag and applies the
// compensating balance delta in the same unit: flagging revokes the amount,
// clearing grants it, each exactly once. Equal flag values are a no-op with a
// zero delta. A toggle that would drive the owner's balance negative is
// rejected with ErrNegativeBalance; the balance invariant has no exceptions.
func (s *LedgerService) SetSuspicious(ctx context.Context, transactionID int64, value bool, actor model.Identity) (res *model.SuspiciousResult, err error) {
	defer func(start time.Time) {
		observeUnit("set_suspicious", "", time.Since(start).Seconds(), err)
	}(time.Now())

	if !actor.Role.AtLeast(model.RoleManager) {
		return nil, ErrForbidden
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row, err := s.transactions.GetForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("lock transaction: %w", err)
	}
	if row.Suspicious == value {
		return &model.SuspiciousResult{TransactionID: row.ID, Suspicious: value, BalanceDelta: 0}, nil
	}

	delta := row.Amount
	if value {
		delta = -row.Amount
	}

	owner, err := s.users.GetByIDForUpdate(ctx, tx, row.UserID)
	if err != nil {
		return nil, fmt.Errorf("lock owner: %w", err)
	}
	if owner.Points+delta < 0 {
		return nil, ErrNegativeBalance
	}

	if err := s.transactions.SetSuspicious(ctx, tx, row.ID, value); err != nil {
		return nil, fmt.Errorf("set flag: %w", err)
	}
	if delta != 0 {
		if err := s.users.AddPoints(ctx, tx, owner.ID, delta); err != nil {
			return nil, fmt.Errorf("apply delta: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit toggle: %w", err)
	}

	return &model.SuspiciousResult{TransactionID: row.ID, Suspicious: value, BalanceDelta: delta}, nil
}

// Get returns the full record for one transaction, including the processor for
// redemptions. Returns ErrTransactionNotFound when absent.
func (s *LedgerService) Get(ctx context.Context, id int64) (*model.TransactionResponse, error) {
	row, err := s.transactions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if row == nil {
		return nil, ErrTransactionNotFound
	}
	return row.Response(), nil
}

// List returns one page of transactions matching the filter plus the total
// match count. RelatedID is only accepted together with Type, and Amount with
// a gte/lte Operator; mismatches are rejected before touching storage.
func (s *LedgerService) List(ctx context.Context, f model.TransactionFilter, page, limit int) (*model.TransactionList, error) {
	if f.Type != "" && !model.ValidTransactionType(f.Type) {
		return nil, fmt.Errorf("unknown type %q: %w", f.Type, ErrInvalidRequest)
	}
	if f.RelatedID != nil && f.Type == "" {
		return nil, fmt.Errorf("related id filter requires type: %w", ErrInvalidRequest)
	}
	if f.Amount != nil && f.Operator != model.OperatorGTE && f.Operator != model.OperatorLTE {
		return nil, fmt.Errorf("amount filter requires operator gte or lte: %w", ErrInvalidRequest)
	}
	if f.Amount == nil && f.Operator != "" {
		return nil, fmt.Errorf("operator requires amount: %w", ErrInvalidRequest)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	count, rows, err := s.transactions.List(ctx, f, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	results := make([]model.TransactionResponse, 0, len(rows))
	for i := range rows {
		results = append(results, *rows[i].Response())
	}
	return &model.TransactionList{Count: count, Results: results}, nil
}
