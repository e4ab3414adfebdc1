package service

import (
	"context"
	"fmt"

	"github.com/fairyhunter13/loyalty-ledger/internal/model"
)

// AccountStore defines the user access the account service needs.
type AccountStore interface {
	Insert(ctx context.Context, user *model.User) (int64, error)
	GetByUtorid(ctx context.Context, utorid string) (*model.User, error)
	SetSuspicious(ctx context.Context, utorid string, suspicious bool) error
}

// UserService registers and reads the accounts the ledger moves points
// between. Authentication lives upstream; this service only enforces role
// checks on the pre-verified caller.
type UserService struct {
	store AccountStore
}

// NewUserService creates a UserService over the given store.
func NewUserService(store AccountStore) *UserService {
	return &UserService{store: store}
}

// Register creates a user account. Cashiers may register regular accounts;
// assigning any higher role requires manager. Returns ErrUserExists when the
// utorid is taken.
func (s *UserService) Register(ctx context.Context, actor model.Identity, req *model.RegisterUserRequest) (*model.UserResponse, error) {
	if !actor.Role.AtLeast(model.RoleCashier) {
		return nil, ErrForbidden
	}
	if req == nil {
		return nil, ErrInvalidRequest
	}

	role := model.RoleRegular
	if req.Role != "" {
		parsed, ok := model.ParseRole(req.Role)
		if !ok {
			return nil, fmt.Errorf("unknown role %q: %w", req.Role, ErrInvalidRequest)
		}
		role = parsed
	}
	if role != model.RoleRegular && !actor.Role.AtLeast(model.RoleManager) {
		return nil, ErrForbidden
	}

	user := &model.User{Utorid: req.Utorid, Name: req.Name, Role: role}
	if _, err := s.store.Insert(ctx, user); err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}
	return user.Response(), nil
}

// Get returns one account: callers may read themselves, cashiers anyone.
// Returns ErrUserNotFound when absent.
func (s *UserService) Get(ctx context.Context, actor model.Identity, utorid string) (*model.UserResponse, error) {
	if actor.Utorid != utorid && !actor.Role.AtLeast(model.RoleCashier) {
		return nil, ErrForbidden
	}

	user, err := s.store.GetByUtorid(ctx, utorid)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user.Response(), nil
}

// SetSuspicious flips the per-user suspicious flag. Requires manager. The flag
// only affects how future purchases recorded by the user are credited; past
// balances stay as they are.
func (s *UserService) SetSuspicious(ctx context.Context, actor model.Identity, utorid string, suspicious bool) error {
	if !actor.Role.AtLeast(model.RoleManager) {
		return ErrForbidden
	}
	if err := s.store.SetSuspicious(ctx, utorid, suspicious); err != nil {
		return fmt.Errorf("set user suspicious: %w", err)
	}
	return nil
}
