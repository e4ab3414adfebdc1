package model

import "time"

// Role is the caller's permission level, ordered from least to most privileged.
type Role string

const (
	RoleRegular   Role = "regular"
	RoleCashier   Role = "cashier"
	RoleManager   Role = "manager"
	RoleSuperuser Role = "superuser"
)

var roleRank = map[Role]int{
	RoleRegular:   0,
	RoleCashier:   1,
	RoleManager:   2,
	RoleSuperuser: 3,
}

// ParseRole returns the Role for s, or false if s is not a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	_, ok := roleRank[r]
	return r, ok
}

// AtLeast reports whether r grants at least the privileges of min.
// Unknown roles rank below every known role.
func (r Role) AtLeast(min Role) bool {
	rank, ok := roleRank[r]
	if !ok {
		return false
	}
	return rank >= roleRank[min]
}

// Identity is the pre-verified caller forwarded by the gateway.
// It carries no proof of authentication; upstream middleware already did that.
type Identity struct {
	Utorid string
	Role   Role
}

// User is an account row. Points is the stored balance; it is mutated only
// through atomic increments inside ledger units, never recomputed from history.
type User struct {
	ID         int64     `json:"id"`
	Utorid     string    `json:"utorid"`
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	Points     int64     `json:"points"`
	Suspicious bool      `json:"suspicious"`
	CreatedAt  time.Time `json:"created_at"`
}

// RegisterUserRequest is the DTO for creating a user account.
type RegisterUserRequest struct {
	Utorid string `json:"utorid" validate:"required,utorid"`
	Name   string `json:"name" validate:"required,notblank,max=128"`
	Role   string `json:"role" validate:"omitempty,oneof=regular cashier manager superuser"`
}

// UserResponse is the API representation of a user.
type UserResponse struct {
	ID         int64     `json:"id"`
	Utorid     string    `json:"utorid"`
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	Points     int64     `json:"points"`
	Suspicious bool      `json:"suspicious"`
	CreatedAt  time.Time `json:"created_at"`
}

// Response converts a user row into its API representation.
func (u *User) Response() *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Utorid:     u.Utorid,
		Name:       u.Name,
		Role:       u.Role,
		Points:     u.Points,
		Suspicious: u.Suspicious,
		CreatedAt:  u.CreatedAt,
	}
}
