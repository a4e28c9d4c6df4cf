package user

import "time"

// Roles. Exactly one user carries the admin role; only they may manage the
// shared pot and create pot expenses.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User represents a trip member. Users are created once up front and are
// immutable apart from trivial fields.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	PIN       string    `json:"-"` // 4-digit login PIN, never serialized
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
