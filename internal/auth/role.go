// Package auth defines the principal carried through a request and the
// closed set of roles.  Handlers check capabilities through predicates
// instead of comparing role strings inline.
package auth

// Role is one of the three account roles.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
	RoleClient Role = "client"
)

// ParseRole normalizes a stored role string.  Unknown values collapse to
// client, the least privileged role.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin, RoleStaff, RoleClient:
		return Role(s)
	default:
		return RoleClient
	}
}

// Principal is the authenticated identity derived from a bearer token.
type Principal struct {
	UserID uint64 `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// IsStaff reports whether the principal may use the back office (bookings,
// messages, financial, reports, realtime).
func (p Principal) IsStaff() bool {
	return p.Role == RoleAdmin || p.Role == RoleStaff
}

// IsAdmin reports whether the principal may manage staff accounts and
// settings.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
