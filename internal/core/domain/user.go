package domain

import "time"

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

// User models an account on the task backend.
type User struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Credential is the process-wide session identity: the bearer token and the
// profile it was issued for. The two are always stored and cleared together;
// a Credential with one half missing is never observable.
type Credential struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// HasRole reports whether the user's role is in the allowed set.
// An empty allowed set means any role qualifies.
func (u *User) HasRole(allowed ...string) bool {
	if u == nil {
		return false
	}
	if len(allowed) == 0 {
		return true
	}
	for _, r := range allowed {
		if u.Role == r {
			return true
		}
	}
	return false
}
