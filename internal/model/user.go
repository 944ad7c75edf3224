package model

import "time"

// Roles assigned to users. Role is fixed at registration (USER) and only
// changes through admin edits.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents an application user record as stored in the `users`
// table. Emails are stored lower-cased and unique; the password hash is
// never serialized into API responses. Inactive accounts resolve as guests.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Avatar       *string   `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user carries the ADMIN role. All admin gates
// go through this single predicate so the policy lives in one place.
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }
