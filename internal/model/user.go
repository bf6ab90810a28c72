// Package model defines the data structures used throughout the application.
package model

import "time"

// Roles a user can hold. Stored as plain text in the users.role column.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account.
//
// Phone is the login identifier and is UNIQUE in the database. Password holds
// a bcrypt hash for every account created by this server; rows imported from
// older deployments may still carry a plaintext value until their owner signs
// in once (see service.AuthService.Signin).
//
// The `json:"-"` tag on Password keeps it out of every API response, even if
// a handler accidentally encodes the whole struct.
type User struct {
	ID        string    `json:"id"        db:"id"`
	Name      string    `json:"name"      db:"name"`
	Phone     string    `json:"phone"     db:"phone"`
	Password  string    `json:"-"         db:"password"`
	Role      string    `json:"role"      db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
// A nil user is never an admin.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// DisplayName is the name shown next to the user's articles and comments:
// the name if set, otherwise the phone number.
func (u *User) DisplayName() string {
	return DisplayName(u.Name, u.Phone)
}

// DisplayName picks the first non-empty value of name and phone, falling back
// to "Unknown". Repositories use it when an author row was joined in.
func DisplayName(name, phone string) string {
	switch {
	case name != "":
		return name
	case phone != "":
		return phone
	default:
		return "Unknown"
	}
}

// Session binds an opaque bearer token to a user. There is at most one
// session per user: signing in replaces the previous one.
type Session struct {
	Token     string    `json:"token"     db:"token"`
	UserID    string    `json:"userId"    db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
