package models

import (
	"time"
)

// Role controls access to admin endpoints
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is an account that owns reports
type User struct {
	ID           string    `json:"id" badgerhold:"key"`           // usr_<uuid>
	UserName     string    `json:"user_name" badgerhold:"index"` // Unique, stored lower-case
	PasswordHash string    `json:"-"`                            // bcrypt hash, never serialized
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Identity is the authenticated caller attached to a request
type Identity struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the caller has the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
