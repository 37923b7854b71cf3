package domain

import (
	"strings"

	"github.com/google/uuid"
)

// UserRole represents the role of a system user
type UserRole string

const (
	UserRoleAdmin UserRole = "Admin"
	UserRoleNurse UserRole = "Nurse"
	UserRoleUser  UserRole = "User"
)

// User represents a system user account
type User struct {
	Meta
	Username     string   `json:"username"` // unique
	Email        string   `json:"email"`    // unique
	PasswordHash string   `json:"-"`
	Role         UserRole `json:"role"`
	IsActive     bool     `json:"is_active"`
}

// NewUser creates a new active user with the default role
func NewUser(username, email, passwordHash string) *User {
	return &User{
		Meta:         Meta{ID: uuid.NewString()},
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         UserRoleUser,
		IsActive:     true,
	}
}

func (u *User) Kind() string { return KindUser }

func (u *User) Snapshot() map[string]any {
	// The password hash is deliberately excluded so it never lands in an
	// audit diff payload; it is persisted as a sensitive field instead.
	return map[string]any{
		"username":  u.Username,
		"email":     u.Email,
		"role":      string(u.Role),
		"is_active": u.IsActive,
	}
}

// SensitiveFields exposes columns that are persisted but never audited.
func (u *User) SensitiveFields() map[string]any {
	return map[string]any{"password_hash": u.PasswordHash}
}

// Validate checks the user's required fields
func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return NewDomainError("username is required")
	}
	if len(u.Username) > 100 {
		return NewDomainError("username must not exceed 100 characters")
	}
	if !strings.Contains(u.Email, "@") {
		return NewDomainError("invalid email format")
	}
	if u.PasswordHash == "" {
		return NewDomainError("password hash is required")
	}
	switch u.Role {
	case UserRoleAdmin, UserRoleNurse, UserRoleUser:
	default:
		return NewDomainError("invalid user role")
	}
	return nil
}
