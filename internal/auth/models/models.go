package models

import (
	"time"

	id "inkwell/pkg/domain"
	dErrors "inkwell/pkg/domain-errors"
	"inkwell/pkg/validation"
)

// MinPasswordLength is counted in characters, not bytes.
const MinPasswordLength = validation.MinPasswordLength

// User is an identity record as held by a user store.
// An empty PasswordHash means the account has no local password.
type User struct {
	ID           id.UserID
	Email        string
	Name         string
	Role         id.Role
	PasswordHash string
	CreatedAt    time.Time
}

// Validate is applied to every record read from a store.
func (u *User) Validate() error {
	if u == nil {
		return dErrors.New(dErrors.CodeInternal, "user record is missing")
	}
	if u.ID.IsNil() {
		return dErrors.New(dErrors.CodeInternal, "user record has no id")
	}
	if u.Email == "" {
		return dErrors.New(dErrors.CodeInternal, "user record has no email")
	}
	if !u.Role.IsValid() {
		return dErrors.New(dErrors.CodeInternal, "user record has unknown role")
	}
	return nil
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

func (u *User) IsAdmin() bool {
	return u.Role == id.RoleAdmin
}

// SessionResult is the outcome of a successful login or signup.
// The token is delivered only as a cookie, never in a response body.
type SessionResult struct {
	User      *User
	Token     string
	ExpiresAt time.Time
}
