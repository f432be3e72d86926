package models

import (
	dErrors "inkwell/pkg/domain-errors"
	s "inkwell/pkg/string"
	"inkwell/pkg/validation"
)

var passwordTooShort = validation.Rule{
	Tag:     "password",
	Code:    dErrors.CodeBadRequest,
	Message: "Password must be at least 6 characters",
}

// missing maps both presence tags to one fixed message.
func missing(message string) []validation.Rule {
	return []validation.Rule{
		{Tag: "required", Code: dErrors.CodeBadRequest, Message: message},
		{Tag: "notblank", Code: dErrors.CodeBadRequest, Message: message},
	}
}

// LoginRequest carries credentials for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = s.NormalizeEmail(r.Email)
}

func (r *LoginRequest) Validate() error {
	return validation.Validate(r, missing("Email and password required")...)
}

// SignupRequest carries the new account for POST /api/auth/signup.
type SignupRequest struct {
	Email    string `json:"email" validate:"notblank,email,max=255"`
	Password string `json:"password" validate:"required,password"`
	Name     string `json:"name" validate:"notblank,max=200"`
}

func (r *SignupRequest) Normalize() {
	r.Email = s.NormalizeEmail(r.Email)
	s.TrimStrings(&r.Name)
}

// Validate reports missing fields first, then a short password, then
// malformed values.
func (r *SignupRequest) Validate() error {
	rules := append(missing("Email, password, and name required"), passwordTooShort)
	return validation.Validate(r, rules...)
}

// ChangePasswordRequest carries POST /api/auth/password for the current user.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,password"`
}

func (r *ChangePasswordRequest) Validate() error {
	rules := append(missing("Current and new password required"), passwordTooShort)
	return validation.Validate(r, rules...)
}

// SetRoleRequest carries PUT /api/admin/users/{id}/role.
type SetRoleRequest struct {
	Role string `json:"role" validate:"notblank"`
}

func (r *SetRoleRequest) Normalize() {
	s.TrimStrings(&r.Role)
}

func (r *SetRoleRequest) Validate() error {
	return validation.Validate(r, missing("Role required")...)
}
