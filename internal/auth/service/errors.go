package service

import (
	"errors"

	"inkwell/internal/sentinel"
	dErrors "inkwell/pkg/domain-errors"
)

// Client-facing messages. Authentication failures share one message so the
// response never reveals whether an email is registered.
const (
	msgInvalidCredentials = "Invalid email or password"
	msgEmailTaken         = "Email already registered"
)

func errInvalidCredentials() error {
	return dErrors.New(dErrors.CodeUnauthorized, msgInvalidCredentials)
}

func errEmailTaken() error {
	return dErrors.New(dErrors.CodeConflict, msgEmailTaken)
}

// wrapInternal keeps the cause for logs while the client only sees a 500.
func wrapInternal(err error, msg string) error {
	return &dErrors.Error{Code: dErrors.CodeInternal, Message: msg, Err: err}
}

func isNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}

func isAlreadyUsed(err error) bool {
	return errors.Is(err, sentinel.ErrAlreadyUsed)
}
