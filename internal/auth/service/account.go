package service

import (
	"context"

	"inkwell/internal/audit"
	"inkwell/internal/auth/models"
	"inkwell/internal/platform/tracer"
	id "inkwell/pkg/domain"
	dErrors "inkwell/pkg/domain-errors"
)

// CurrentUser loads the fresh record behind a validated token.
// A deleted account yields (nil, nil) and reads as anonymous.
func (s *Service) CurrentUser(ctx context.Context, userID id.UserID) (user *models.User, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanCurrentUser, tracer.String(tracer.AttrUserID, userID.String()))
	defer func() { span.End(err) }()

	user, err = s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, wrapInternal(err, "failed to load user")
	}
	return user, nil
}

// ChangePassword replaces the caller's password after re-checking the current one.
// Existing tokens stay valid until they expire.
func (s *Service) ChangePassword(ctx context.Context, userID id.UserID, req *models.ChangePasswordRequest) (err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanChangePassword, tracer.String(tracer.AttrUserID, userID.String()))
	defer func() { span.End(err) }()

	if err := req.Validate(); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return dErrors.New(dErrors.CodeUnauthorized, "Authentication required")
		}
		return wrapInternal(err, "failed to load user")
	}

	if !user.HasPassword() || !s.hasher.Verify(req.CurrentPassword, user.PasswordHash) {
		s.authFailure(ctx, "wrong_current_password", false, user.Email, user, nil)
		return errInvalidCredentials()
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return wrapInternal(err, "failed to hash password")
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return wrapInternal(err, "failed to update password")
	}

	s.incrementPasswordChanges()
	s.logAudit(ctx, audit.EventPasswordChanged, user)
	return nil
}
