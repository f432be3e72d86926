package service

import (
	"context"
	"time"

	"inkwell/internal/audit"
	"inkwell/internal/auth/models"
	"inkwell/internal/platform/tracer"
	id "inkwell/pkg/domain"
	"inkwell/pkg/requestcontext"
)

// Login verifies credentials and issues a session token.
// Unknown email, wrong password and accounts without a local password all
// fail with the same 401.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (result *models.SessionResult, err error) {
	start := time.Now()
	req.Normalize()
	ctx, span := s.tracer.Start(ctx, tracer.SpanLogin, tracer.String(tracer.AttrEmailHash, tracer.HashEmail(req.Email)))
	defer func() {
		span.End(err)
		if s.metrics != nil {
			s.metrics.ObserveLogin(start)
		}
	}()

	if err := req.Validate(); err != nil {
		s.authFailure(ctx, "missing_credentials", false, req.Email, nil, nil)
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if isNotFound(err) {
			s.burnVerify(req.Password)
			s.authFailure(ctx, "unknown_email", false, req.Email, nil, nil)
			return nil, errInvalidCredentials()
		}
		s.authFailure(ctx, "store_unavailable", true, req.Email, nil, err)
		return nil, wrapInternal(err, "failed to look up user")
	}

	if !user.HasPassword() {
		s.burnVerify(req.Password)
		s.authFailure(ctx, "no_local_password", false, req.Email, user, nil)
		return nil, errInvalidCredentials()
	}
	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.authFailure(ctx, "wrong_password", false, req.Email, user, nil)
		return nil, errInvalidCredentials()
	}

	result, err = s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(tracer.String(tracer.AttrUserID, user.ID.String()), tracer.String(tracer.AttrRole, user.Role.String()))
	s.incrementLoginsSucceeded()
	s.logAudit(ctx, audit.EventLoginSucceeded, user)
	return result, nil
}

// Signup creates a local account with the user role and signs it in.
// All validation happens before the store is touched.
func (s *Service) Signup(ctx context.Context, req *models.SignupRequest) (result *models.SessionResult, err error) {
	start := time.Now()
	req.Normalize()
	ctx, span := s.tracer.Start(ctx, tracer.SpanSignup, tracer.String(tracer.AttrEmailHash, tracer.HashEmail(req.Email)))
	defer func() {
		span.End(err)
		if s.metrics != nil {
			s.metrics.ObserveSignup(start)
		}
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, errEmailTaken()
	} else if !isNotFound(err) {
		s.logger.ErrorContext(ctx, "signup lookup failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, wrapInternal(err, "failed to look up user")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, wrapInternal(err, "failed to hash password")
	}

	user := &models.User{
		ID:           id.NewUserID(),
		Email:        req.Email,
		Name:         req.Name,
		Role:         id.RoleUser,
		PasswordHash: hash,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if isAlreadyUsed(err) {
			return nil, errEmailTaken()
		}
		s.logger.ErrorContext(ctx, "signup insert failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, wrapInternal(err, "failed to create user")
	}
	s.incrementUsersCreated()
	s.logAudit(ctx, audit.EventUserCreated, user)

	result, err = s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(tracer.String(tracer.AttrUserID, user.ID.String()))
	return result, nil
}
