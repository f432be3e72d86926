package service

import (
	"context"

	"inkwell/internal/audit"
	"inkwell/internal/auth/models"
	"inkwell/internal/platform/privacy"
	"inkwell/pkg/requestcontext"
)

// Observability helpers for logging, auditing, and metrics.

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, user *models.User, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	client := requestcontext.Client(ctx)

	args := append(attributes,
		"event", string(event),
		"user_id", user.ID.String(),
		"request_id", requestID,
		"log_type", "audit",
	)
	s.logger.InfoContext(ctx, string(event), args...)

	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		UserID:    user.ID.String(),
		Email:     user.Email,
		Action:    string(event),
		Decision:  "granted",
		Device:    client.DeviceName,
		RequestID: requestID,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event", "error", err)
	}
}

// authFailure records a rejected attempt. user is nil when the email is
// unknown; isError marks infrastructure failures.
func (s *Service) authFailure(ctx context.Context, reason string, isError bool, email string, user *models.User, cause error) {
	requestID := requestcontext.RequestID(ctx)
	client := requestcontext.Client(ctx)

	args := []any{
		"event", string(audit.EventAuthFailed),
		"reason", reason,
		"request_id", requestID,
		"client_ip", privacy.AnonymizeIP(client.IP),
		"log_type", "standard",
	}
	if cause != nil {
		args = append(args, "error", cause)
	}
	var userID string
	if user != nil {
		userID = user.ID.String()
		args = append(args, "user_id", userID)
	}
	if isError {
		s.logger.ErrorContext(ctx, string(audit.EventAuthFailed), args...)
	} else {
		s.logger.WarnContext(ctx, string(audit.EventAuthFailed), args...)
	}

	if s.metrics != nil {
		s.metrics.IncrementAuthFailures(reason)
	}

	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		UserID:    userID,
		Email:     email,
		Action:    string(audit.EventAuthFailed),
		Decision:  "denied",
		Reason:    reason,
		Device:    client.DeviceName,
		RequestID: requestID,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit auth failure audit event", "error", err)
	}
}

func (s *Service) incrementUsersCreated() {
	if s.metrics != nil {
		s.metrics.IncrementUsersCreated()
	}
}

func (s *Service) incrementLoginsSucceeded() {
	if s.metrics != nil {
		s.metrics.IncrementLoginsSucceeded()
	}
}

func (s *Service) incrementTokensIssued() {
	if s.metrics != nil {
		s.metrics.IncrementTokensIssued()
	}
}

func (s *Service) incrementPasswordChanges() {
	if s.metrics != nil {
		s.metrics.IncrementPasswordChanges()
	}
}
