package admin

import (
	"context"
	"errors"
	"log/slog"

	"inkwell/internal/audit"
	"inkwell/internal/auth/models"
	"inkwell/internal/platform/tracer"
	"inkwell/internal/sentinel"
	id "inkwell/pkg/domain"
	dErrors "inkwell/pkg/domain-errors"
	"inkwell/pkg/requestcontext"
)

// UserStore defines the interface for user storage operations
type UserStore interface {
	ListAll(ctx context.Context) ([]*models.User, error)
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	UpdateRole(ctx context.Context, userID id.UserID, role id.Role) error
}

// AuditLog records role changes and serves a user's audit trail.
type AuditLog interface {
	Emit(ctx context.Context, base audit.Event) error
	List(ctx context.Context, userID id.UserID) ([]audit.Event, error)
}

// Service provides admin-level user management
type Service struct {
	users  UserStore
	audit  AuditLog
	logger *slog.Logger
	tracer tracer.Tracer
}

// NewService creates a new admin service
func NewService(users UserStore, auditLog AuditLog, logger *slog.Logger, t tracer.Tracer) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if t == nil {
		t = tracer.NewNoop()
	}
	return &Service{
		users:  users,
		audit:  auditLog,
		logger: logger,
		tracer: t,
	}
}

var errUserNotFound = dErrors.New(dErrors.CodeNotFound, "User not found")

func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

// SetRole changes target's role. req is expected to be normalized and
// validated by the caller. The new role only reaches the target's session on
// their next login; issued tokens keep the old role until expiry.
func (s *Service) SetRole(ctx context.Context, actorID, targetID id.UserID, req *models.SetRoleRequest) (user *models.User, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanSetRole,
		tracer.String(tracer.AttrUserID, targetID.String()),
	)
	defer func() { span.End(err) }()

	role, err := id.ParseRole(req.Role)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Unknown role")
	}
	if actorID == targetID {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Cannot change your own role")
	}

	if err := s.users.UpdateRole(ctx, targetID, role); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, errUserNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update role")
	}

	user, err = s.users.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, errUserNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	span.SetAttributes(tracer.String(tracer.AttrRole, role.String()))

	requestID := requestcontext.RequestID(ctx)
	s.logger.InfoContext(ctx, string(audit.EventRoleChanged),
		"event", string(audit.EventRoleChanged),
		"user_id", targetID.String(),
		"actor_id", actorID.String(),
		"role", role.String(),
		"request_id", requestID,
		"log_type", "audit",
	)
	if err := s.audit.Emit(ctx, audit.Event{
		UserID:    targetID.String(),
		Email:     user.Email,
		Action:    string(audit.EventRoleChanged),
		Decision:  "granted",
		Reason:    "role=" + role.String(),
		Device:    requestcontext.Client(ctx).DeviceName,
		ActorID:   actorID.String(),
		RequestID: requestID,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event", "error", err)
	}
	return user, nil
}

// AuditEvents returns the audit trail of an existing user.
func (s *Service) AuditEvents(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, errUserNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	events, err := s.audit.List(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events")
	}
	return events, nil
}
