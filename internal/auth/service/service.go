package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"inkwell/internal/audit"
	"inkwell/internal/auth/metrics"
	"inkwell/internal/auth/models"
	"inkwell/internal/auth/password"
	"inkwell/internal/auth/token"
	"inkwell/internal/platform/tracer"
	id "inkwell/pkg/domain"
)

// UserStore defines the persistence interface for identity records.
// Error Contract: Find and Update methods return sentinel.ErrNotFound when the
// user does not exist; Insert returns sentinel.ErrAlreadyUsed for a taken email.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	UpdatePasswordHash(ctx context.Context, userID id.UserID, hash string) error
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(ctx context.Context, claims token.Claims) (string, time.Time, error)
}

// PasswordHasher derives and checks password records.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, record string) bool
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service orchestrates login, signup and account self-service.
// It never writes cookies; transport concerns stay in the handler.
type Service struct {
	users          UserStore
	tokens         TokenIssuer
	hasher         PasswordHasher
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         tracer.Tracer

	dummyOnce sync.Once
	dummyHash string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithPasswordHasher overrides the PBKDF2 defaults, e.g. with fewer iterations in tests.
func WithPasswordHasher(h PasswordHasher) Option {
	return func(s *Service) {
		s.hasher = h
	}
}

func New(users UserStore, tokens TokenIssuer, opts ...Option) *Service {
	svc := &Service{
		users:  users,
		tokens: tokens,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.hasher == nil {
		svc.hasher = password.NewHasher()
	}
	if svc.tracer == nil {
		svc.tracer = tracer.NewNoop()
	}
	return svc
}

// issueSession signs a token for user. Called only after every check passed.
func (s *Service) issueSession(ctx context.Context, user *models.User) (*models.SessionResult, error) {
	signed, expiresAt, err := s.tokens.Issue(ctx, token.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, wrapInternal(err, "failed to issue session token")
	}
	s.incrementTokensIssued()
	return &models.SessionResult{
		User:      user,
		Token:     signed,
		ExpiresAt: expiresAt,
	}, nil
}

// burnVerify runs a verification against a throwaway record so unknown
// emails cost the same as wrong passwords.
func (s *Service) burnVerify(pw string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("inkwell-dummy-password")
	})
	_ = s.hasher.Verify(pw, s.dummyHash)
}
