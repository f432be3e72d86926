package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"inkwell/internal/audit"
	"inkwell/internal/auth/models"
	"inkwell/internal/auth/token"
	"inkwell/internal/sentinel"
	id "inkwell/pkg/domain"
	dErrors "inkwell/pkg/domain-errors"
)

func (s *ServiceSuite) TestLogin() {
	s.T().Run("valid credentials issue a session", func(t *testing.T) {
		s.SetupTest()
		user := s.newTestUser("alice@example.com", "secret123")
		expiresAt := s.now.Add(7 * 24 * time.Hour)

		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "alice@example.com").Return(user, nil)
		s.mockTokens.EXPECT().Issue(gomock.Any(), token.Claims{
			UserID: user.ID,
			Email:  user.Email,
			Role:   id.RoleUser,
		}).Return("signed.jwt.token", expiresAt, nil)
		s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e audit.Event) error {
				assert.Equal(t, string(audit.EventLoginSucceeded), e.Action)
				assert.Equal(t, "granted", e.Decision)
				assert.Equal(t, user.ID.String(), e.UserID)
				assert.Equal(t, "Chrome on macOS", e.Device)
				assert.Equal(t, "req-123", e.RequestID)
				return nil
			})

		result, err := s.service.Login(s.ctx, &models.LoginRequest{Email: "alice@example.com", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, user, result.User)
		assert.Equal(t, "signed.jwt.token", result.Token)
		assert.Equal(t, expiresAt, result.ExpiresAt)
		assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.LoginsSucceeded))
		assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.TokensIssued))
	})

	s.T().Run("email is normalized before lookup", func(t *testing.T) {
		s.SetupTest()
		s.allowAudit()
		user := s.newTestUser("alice@example.com", "secret123")

		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "alice@example.com").Return(user, nil)
		s.mockTokens.EXPECT().Issue(gomock.Any(), gomock.Any()).Return("tok", s.now, nil)

		_, err := s.service.Login(s.ctx, &models.LoginRequest{Email: "  Alice@Example.COM ", Password: "secret123"})
		require.NoError(t, err)
	})

	s.T().Run("missing fields are rejected before the store is touched", func(t *testing.T) {
		cases := []*models.LoginRequest{
			{Email: "", Password: "secret123"},
			{Email: "alice@example.com", Password: ""},
			{Email: "   ", Password: "secret123"},
		}
		for _, req := range cases {
			s.SetupTest()
			s.allowAudit()
			s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Times(0)

			result, err := s.service.Login(s.ctx, req)
			assert.Nil(t, result)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
			assert.Equal(t, "Email and password required", err.Error())
		}
	})

	s.T().Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		s.SetupTest()
		s.allowAudit()
		user := s.newTestUser("alice@example.com", "secret123")

		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "ghost@example.com").Return(nil, sentinel.ErrNotFound)
		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "alice@example.com").Return(user, nil)
		s.mockTokens.EXPECT().Issue(gomock.Any(), gomock.Any()).Times(0)

		_, unknownErr := s.service.Login(s.ctx, &models.LoginRequest{Email: "ghost@example.com", Password: "secret123"})
		_, wrongErr := s.service.Login(s.ctx, &models.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})

		require.Error(t, unknownErr)
		require.Error(t, wrongErr)
		assert.True(t, dErrors.HasCode(unknownErr, dErrors.CodeUnauthorized))
		assert.Equal(t, unknownErr.Error(), wrongErr.Error())
		assert.Equal(t, "Invalid email or password", wrongErr.Error())
		assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.AuthFailures.WithLabelValues("unknown_email")))
		assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.AuthFailures.WithLabelValues("wrong_password")))
	})

	s.T().Run("account without a local password cannot log in", func(t *testing.T) {
		s.SetupTest()
		user := s.newTestUser("oauth@example.com", "")

		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "oauth@example.com").Return(user, nil)
		s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e audit.Event) error {
				assert.Equal(t, string(audit.EventAuthFailed), e.Action)
				assert.Equal(t, "denied", e.Decision)
				assert.Equal(t, "no_local_password", e.Reason)
				return nil
			})

		_, err := s.service.Login(s.ctx, &models.LoginRequest{Email: "oauth@example.com", Password: "anything"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.T().Run("store failure is internal", func(t *testing.T) {
		s.SetupTest()
		s.allowAudit()
		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

		_, err := s.service.Login(s.ctx, &models.LoginRequest{Email: "alice@example.com", Password: "secret123"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.T().Run("token issue failure is internal", func(t *testing.T) {
		s.SetupTest()
		user := s.newTestUser("alice@example.com", "secret123")
		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(user, nil)
		s.mockTokens.EXPECT().Issue(gomock.Any(), gomock.Any()).Return("", time.Time{}, errors.New("signing failed"))

		_, err := s.service.Login(s.ctx, &models.LoginRequest{Email: "alice@example.com", Password: "secret123"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
		assert.Equal(t, 0.0, testutil.ToFloat64(s.metrics.LoginsSucceeded))
	})
}

func (s *ServiceSuite) TestSignup() {
	s.T().Run("creates a user with the user role and signs it in", func(t *testing.T) {
		s.SetupTest()
		s.allowAudit()
		var inserted *models.User

		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "new@example.com").Return(nil, sentinel.ErrNotFound)
		s.mockUserStore.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, u *models.User) error {
				inserted = u
				return nil
			})
		s.mockTokens.EXPECT().Issue(gomock.Any(), gomock.Any()).Return("tok", s.now.Add(time.Hour), nil)

		result, err := s.service.Signup(s.ctx, &models.SignupRequest{
			Email:    " New@Example.com",
			Password: "secret123",
			Name:     "  Nina ",
		})
		require.NoError(t, err)
		require.NotNil(t, inserted)
		assert.False(t, inserted.ID.IsNil())
		assert.Equal(t, "new@example.com", inserted.Email)
		assert.Equal(t, "Nina", inserted.Name)
		assert.Equal(t, id.RoleUser, inserted.Role)
		assert.Equal(t, s.now, inserted.CreatedAt)
		assert.NotEqual(t, "secret123", inserted.PasswordHash)
		assert.True(t, s.hasher.Verify("secret123", inserted.PasswordHash))
		assert.Equal(t, inserted, result.User)
		assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.UsersCreated))
	})

	s.T().Run("validation failures never reach the store", func(t *testing.T) {
		cases := []struct {
			name string
			req  *models.SignupRequest
			msg  string
		}{
			{"missing name", &models.SignupRequest{Email: "a@example.com", Password: "secret123"}, "Email, password, and name required"},
			{"missing email", &models.SignupRequest{Password: "secret123", Name: "A"}, "Email, password, and name required"},
			{"short password", &models.SignupRequest{Email: "a@example.com", Password: "12345", Name: "A"}, "Password must be at least 6 characters"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				s.SetupTest()
				s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Times(0)
				s.mockUserStore.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(0)

				_, err := s.service.Signup(s.ctx, tc.req)
				require.Error(t, err)
				assert.Equal(t, tc.msg, err.Error())
			})
		}
	})

	s.T().Run("malformed email is a validation error", func(t *testing.T) {
		s.SetupTest()
		_, err := s.service.Signup(s.ctx, &models.SignupRequest{Email: "not-an-email", Password: "secret123", Name: "A"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.T().Run("registered email conflicts", func(t *testing.T) {
		s.SetupTest()
		existing := s.newTestUser("taken@example.com", "secret123")
		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "taken@example.com").Return(existing, nil)
		s.mockUserStore.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(0)

		_, err := s.service.Signup(s.ctx, &models.SignupRequest{Email: "taken@example.com", Password: "secret123", Name: "B"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
		assert.Equal(t, "Email already registered", err.Error())
	})

	s.T().Run("insert race on the same email conflicts", func(t *testing.T) {
		s.SetupTest()
		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)
		s.mockUserStore.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(sentinel.ErrAlreadyUsed)
		s.mockTokens.EXPECT().Issue(gomock.Any(), gomock.Any()).Times(0)

		_, err := s.service.Signup(s.ctx, &models.SignupRequest{Email: "race@example.com", Password: "secret123", Name: "R"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
		assert.Equal(t, 0.0, testutil.ToFloat64(s.metrics.UsersCreated))
	})

	s.T().Run("insert failure is internal", func(t *testing.T) {
		s.SetupTest()
		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)
		s.mockUserStore.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		_, err := s.service.Signup(s.ctx, &models.SignupRequest{Email: "x@example.com", Password: "secret123", Name: "X"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
