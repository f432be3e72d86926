package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"inkwell/internal/audit"
	"inkwell/internal/auth/models"
	"inkwell/internal/sentinel"
	id "inkwell/pkg/domain"
	dErrors "inkwell/pkg/domain-errors"
)

func (s *ServiceSuite) TestCurrentUser() {
	s.T().Run("returns the stored record", func(t *testing.T) {
		s.SetupTest()
		user := s.newTestUser("alice@example.com", "secret123")
		s.mockUserStore.EXPECT().FindByID(gomock.Any(), user.ID).Return(user, nil)

		got, err := s.service.CurrentUser(s.ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user, got)
	})

	s.T().Run("deleted account reads as anonymous", func(t *testing.T) {
		s.SetupTest()
		s.mockUserStore.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)

		got, err := s.service.CurrentUser(s.ctx, id.NewUserID())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	s.T().Run("store failure is internal", func(t *testing.T) {
		s.SetupTest()
		s.mockUserStore.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

		_, err := s.service.CurrentUser(s.ctx, id.NewUserID())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestChangePassword() {
	s.T().Run("replaces the hash after checking the current password", func(t *testing.T) {
		s.SetupTest()
		user := s.newTestUser("alice@example.com", "secret123")
		s.mockUserStore.EXPECT().FindByID(gomock.Any(), user.ID).Return(user, nil)
		s.mockUserStore.EXPECT().UpdatePasswordHash(gomock.Any(), user.ID, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ id.UserID, hash string) error {
				assert.True(t, s.hasher.Verify("brand-new-pw", hash))
				assert.False(t, s.hasher.Verify("secret123", hash))
				return nil
			})
		s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e audit.Event) error {
				assert.Equal(t, string(audit.EventPasswordChanged), e.Action)
				return nil
			})

		err := s.service.ChangePassword(s.ctx, user.ID, &models.ChangePasswordRequest{
			CurrentPassword: "secret123",
			NewPassword:     "brand-new-pw",
		})
		require.NoError(t, err)
		assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.PasswordChanges))
	})

	s.T().Run("wrong current password is rejected", func(t *testing.T) {
		s.SetupTest()
		s.allowAudit()
		user := s.newTestUser("alice@example.com", "secret123")
		s.mockUserStore.EXPECT().FindByID(gomock.Any(), user.ID).Return(user, nil)
		s.mockUserStore.EXPECT().UpdatePasswordHash(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		err := s.service.ChangePassword(s.ctx, user.ID, &models.ChangePasswordRequest{
			CurrentPassword: "nope-nope",
			NewPassword:     "brand-new-pw",
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.T().Run("short new password is rejected without a lookup", func(t *testing.T) {
		s.SetupTest()
		s.mockUserStore.EXPECT().FindByID(gomock.Any(), gomock.Any()).Times(0)

		err := s.service.ChangePassword(s.ctx, id.NewUserID(), &models.ChangePasswordRequest{
			CurrentPassword: "secret123",
			NewPassword:     "abc",
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.T().Run("vanished account is unauthenticated", func(t *testing.T) {
		s.SetupTest()
		s.mockUserStore.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)

		err := s.service.ChangePassword(s.ctx, id.NewUserID(), &models.ChangePasswordRequest{
			CurrentPassword: "secret123",
			NewPassword:     "brand-new-pw",
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
