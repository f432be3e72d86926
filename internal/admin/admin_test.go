package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"inkwell/internal/audit"
	"inkwell/internal/auth/models"
	"inkwell/internal/sentinel"
	id "inkwell/pkg/domain"
	"inkwell/pkg/requestcontext"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) ListAll(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Error(1)
}

func (m *MockUserStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserStore) UpdateRole(ctx context.Context, userID id.UserID, role id.Role) error {
	args := m.Called(ctx, userID, role)
	return args.Error(0)
}

type MockAuditLog struct {
	mock.Mock
}

func (m *MockAuditLog) Emit(ctx context.Context, base audit.Event) error {
	args := m.Called(ctx, base)
	return args.Error(0)
}

func (m *MockAuditLog) List(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	args := m.Called(ctx, userID)
	events, _ := args.Get(0).([]audit.Event)
	return events, args.Error(1)
}

type fixture struct {
	users  *MockUserStore
	audit  *MockAuditLog
	router http.Handler
	admin  id.UserID
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		users: new(MockUserStore),
		audit: new(MockAuditLog),
		admin: id.NewUserID(),
	}
	t.Cleanup(func() {
		f.users.AssertExpectations(t)
		f.audit.AssertExpectations(t)
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(NewService(f.users, f.audit, logger, nil), logger)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := requestcontext.WithTrustContext(req.Context(), requestcontext.TrustContext{
				SubjectID: f.admin,
				Email:     "root@example.com",
				Role:      id.RoleAdmin,
			})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/api", h.Register)
	f.router = r
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, httptest.NewRequest(method, path, reader))
	return rr
}

func testUser(role id.Role) *models.User {
	return &models.User{
		ID:           id.NewUserID(),
		Email:        "bob@example.com",
		Name:         "Bob",
		Role:         role,
		PasswordHash: "aa:bb",
		CreatedAt:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestListUsers(t *testing.T) {
	t.Run("returns public fields only", func(t *testing.T) {
		f := newFixture(t)
		u := testUser(id.RoleUser)
		f.users.On("ListAll", mock.Anything).Return([]*models.User{u}, nil)

		rr := f.do(http.MethodGet, "/api/admin/users", "")

		require.Equal(t, http.StatusOK, rr.Code)
		var body models.UsersResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		require.Len(t, body.Users, 1)
		assert.Equal(t, u.ID.String(), body.Users[0].ID)
		assert.NotContains(t, rr.Body.String(), "aa:bb")
	})

	t.Run("empty store renders an empty list", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("ListAll", mock.Anything).Return(nil, nil)

		rr := f.do(http.MethodGet, "/api/admin/users", "")

		assert.JSONEq(t, `{"users":[]}`, rr.Body.String())
	})

	t.Run("store failure is a generic 500", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("ListAll", mock.Anything).Return(nil, errors.New("pq: too many connections"))

		rr := f.do(http.MethodGet, "/api/admin/users", "")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "pq:")
	})
}

func TestSetRole(t *testing.T) {
	t.Run("promotes a user and records the actor", func(t *testing.T) {
		f := newFixture(t)
		u := testUser(id.RoleAdmin)
		f.users.On("UpdateRole", mock.Anything, u.ID, id.RoleAdmin).Return(nil)
		f.users.On("FindByID", mock.Anything, u.ID).Return(u, nil)
		f.audit.On("Emit", mock.Anything, mock.MatchedBy(func(e audit.Event) bool {
			return e.Action == string(audit.EventRoleChanged) &&
				e.UserID == u.ID.String() &&
				e.ActorID == f.admin.String()
		})).Return(nil)

		rr := f.do(http.MethodPut, "/api/admin/users/"+u.ID.String()+"/role", `{"role":"admin"}`)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"role":"admin"`)
	})

	t.Run("unknown role is a 400", func(t *testing.T) {
		f := newFixture(t)
		rr := f.do(http.MethodPut, "/api/admin/users/"+id.NewUserID().String()+"/role", `{"role":"superuser"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		f.users.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("role is trimmed before it is parsed", func(t *testing.T) {
		f := newFixture(t)
		u := testUser(id.RoleUser)
		f.users.On("UpdateRole", mock.Anything, u.ID, id.RoleUser).Return(nil)
		f.users.On("FindByID", mock.Anything, u.ID).Return(u, nil)
		f.audit.On("Emit", mock.Anything, mock.Anything).Return(nil)

		rr := f.do(http.MethodPut, "/api/admin/users/"+u.ID.String()+"/role", `{"role":"  user "}`)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("blank role is rejected in the handler", func(t *testing.T) {
		f := newFixture(t)
		rr := f.do(http.MethodPut, "/api/admin/users/"+id.NewUserID().String()+"/role", `{"role":"  "}`)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "Role required", body["error_description"])
		f.users.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing user is a 404", func(t *testing.T) {
		f := newFixture(t)
		target := id.NewUserID()
		f.users.On("UpdateRole", mock.Anything, target, id.RoleUser).Return(sentinel.ErrNotFound)

		rr := f.do(http.MethodPut, "/api/admin/users/"+target.String()+"/role", `{"role":"user"}`)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("malformed id is a 400", func(t *testing.T) {
		f := newFixture(t)
		rr := f.do(http.MethodPut, "/api/admin/users/42/role", `{"role":"user"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("admins cannot change their own role", func(t *testing.T) {
		f := newFixture(t)
		rr := f.do(http.MethodPut, "/api/admin/users/"+f.admin.String()+"/role", `{"role":"user"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUserAudit(t *testing.T) {
	t.Run("lists events for an existing user", func(t *testing.T) {
		f := newFixture(t)
		u := testUser(id.RoleUser)
		f.users.On("FindByID", mock.Anything, u.ID).Return(u, nil)
		f.audit.On("List", mock.Anything, u.ID).Return([]audit.Event{
			{UserID: u.ID.String(), Action: string(audit.EventLoginSucceeded)},
		}, nil)

		rr := f.do(http.MethodGet, "/api/admin/users/"+u.ID.String()+"/audit", "")

		require.Equal(t, http.StatusOK, rr.Code)
		var body struct {
			Events []audit.Event `json:"events"`
			Total  int           `json:"total"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, 1, body.Total)
		assert.Equal(t, string(audit.EventLoginSucceeded), body.Events[0].Action)
	})

	t.Run("unknown user is a 404", func(t *testing.T) {
		f := newFixture(t)
		target := id.NewUserID()
		f.users.On("FindByID", mock.Anything, target).Return(nil, sentinel.ErrNotFound)

		rr := f.do(http.MethodGet, "/api/admin/users/"+target.String()+"/audit", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
