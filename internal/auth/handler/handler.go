package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/auth/models"
	id "inkwell/pkg/domain"
	dErrors "inkwell/pkg/domain-errors"
	"inkwell/pkg/platform/httputil"
	"inkwell/pkg/requestcontext"
)

// Service defines the interface for authentication operations.
type Service interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.SessionResult, error)
	Signup(ctx context.Context, req *models.SignupRequest) (*models.SessionResult, error)
	CurrentUser(ctx context.Context, userID id.UserID) (*models.User, error)
	ChangePassword(ctx context.Context, userID id.UserID, req *models.ChangePasswordRequest) error
}

// CookieConfig describes the session cookie. Secure is forced on for TLS
// requests regardless of the flag.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// Handler serves the cookie-session auth endpoints.
type Handler struct {
	auth   Service
	logger *slog.Logger
	cookie CookieConfig
}

func New(auth Service, logger *slog.Logger, cookie CookieConfig) *Handler {
	if cookie.Name == "" {
		cookie.Name = "auth_token"
	}
	if cookie.TTL <= 0 {
		cookie.TTL = 7 * 24 * time.Hour
	}
	return &Handler{
		auth:   auth,
		logger: logger,
		cookie: cookie,
	}
}

// Register registers the public auth routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/signup", h.HandleSignup)
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/logout", h.HandleLogout)
	r.Get("/auth/me", h.HandleMe)
}

// RegisterAuthenticated registers routes the parent router guards with RequireAuth.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Post("/auth/password", h.HandleChangePassword)
}

// HandleSignup implements POST /api/auth/signup.
//
// Input: { "email": "a@x.com", "password": "secret1", "name": "Ann" }
// Output: { "user": { "id", "email", "name", "role" } } plus the session cookie.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[models.SignupRequest](w, r, h.logger)
	if !ok {
		return
	}

	res, err := h.auth.Signup(ctx, req)
	if err != nil {
		h.logFailure(ctx, "signup failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.setSessionCookie(w, r, res.Token)
	h.logger.InfoContext(ctx, "signup successful",
		"request_id", requestID,
		"user_id", res.User.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusOK, models.UserEnvelope{User: models.NewUserResponse(res.User)})
}

// HandleLogin implements POST /api/auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[models.LoginRequest](w, r, h.logger)
	if !ok {
		return
	}

	res, err := h.auth.Login(ctx, req)
	if err != nil {
		h.logFailure(ctx, "login failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.setSessionCookie(w, r, res.Token)
	h.logger.InfoContext(ctx, "login successful",
		"request_id", requestID,
		"user_id", res.User.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusOK, models.UserEnvelope{User: models.NewUserResponse(res.User)})
}

// HandleLogout clears the cookie. Tokens are stateless, so a copied token
// stays valid until it expires.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w, r)
	httputil.WriteJSON(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// HandleMe returns the caller's fresh user record, or {"user":null} for
// anonymous callers. A cookie that failed validation is cleared.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tc, ok := requestcontext.TrustContextFrom(ctx)
	if !ok {
		if h.hasSessionCookie(r) {
			h.clearSessionCookie(w, r)
		}
		httputil.WriteJSON(w, http.StatusOK, models.UserEnvelope{})
		return
	}

	user, err := h.auth.CurrentUser(ctx, tc.SubjectID)
	if err != nil {
		h.logFailure(ctx, "failed to load current user", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.UserEnvelope{User: models.NewUserResponse(user)})
}

// HandleChangePassword implements POST /api/auth/password for the caller.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tc, ok := requestcontext.TrustContextFrom(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Authentication required"))
		return
	}

	req, ok := httputil.DecodeJSON[models.ChangePasswordRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.auth.ChangePassword(ctx, tc.SubjectID, req); err != nil {
		h.logFailure(ctx, "change password failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "password changed",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", tc.SubjectID.String(),
	)
	httputil.WriteJSON(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// logFailure logs client errors at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	requestID := requestcontext.RequestID(ctx)
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) && domainErr.Code != dErrors.CodeInternal {
		h.logger.WarnContext(ctx, msg, "error", err, "request_id", requestID)
		return
	}
	h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestID)
}
