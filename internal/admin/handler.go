package admin

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/audit"
	"inkwell/internal/auth/models"
	id "inkwell/pkg/domain"
	"inkwell/pkg/platform/httputil"
	"inkwell/pkg/requestcontext"
)

// Handler handles admin user management endpoints
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// New creates a new admin handler
func New(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register registers admin routes. The parent router guards them with RequireRole(admin).
func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/users", h.HandleListUsers)
	r.Put("/admin/users/{id}/role", h.HandleSetRole)
	r.Get("/admin/users/{id}/audit", h.HandleUserAudit)
}

func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	users, err := h.service.ListUsers(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list users",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "admin users list retrieved",
		"request_id", requestID,
		"count", len(users),
	)
	httputil.WriteJSON(w, http.StatusOK, toUsersResponse(users))
}

// HandleSetRole implements PUT /api/admin/users/{id}/role.
//
// Input: { "role": "admin" }
// Output: { "user": { "id", "email", "name", "role" } }
func (h *Handler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	targetID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	tc, _ := requestcontext.TrustContextFrom(ctx)

	req, ok := httputil.DecodeAndPrepare[models.SetRoleRequest](w, r, h.logger)
	if !ok {
		return
	}

	user, err := h.service.SetRole(ctx, tc.SubjectID, targetID, req)
	if err != nil {
		h.logger.WarnContext(ctx, "set role failed",
			"error", err,
			"request_id", requestID,
			"user_id", targetID.String(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.UserEnvelope{User: models.NewUserResponse(user)})
}

func (h *Handler) HandleUserAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.service.AuditEvents(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to get audit events",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"total":  len(events),
	})
}

func toUsersResponse(users []*models.User) models.UsersResponse {
	out := models.UsersResponse{Users: make([]models.UserResponse, 0, len(users))}
	for _, u := range users {
		out.Users = append(out.Users, *models.NewUserResponse(u))
	}
	return out
}
