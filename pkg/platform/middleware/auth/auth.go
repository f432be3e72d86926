// Package auth derives the request trust context from the session cookie and
// guards routes that need an authenticated or privileged caller.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	id "inkwell/pkg/domain"
	"inkwell/pkg/requestcontext"
)

// TokenValidator validates a raw session token.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

// Claims is the identity the validator vouches for.
type Claims struct {
	UserID id.UserID
	Email  string
	Role   id.Role
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// Authenticate reads the session cookie and attaches a trust context when the
// token is valid. It never writes a response: a missing or bad token simply
// leaves the request anonymous.
func Authenticate(validator TokenValidator, cookieName string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			claims, err := validator.ValidateToken(ctx, cookie.Value)
			if err != nil {
				logger.WarnContext(ctx, "ignoring invalid session token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx = requestcontext.WithTrustContext(ctx, requestcontext.TrustContext{
				SubjectID: claims.UserID,
				Email:     claims.Email,
				Role:      claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if _, ok := requestcontext.TrustContextFrom(ctx); !ok {
				logger.InfoContext(ctx, "unauthenticated access",
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects anonymous requests with 401 and authenticated callers
// lacking the role with 403.
func RequireRole(role id.Role, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			tc, ok := requestcontext.TrustContextFrom(ctx)
			if !ok {
				logger.InfoContext(ctx, "unauthenticated access",
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
				return
			}
			if tc.Role != role {
				logger.WarnContext(ctx, "forbidden - insufficient role",
					"user_id", tc.SubjectID.String(),
					"role", tc.Role.String(),
					"required_role", role.String(),
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusForbidden, "forbidden", "Not authorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
