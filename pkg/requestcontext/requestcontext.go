// Package requestcontext holds the request-scoped values shared between
// middleware and handlers: request ID, request time, client metadata and the
// trust context.
package requestcontext

import (
	"context"
	"time"

	id "inkwell/pkg/domain"
)

type (
	contextKeyRequestID      struct{}
	contextKeyRequestTime    struct{}
	contextKeyTrustContext   struct{}
	contextKeyClientMetadata struct{}
)

// ClientMetadata describes the caller's connection as seen by the server.
type ClientMetadata struct {
	IP         string
	UserAgent  string
	DeviceName string
}

// TrustContext is the identity derived from a validated session token.
// It exists only for the lifetime of one request.
type TrustContext struct {
	SubjectID id.UserID
	Email     string
	Role      id.Role
}

// IsAdmin reports whether the caller holds the admin role.
func (t TrustContext) IsAdmin() bool {
	return t.Role == id.RoleAdmin
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID{}, requestID)
}

// RequestID returns the request ID, or "" outside an HTTP request.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyRequestID{}).(string); ok {
		return v
	}
	return ""
}

// WithTime pins "now" for everything downstream of ctx.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, contextKeyRequestTime{}, t)
}

// Now returns the request-scoped time, falling back to time.Now() for
// non-HTTP contexts like the seeder, CLI tools and tests.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(contextKeyRequestTime{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTrustContext(ctx context.Context, tc TrustContext) context.Context {
	return context.WithValue(ctx, contextKeyTrustContext{}, tc)
}

// TrustContextFrom returns the caller identity. ok is false for anonymous callers.
func TrustContextFrom(ctx context.Context) (TrustContext, bool) {
	tc, ok := ctx.Value(contextKeyTrustContext{}).(TrustContext)
	if !ok || tc.SubjectID.IsNil() {
		return TrustContext{}, false
	}
	return tc, true
}

func WithClientMetadata(ctx context.Context, md ClientMetadata) context.Context {
	return context.WithValue(ctx, contextKeyClientMetadata{}, md)
}

// Client returns the connection metadata, zero-valued outside an HTTP request.
func Client(ctx context.Context) ClientMetadata {
	md, _ := ctx.Value(contextKeyClientMetadata{}).(ClientMetadata)
	return md
}
