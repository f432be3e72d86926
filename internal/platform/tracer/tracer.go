// Package tracer is a small tracing seam over OpenTelemetry so services
// emit spans without importing OTel APIs directly.
//
// Implementations:
//   - NoopTracer: tests and CLI tools
//   - OTelTracer: global OpenTelemetry provider
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once, typically via defer.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashEmail returns a short SHA-256 digest of a normalized email so traces
// can be correlated without carrying the address itself.
func HashEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(email))
	return hex.EncodeToString(hash[:8])
}

// Span names used by the auth module.
const (
	SpanLogin          = "auth.login"
	SpanSignup         = "auth.signup"
	SpanCurrentUser    = "auth.current_user"
	SpanChangePassword = "auth.change_password"
	SpanSetRole        = "admin.set_role"
)

// Attribute keys used by the auth module.
const (
	AttrEmailHash = "user.email_hash"
	AttrUserID    = "user.id"
	AttrRole      = "user.role"
	AttrOutcome   = "auth.outcome"
)
