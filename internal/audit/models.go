package audit

import "time"

// Event is emitted from domain logic to capture key identity actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Action    string    `json:"action"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Device    string    `json:"device,omitempty"`
	ActorID   string    `json:"actor_id,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	EventUserCreated     AuditEvent = "user_created"
	EventLoginSucceeded  AuditEvent = "login_succeeded"
	EventAuthFailed      AuditEvent = "auth_failed"
	EventPasswordChanged AuditEvent = "password_changed"
	EventRoleChanged     AuditEvent = "role_changed"
)
