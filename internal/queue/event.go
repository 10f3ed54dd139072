// Package queue contains the auth audit trail: handlers publish events to
// RabbitMQ and a background consumer appends them to logs/auth.log.
package queue

// Audit event types.
const (
	EventRegister   = "user.registered"
	EventLogin      = "user.login"
	EventLogout     = "user.logout"
	EventDeactivate = "user.deactivated"
	EventReactivate = "user.reactivated"
)

// AuthEvent is the payload published for every security-relevant account
// action.  It never carries passwords or token strings.
type AuthEvent struct {
	Type       string `json:"type"`
	UserID     uint64 `json:"user_id"`
	Email      string `json:"email"`
	ClientIP   string `json:"client_ip,omitempty"`
	OccurredAt string `json:"occurred_at"` // RFC 3339 UTC
}
