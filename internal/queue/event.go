// Package queue defines message payloads exchanged over the message broker.
package queue

// Event kinds published by the auth service.
const (
	EventUserRegistered     = "user.registered"
	EventUserLoggedIn       = "user.logged_in"
	EventSessionReuse       = "session.reuse_detected"
	EventSessionsRevokedAll = "sessions.revoked_all"
)

// SecurityEvent is published on the security.events queue whenever
// something auth-relevant happens. It carries enough information for
// downstream consumers to alert or audit without querying the primary
// database. Raw tokens and password material never appear here.
type SecurityEvent struct {
	Kind       string `json:"kind"`
	UserID     uint64 `json:"user_id"`
	Email      string `json:"email,omitempty"`
	IP         string `json:"ip,omitempty"`
	OccurredAt string `json:"occurred_at"` // ISO-8601 UTC
}
