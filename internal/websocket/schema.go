package websocket

import "github.com/schoolsite/portal-backend/internal/access"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	// ActionNavigate reports the client's current path so decisions can be computed for it.
	ActionNavigate Action = "navigate"
	ActionPing     Action = "ping"
)

// RequestEnvelope is every client message.
type RequestEnvelope struct {
	Action Action `json:"action"`
	Path   string `json:"path,omitempty"`
	// Handshake is set while the client holds an authorization code or token fragment.
	Handshake bool `json:"handshake,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventReady     Event = "ready"
	EventAuthState Event = "auth_state"
	EventError     Event = "error"
	EventPong      Event = "pong"
	EventGuard     Event = "guard"
)

// ReadyResponse is sent once the subscription is live.
type ReadyResponse struct {
	Event  Event  `json:"event"`
	UserID string `json:"user_id"`
}

// AuthStateResponse carries an auth-state change with the navigation the
// client should apply for its last reported path.
type AuthStateResponse struct {
	Event     Event                     `json:"event"`
	AuthEvent access.AuthEvent          `json:"auth_event"`
	Decision  access.NavigationDecision `json:"decision"`
	Timestamp int64                     `json:"timestamp"`
}

// GuardResponse reports the guard state of a protected path. A path left in
// checking gets a second response once an auth event settles it.
type GuardResponse struct {
	Event Event             `json:"event"`
	Path  string            `json:"path"`
	State access.GuardState `json:"state"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
