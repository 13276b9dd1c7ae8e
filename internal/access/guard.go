package access

// GuardState is the state of a protected route while its session is resolved.
type GuardState string

const (
	GuardChecking      GuardState = "checking"
	GuardAuthenticated GuardState = "authenticated"
	GuardRedirecting   GuardState = "redirecting"
)

// AuthEvent is an auth-state change emitted by the session layer.
type AuthEvent string

const (
	EventNone           AuthEvent = ""
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// Guard gates a protected subtree until session status is known.
// A guard left in checking has no deadline; callers decide how long to wait.
type Guard struct {
	state GuardState
}

// NewGuard returns a guard in the checking state.
func NewGuard() *Guard {
	return &Guard{state: GuardChecking}
}

// State returns the current state.
func (g *Guard) State() GuardState { return g.state }

// Terminal reports whether the guard has settled.
func (g *Guard) Terminal() bool { return g.state != GuardChecking }

// Start applies the initial direct session check.
// With no session and no handshake in flight the guard redirects immediately.
func (g *Guard) Start(sessionPresent, handshakeInFlight bool) GuardState {
	if g.Terminal() {
		return g.state
	}
	switch {
	case sessionPresent:
		g.state = GuardAuthenticated
	case !handshakeInFlight:
		g.state = GuardRedirecting
	}
	return g.state
}

// Observe feeds an auth-state event to a checking guard.
func (g *Guard) Observe(event AuthEvent, sessionPresent bool) GuardState {
	if g.Terminal() {
		return g.state
	}
	if sessionPresent && event != EventSignedOut {
		g.state = GuardAuthenticated
	}
	return g.state
}

// HandshakeInFlight reports whether an OAuth/PKCE completion is underway,
// detected by an authorization code query or an access token fragment.
func HandshakeInFlight(code string, hasTokenFragment bool) bool {
	return code != "" || hasTokenFragment
}
