package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/schoolsite/portal-backend/internal/access"
	"github.com/schoolsite/portal-backend/internal/middleware"
	"github.com/schoolsite/portal-backend/internal/response"
	"github.com/schoolsite/portal-backend/internal/service"
	ws "github.com/schoolsite/portal-backend/internal/websocket"
)

// WSHandler streams auth-state changes to connected clients.
type WSHandler struct {
	authService *service.AuthService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(authService *service.AuthService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		authService: authService,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    ws.NewUpgrader(allowedOrigins),
	}
}

// AuthEvents godoc
// WS /ws/v1/auth/events?token=
// Pushes SIGNED_IN, SIGNED_OUT, and TOKEN_REFRESHED for the caller's principal,
// each with the navigation decision for the client's last reported path.
func (h *WSHandler) AuthEvents(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	sub := h.authService.SubscribeEvents(ctx, userID)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		h.log.Error().Err(err).Msg("Auth event subscription failed")
		ws.WriteError(conn, "subscription failed")
		return
	}

	wsLog := h.log.With().Str("user_id", userID.String()).Logger()
	wsLog.Debug().Msg("Auth event client connected")

	if err := ws.WriteTyped(conn, ws.ReadyResponse{Event: ws.EventReady, UserID: userID.String()}); err != nil {
		return
	}

	// gorilla connections allow one writer, so reads are funneled back here.
	incoming := make(chan ws.RequestEnvelope)
	done := make(chan struct{})
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		defer close(done)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			select {
			case incoming <- msg:
			case <-quit:
				return
			}
		}
	}()

	state := newSocketSession()
	events := sub.Channel()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case msg := <-incoming:
			switch msg.Action {
			case ws.ActionNavigate:
				if gr := state.navigate(msg.Path, msg.Handshake); gr != nil {
					if err := ws.WriteTyped(conn, gr); err != nil {
						return
					}
				}
			case ws.ActionPing:
				if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
					return
				}
			default:
				if err := ws.WriteError(conn, "unknown action: "+string(msg.Action)); err != nil {
					return
				}
			}
		case m, ok := <-events:
			if !ok {
				return
			}
			var evt service.AuthEventMessage
			if err := json.Unmarshal([]byte(m.Payload), &evt); err != nil {
				wsLog.Warn().Err(err).Msg("Malformed auth event")
				continue
			}
			decision, gr := state.apply(evt.Event)
			ts := evt.Timestamp
			if ts == 0 {
				ts = time.Now().Unix()
			}
			if err := ws.WriteTyped(conn, ws.AuthStateResponse{
				Event:     ws.EventAuthState,
				AuthEvent: evt.Event,
				Decision:  decision,
				Timestamp: ts,
			}); err != nil {
				return
			}
			if gr != nil {
				if err := ws.WriteTyped(conn, gr); err != nil {
					return
				}
			}
		}
	}
}

// socketSession is one socket's view of the session: the last reported path
// and the guard of a protected path still waiting for a session.
type socketSession struct {
	present   bool
	lastPath  string
	guard     *access.Guard
	guardPath string
}

// newSocketSession starts from the session the socket was opened with.
func newSocketSession() *socketSession {
	return &socketSession{present: true, lastPath: access.DashboardRoot}
}

// navigate records the client's path and, for a protected path, runs a fresh
// guard against the current session.
func (s *socketSession) navigate(path string, handshake bool) *ws.GuardResponse {
	if path == "" {
		return nil
	}
	s.lastPath = path
	s.guard = nil
	if !access.InDashboard(path) {
		return nil
	}

	g := access.NewGuard()
	st := g.Start(s.present, handshake)
	if !g.Terminal() {
		s.guard, s.guardPath = g, path
	}
	return &ws.GuardResponse{Event: ws.EventGuard, Path: path, State: st}
}

// apply folds an auth event into the session, returning the navigation for
// the last path and, when the event settles a waiting guard, its final state.
func (s *socketSession) apply(event access.AuthEvent) (access.NavigationDecision, *ws.GuardResponse) {
	s.present = event != access.EventSignedOut
	decision := access.Resolve(access.NavigationState{
		Path:           s.lastPath,
		Event:          event,
		SessionPresent: s.present,
	})
	if decision.RedirectTo != "" {
		s.lastPath = decision.RedirectTo
	}

	var gr *ws.GuardResponse
	if s.guard != nil {
		st := s.guard.Observe(event, s.present)
		if s.guard.Terminal() {
			gr = &ws.GuardResponse{Event: ws.EventGuard, Path: s.guardPath, State: st}
			s.guard = nil
		}
	}
	return decision, gr
}
