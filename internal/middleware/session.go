package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/schoolsite/portal-backend/internal/access"
	"github.com/schoolsite/portal-backend/internal/response"
	"github.com/schoolsite/portal-backend/internal/service"
)

// HeaderTokenFragment is sent by clients whose URL still carries an
// access_token fragment, which browsers never forward to the server.
const HeaderTokenFragment = "X-Auth-Token-Fragment"

type accessResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID, email string) (*access.AuthContext, error)
}

// RequireSession guards dashboard routes. Handlers behind it only run once a
// session is established; the resolved AuthContext is attached to the request.
func RequireSession(auth sessionValidator, resolver accessResolver, log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "route_guard").Logger()

	return func(c *gin.Context) {
		claims, failure := checkSession(c, auth)

		handshake := access.HandshakeInFlight(c.Query("code"), c.GetHeader(HeaderTokenFragment) != "")
		guard := access.NewGuard()

		switch guard.Start(claims != nil, handshake) {
		case access.GuardAuthenticated:
			userID, _ := claims.UserID()
			ac, err := resolver.Resolve(c.Request.Context(), userID, claims.Email)
			if err != nil {
				log.Error().Err(err).Str("user_id", claims.Subject).Msg("Resolve access context failed")
				response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
				return
			}
			c.Set(ContextKeyClaims, claims)
			c.Set(ContextKeyAuth, ac)
			c.Next()

		case access.GuardRedirecting:
			if wantsHTML(c) {
				c.Redirect(http.StatusSeeOther, access.PublicRoot)
				c.Abort()
				return
			}
			response.AbortFail(c, http.StatusUnauthorized, failure)

		default:
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionPending)
		}
	}
}

// checkSession runs the direct session check. It returns nil claims and the
// reason code when no live session exists.
func checkSession(c *gin.Context, auth sessionValidator) (*service.Claims, response.ErrCode) {
	tokenStr := BearerToken(c)
	if tokenStr == "" {
		return nil, response.ErrTokenRequired
	}
	claims, err := auth.ValidateToken(tokenStr)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, response.ErrTokenExpired
		}
		return nil, response.ErrTokenInvalid
	}
	if err := auth.ValidateSession(c.Request.Context(), claims); err != nil {
		return nil, response.ErrSessionRevoked
	}
	return claims, ""
}

func wantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
