package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/schoolsite/portal-backend/internal/access"
	"github.com/schoolsite/portal-backend/internal/config"
	"github.com/schoolsite/portal-backend/internal/middleware"
	"github.com/schoolsite/portal-backend/internal/model"
	"github.com/schoolsite/portal-backend/internal/response"
	"github.com/schoolsite/portal-backend/internal/service"
	"github.com/schoolsite/portal-backend/internal/validator"
)

// VerifierCookie holds the PKCE code verifier between sign-in and the browser callback.
const VerifierCookie = "pkce_verifier"

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	cfg         *config.Config
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, cfg *config.Config, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

// failAuth maps auth service errors to the response envelope.
func failAuth(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	case errors.Is(err, service.ErrInvalidAuthCode):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidAuthCode)
	case errors.Is(err, service.ErrEmailTaken):
		response.Fail(c, http.StatusConflict, response.ErrEmailTaken)
	case errors.Is(err, service.ErrRoleNotAllowed):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"role": "role cannot be requested at sign-up"})
	case errors.Is(err, service.ErrSessionRevoked):
		response.Fail(c, http.StatusUnauthorized, response.ErrSessionRevoked)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// SignUp godoc
// POST /api/v1/auth/sign-up
// Registers an account whose requested role waits for admin approval.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req model.SignUpRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.authService.SignUp(c.Request.Context(), &req)
	if err != nil {
		failAuth(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user":   user,
		"role":   req.Role,
		"status": model.ApprovalPending,
	})
}

// SignIn godoc
// POST /api/v1/auth/sign-in
// Returns a session token, or a one-time authorization code when a PKCE
// challenge is supplied.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req model.SignInRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if req.CodeChallenge != "" {
		code, err := h.authService.IssueAuthCode(c.Request.Context(), req.Email, req.Password, req.CodeChallenge)
		if err != nil {
			failAuth(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{
			"code":       code,
			"expires_in": int(h.cfg.AuthCodeTTL.Seconds()),
		})
		return
	}

	session, err := h.authService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failAuth(c, err)
		return
	}
	response.Success(c, http.StatusOK, session)
}

// ExchangeToken godoc
// POST /api/v1/auth/token
// Redeems a PKCE authorization code for a session token.
func (h *AuthHandler) ExchangeToken(c *gin.Context) {
	var req model.TokenExchangeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.authService.ExchangeCode(c.Request.Context(), req.Code, req.CodeVerifier)
	if err != nil {
		failAuth(c, err)
		return
	}
	response.Success(c, http.StatusOK, session)
}

// GetSession godoc
// GET /api/v1/auth/session
// Returns the current session, or null when there is none.
func (h *AuthHandler) GetSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Success(c, http.StatusOK, gin.H{"session": nil})
		return
	}

	session := gin.H{
		"user_id": claims.Subject,
		"email":   claims.Email,
	}
	if claims.ExpiresAt != nil {
		session["expires_at"] = claims.ExpiresAt.Time
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// SignOut godoc
// POST /api/v1/auth/sign-out
// Revokes the current session.
func (h *AuthHandler) SignOut(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.SignOut(c.Request.Context(), claims); err != nil {
		h.log.Error().Err(err).Str("user_id", claims.Subject).Msg("Sign-out failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// Refresh godoc
// POST /api/v1/auth/refresh
// Rotates the current session into a fresh token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	session, err := h.authService.Refresh(c.Request.Context(), claims)
	if err != nil {
		failAuth(c, err)
		return
	}
	response.Success(c, http.StatusOK, session)
}

// Me godoc
// GET /api/v1/auth/me
// Returns the caller's access context and the dashboard tiles it unlocks.
func (h *AuthHandler) Me(c *gin.Context) {
	ac := middleware.GetAuth(c)
	if ac == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user_id":     ac.UserID,
		"email":       ac.Email,
		"role":        ac.Role,
		"permissions": ac.GrantedPermissions(),
		"tiles":       access.VisibleTiles(ac),
	})
}

// resolveRequest is the client's navigation state plus an optional verifier
// for performing the code exchange server-side.
type resolveRequest struct {
	State        access.NavigationState `json:"state"`
	CodeVerifier string                 `json:"code_verifier" binding:"omitempty,min=43,max=128"`
}

// Resolve godoc
// POST /api/v1/auth/resolve
// Tells the client how to reconcile its URL with its session.
func (h *AuthHandler) Resolve(c *gin.Context) {
	var req resolveRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	state := req.State
	if state.Path == "" {
		state.Path = access.PublicRoot
	}
	if middleware.GetClaims(c) != nil {
		state.SessionPresent = true
	}

	decision := access.Resolve(state)
	if decision.ExchangeCode == "" || req.CodeVerifier == "" {
		response.Success(c, http.StatusOK, gin.H{"decision": decision})
		return
	}

	session, err := h.authService.ExchangeCode(c.Request.Context(), decision.ExchangeCode, req.CodeVerifier)
	if err != nil {
		// Exchange failures are logged, never surfaced to the visitor.
		h.log.Warn().Err(err).Msg("Code exchange failed")
		response.Success(c, http.StatusOK, gin.H{"decision": access.AfterExchange(decision, false)})
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"decision": access.AfterExchange(decision, true),
		"session":  session,
	})
}

// Callback godoc
// GET /auth/callback?code=&error=
// Browser landing for the PKCE redirect. Exchanges the code with the verifier
// cookie and sends the browser to the dashboard with the token in the fragment.
func (h *AuthHandler) Callback(c *gin.Context) {
	decision := access.Resolve(access.NavigationState{
		Path:  c.Request.URL.Path,
		Code:  c.Query("code"),
		Error: c.Query("error"),
	})

	verifier, _ := c.Cookie(VerifierCookie)
	c.SetCookie(VerifierCookie, "", -1, "/", "", h.cfg.IsProduction(), true)

	home := strings.TrimRight(h.cfg.FrontendBaseURL, "/")
	if decision.ExchangeCode == "" || verifier == "" {
		c.Redirect(http.StatusSeeOther, home+access.PublicRoot)
		return
	}

	session, err := h.authService.ExchangeCode(c.Request.Context(), decision.ExchangeCode, verifier)
	final := access.AfterExchange(decision, err == nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("Callback code exchange failed")
		c.Redirect(http.StatusSeeOther, home+access.PublicRoot)
		return
	}

	fragment := url.Values{}
	fragment.Set("access_token", session.AccessToken)
	fragment.Set("token_type", strings.ToLower(session.TokenType))
	fragment.Set("expires_in", strconv.Itoa(int(time.Until(session.ExpiresAt).Seconds())))
	c.Redirect(http.StatusSeeOther, home+final.RedirectTo+"#"+fragment.Encode())
}
