package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an account known to the auth collaborator.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile holds the display data of a principal.
type Profile struct {
	UserID    uuid.UUID `json:"user_id"`
	FullName  string    `json:"full_name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Principal is the admin view of a user: identity, profile, and access rows.
type Principal struct {
	UserID      uuid.UUID        `json:"user_id"`
	Email       string           `json:"email"`
	FullName    string           `json:"full_name"`
	HasAccount  bool             `json:"has_account"`
	Roles       []RoleAssignment `json:"roles"`
	Permissions []Permission     `json:"permissions"`
}

// HasPendingRole reports whether any role row still awaits approval.
func (p Principal) HasPendingRole() bool {
	for _, r := range p.Roles {
		if !r.Approved {
			return true
		}
	}
	return false
}

// SignUpRequest is the payload for email/password registration.
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	FullName string `json:"full_name" binding:"required,min=2,max=150"`
	Role     string `json:"role" binding:"required,oneof=teacher student guardian"`
}

// SignInRequest is the payload for email/password sign-in.
// When CodeChallenge is set the response carries a PKCE authorization code instead of a token.
type SignInRequest struct {
	Email               string `json:"email" binding:"required,email,max=255"`
	Password            string `json:"password" binding:"required,min=6,max=128"`
	CodeChallenge       string `json:"code_challenge" binding:"omitempty,min=43,max=128"`
	CodeChallengeMethod string `json:"code_challenge_method" binding:"omitempty,oneof=S256"`
}

// TokenExchangeRequest is the payload for the PKCE code exchange.
type TokenExchangeRequest struct {
	Code         string `json:"code" binding:"required"`
	CodeVerifier string `json:"code_verifier" binding:"required,min=43,max=128"`
}

// Session is an issued access token and its principal.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

// UpdateProfileRequest is the payload for editing one's own profile.
type UpdateProfileRequest struct {
	FullName  string  `json:"full_name" binding:"required,min=2,max=150"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,url"`
}

// ResolveEmailsRequest is the payload of the privileged id → email lookup.
type ResolveEmailsRequest struct {
	UserIDs []string `json:"user_ids" binding:"required,min=1,max=500,dive,uuid"`
}
