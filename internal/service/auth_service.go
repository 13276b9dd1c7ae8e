package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/schoolsite/portal-backend/internal/access"
	"github.com/schoolsite/portal-backend/internal/config"
	"github.com/schoolsite/portal-backend/internal/model"
	"github.com/schoolsite/portal-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionRevoked     = errors.New("session revoked")
	ErrInvalidAuthCode    = errors.New("invalid or expired authorization code")
	ErrEmailTaken         = errors.New("email already registered")
	ErrRoleNotAllowed     = errors.New("role cannot be requested at sign-up")
)

// Claims extends JWT standard claims with the principal's email.
// Subject carries the user id.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// UserID parses the subject as a UUID.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// AuthEventMessage is published on a principal's auth event channel.
type AuthEventMessage struct {
	Event     access.AuthEvent `json:"event"`
	UserID    string           `json:"user_id"`
	Timestamp int64            `json:"timestamp"`
}

// accountStore is the persistence AuthService needs.
type accountStore interface {
	CreateAccount(ctx context.Context, acc repository.NewAccount) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// pendingCode is the Redis value behind a PKCE authorization code.
type pendingCode struct {
	UserID    string `json:"user_id"`
	Challenge string `json:"challenge"`
}

// AuthService handles authentication, JWT sessions, PKCE codes, and auth events.
type AuthService struct {
	cfg   *config.Config
	rdb   *redis.Client
	users accountStore
	log   zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client, users accountStore, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:   cfg,
		rdb:   rdb,
		users: users,
		log:   log.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// SignUp registers an account with a profile and a pending role row.
func (s *AuthService) SignUp(ctx context.Context, req *model.SignUpRequest) (*model.User, error) {
	role, err := model.ParseRole(req.Role)
	if err != nil || !role.SelfRegistrable() {
		return nil, ErrRoleNotAllowed
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateAccount(ctx, repository.NewAccount{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         role,
		Approved:     false,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID.String()).Str("role", string(role)).Msg("Principal signed up, role pending approval")
	return user, nil
}

// Authenticate checks email and password.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}
	return user, nil
}

// SignIn authenticates and issues a session token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.IssueSession(ctx, user)
}

// IssueAuthCode authenticates and returns a one-time code bound to an S256 challenge.
func (s *AuthService) IssueAuthCode(ctx context.Context, email, password, challenge string) (string, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}

	code, err := randomToken(32)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	payload, err := json.Marshal(pendingCode{UserID: user.ID.String(), Challenge: challenge})
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, config.CacheKey.AuthCodeKey(code), payload, s.cfg.AuthCodeTTL).Err(); err != nil {
		return "", fmt.Errorf("store auth code: %w", err)
	}
	return code, nil
}

// ExchangeCode redeems a PKCE authorization code. Codes are single use.
func (s *AuthService) ExchangeCode(ctx context.Context, code, verifier string) (*model.Session, error) {
	raw, err := s.rdb.GetDel(ctx, config.CacheKey.AuthCodeKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrInvalidAuthCode
		}
		return nil, fmt.Errorf("load auth code: %w", err)
	}

	var pending pendingCode
	if err := json.Unmarshal(raw, &pending); err != nil {
		return nil, ErrInvalidAuthCode
	}
	if !VerifyPKCE(verifier, pending.Challenge) {
		return nil, ErrInvalidAuthCode
	}

	userID, err := uuid.Parse(pending.UserID)
	if err != nil {
		return nil, ErrInvalidAuthCode
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidAuthCode
		}
		return nil, err
	}
	return s.IssueSession(ctx, user)
}

// IssueSession signs a JWT, registers its JTI in Redis, and announces SIGNED_IN.
func (s *AuthService) IssueSession(ctx context.Context, user *model.User) (*model.Session, error) {
	return s.issue(ctx, user, access.EventSignedIn)
}

func (s *AuthService) issue(ctx context.Context, user *model.User, event access.AuthEvent) (*model.Session, error) {
	jti := uuid.New().String()
	now := time.Now()
	expiresAt := now.Add(s.cfg.JWTExpiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: user.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	// Store session in Redis with same expiry as JWT.
	if err := s.rdb.Set(ctx, config.CacheKey.SessionKey(jti), user.ID.String(), s.cfg.JWTExpiry).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.PublishEvent(ctx, user.ID, event)

	return &model.Session{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        *user,
	}, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}
	return claims, nil
}

// ValidateSession checks that the token's JTI is still registered for its subject.
func (s *AuthService) ValidateSession(ctx context.Context, claims *Claims) error {
	stored, err := s.rdb.Get(ctx, config.CacheKey.SessionKey(claims.ID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrSessionRevoked
		}
		return fmt.Errorf("check session: %w", err)
	}
	if stored != claims.Subject {
		return ErrSessionRevoked
	}
	return nil
}

// Refresh rotates a live session into a new token and revokes the old one.
func (s *AuthService) Refresh(ctx context.Context, claims *Claims) (*model.Session, error) {
	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.rdb.Del(ctx, config.CacheKey.SessionKey(claims.ID)).Err(); err != nil {
		return nil, fmt.Errorf("revoke session: %w", err)
	}
	return s.issue(ctx, user, access.EventTokenRefreshed)
}

// SignOut revokes the session and announces SIGNED_OUT.
func (s *AuthService) SignOut(ctx context.Context, claims *Claims) error {
	if err := s.rdb.Del(ctx, config.CacheKey.SessionKey(claims.ID)).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if userID, err := claims.UserID(); err == nil {
		s.PublishEvent(ctx, userID, access.EventSignedOut)
	}
	return nil
}

// PublishEvent fans an auth-state change out to the principal's subscribers.
// Delivery is best effort.
func (s *AuthService) PublishEvent(ctx context.Context, userID uuid.UUID, event access.AuthEvent) {
	payload, _ := json.Marshal(AuthEventMessage{
		Event:     event,
		UserID:    userID.String(),
		Timestamp: time.Now().UnixMilli(),
	})
	if err := s.rdb.Publish(ctx, config.CacheKey.AuthEventsChannel(userID.String()), payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID.String()).Str("event", string(event)).Msg("Publish auth event failed")
	}
}

// SubscribeEvents opens a subscription to a principal's auth events.
func (s *AuthService) SubscribeEvents(ctx context.Context, userID uuid.UUID) *redis.PubSub {
	return s.rdb.Subscribe(ctx, config.CacheKey.AuthEventsChannel(userID.String()))
}

// VerifyPKCE checks BASE64URL(SHA256(verifier)) against an S256 challenge.
func VerifyPKCE(verifier, challenge string) bool {
	sum := sha256.Sum256([]byte(verifier))
	computed := base64.RawURLEncoding.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) == 1
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
