// Package session issues and validates anonymous dashboard session tokens.
//
// A session stands in for per-browser storage:
// preferences are keyed by the session id carried in the token subject.
// Tokens are HS256 JWTs with a 30 day lifetime and are never refreshed;
// an expired session simply starts over with default preferences.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultTTL is how long a session token is valid.
	DefaultTTL = 30 * 24 * time.Hour

	// IDPrefix marks session identifiers.
	IDPrefix = "ses_"

	issuer   = "skydial"
	audience = "skydial-dashboard"
)

// Session token errors.
var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrTokenExpired = errors.New("session token has expired")
	ErrNoSigningKey = errors.New("session signing key is empty")
)

// Claims are the JWT claims of a session token.
type Claims struct {
	jwt.RegisteredClaims
}

// Token is an issued session.
type Token struct {
	SessionID string    `json:"sessionId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Config holds configuration for the session service.
type Config struct {
	SigningKey string
	TTL        time.Duration
}

// Service signs and validates session tokens.
type Service struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

// NewService creates a session service.
func NewService(cfg Config) (*Service, error) {
	if cfg.SigningKey == "" {
		return nil, ErrNoSigningKey
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Service{
		signingKey: []byte(cfg.SigningKey),
		ttl:        cfg.TTL,
		now:        time.Now,
	}, nil
}

// NewID returns a fresh session identifier.
func NewID() string {
	return IDPrefix + uuid.NewString()
}

// Issue creates a token for a new session.
func (s *Service) Issue() (*Token, error) {
	return s.IssueFor(NewID())
}

// IssueFor creates a token for an existing session id, extending it.
func (s *Service) IssueFor(sessionID string) (*Token, error) {
	if !strings.HasPrefix(sessionID, IDPrefix) {
		return nil, fmt.Errorf("%w: bad session id %q", ErrInvalidToken, sessionID)
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   sessionID,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return nil, fmt.Errorf("signing session token: %w", err)
	}

	return &Token{SessionID: sessionID, Token: signed, ExpiresAt: expiresAt}, nil
}

// Validate checks a token and returns its session id.
func (s *Service) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || !strings.HasPrefix(claims.Subject, IDPrefix) {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
