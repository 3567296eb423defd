package auth

import (
	"fmt"
	"time"

	"github.com/nerrad567/gray-motion-core/internal/infrastructure/config"
)

// Token is an issued operator token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	ExpiresIn   int       `json:"expires_in"`
}

// Authenticator checks the operator password and issues and verifies tokens.
// It is safe for concurrent use.
type Authenticator struct {
	rigID  string
	secret string
	hash   string
	ttl    time.Duration
	now    func() time.Time
}

// New creates an Authenticator for one rig. Tokens issued for one rig are
// rejected by another even when they share a secret.
func New(rigID string, cfg config.APIAuthConfig) (*Authenticator, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: jwt secret is empty", ErrMisconfigured)
	}
	if _, err := parsePHC(cfg.OperatorPasswordHash); err != nil {
		return nil, fmt.Errorf("%w: operator password hash: %w", ErrMisconfigured, err)
	}
	ttl := time.Duration(cfg.TokenTTL) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Authenticator{
		rigID:  rigID,
		secret: cfg.JWTSecret,
		hash:   cfg.OperatorPasswordHash,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Login exchanges the operator password for a token.
func (a *Authenticator) Login(password string) (*Token, error) {
	ok, err := VerifyPassword(password, a.hash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	now := a.now()
	signed, err := issueToken(a.rigID, a.secret, now, a.ttl)
	if err != nil {
		return nil, err
	}
	return &Token{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   now.Add(a.ttl).UTC(),
		ExpiresIn:   int(a.ttl.Seconds()),
	}, nil
}

// Verify validates a raw token string.
func (a *Authenticator) Verify(raw string) (*Claims, error) {
	return parseToken(raw, a.rigID, a.secret, a.now())
}
