package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nerrad567/gray-motion-core/internal/infrastructure/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestAuthenticator(t *testing.T, password string) *Authenticator {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	a, err := New("bench", config.APIAuthConfig{
		Enabled:              true,
		JWTSecret:            testSecret,
		OperatorPasswordHash: hash,
		TokenTTL:             15,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=1$") {
		t.Errorf("hash = %q, want argon2id PHC prefix", hash)
	}

	other, err := HashPassword("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == other {
		t.Error("two hashes of the same password share a salt")
	}

	tests := []struct {
		password string
		want     bool
	}{
		{"correct-horse-battery-staple", true},
		{"wrong", false},
		{"", false},
	}
	for _, tt := range tests {
		got, err := VerifyPassword(tt.password, hash)
		if err != nil {
			t.Fatalf("VerifyPassword(%q) error = %v", tt.password, err)
		}
		if got != tt.want {
			t.Errorf("VerifyPassword(%q) = %v, want %v", tt.password, got, tt.want)
		}
	}

	if _, err := HashPassword(""); err == nil {
		t.Error("HashPassword(\"\") error = nil, want error")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"plaintext", "hunter2"},
		{"wrong algorithm", "$argon2i$v=19$m=65536,t=3,p=1$c2FsdA$aGFzaA"},
		{"wrong version", "$argon2id$v=16$m=65536,t=3,p=1$c2FsdA$aGFzaA"},
		{"bad params", "$argon2id$v=19$m=x,t=3,p=1$c2FsdA$aGFzaA"},
		{"bad salt", "$argon2id$v=19$m=65536,t=3,p=1$!!!$aGFzaA"},
		{"empty key", "$argon2id$v=19$m=65536,t=3,p=1$c2FsdA$"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := VerifyPassword("anything", tt.hash); err == nil {
				t.Error("VerifyPassword() error = nil, want error")
			}
		})
	}
}

func TestNew_Misconfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.APIAuthConfig
	}{
		{"no secret", config.APIAuthConfig{OperatorPasswordHash: "$argon2id$v=19$m=65536,t=3,p=1$c2FsdA$aGFzaA"}},
		{"bad hash", config.APIAuthConfig{JWTSecret: testSecret, OperatorPasswordHash: "hunter2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New("bench", tt.cfg); !errors.Is(err, ErrMisconfigured) {
				t.Errorf("New() error = %v, want ErrMisconfigured", err)
			}
		})
	}
}

func TestLoginAndVerify(t *testing.T) {
	a := newTestAuthenticator(t, "s3cret")

	if _, err := a.Login("wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login(wrong) error = %v, want ErrInvalidCredentials", err)
	}

	tok, err := a.Login("s3cret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if tok.TokenType != "Bearer" || tok.ExpiresIn != 15*60 {
		t.Errorf("token = %+v", tok)
	}

	claims, err := a.Verify(tok.AccessToken)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Role != RoleOperator || claims.Subject != RoleOperator {
		t.Errorf("claims = %+v", claims)
	}
	if claims.ID == "" {
		t.Error("token has no ID")
	}
}

func TestVerify_Rejects(t *testing.T) {
	a := newTestAuthenticator(t, "s3cret")
	tok, err := a.Login("s3cret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	otherRig := *a
	otherRig.rigID = "other"

	otherSecret := *a
	otherSecret.secret = strings.Repeat("x", 32)

	expired := *a
	expired.now = func() time.Time { return time.Now().Add(time.Hour) }

	tests := []struct {
		name  string
		auth  *Authenticator
		token string
	}{
		{"garbage", a, "not-a-jwt"},
		{"empty", a, ""},
		{"other rig", &otherRig, tok.AccessToken},
		{"other secret", &otherSecret, tok.AccessToken},
		{"expired", &expired, tok.AccessToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.auth.Verify(tt.token); !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("Verify() error = %v, want ErrTokenInvalid", err)
			}
		})
	}
}

func TestVerify_RejectsForeignClaims(t *testing.T) {
	a := newTestAuthenticator(t, "s3cret")
	now := time.Now()

	tests := []struct {
		name   string
		claims Claims
	}{
		{
			name: "other role",
			claims: Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					Audience:  jwt.ClaimStrings{"bench"},
					ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
				},
				Role: "viewer",
			},
		},
		{
			name: "no expiry",
			claims: Claims{
				RegisteredClaims: jwt.RegisteredClaims{Audience: jwt.ClaimStrings{"bench"}},
				Role:             RoleOperator,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tt.claims).SignedString([]byte(testSecret))
			if err != nil {
				t.Fatalf("SignedString() error = %v", err)
			}
			if _, err := a.Verify(raw); !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("Verify() error = %v, want ErrTokenInvalid", err)
			}
		})
	}
}
