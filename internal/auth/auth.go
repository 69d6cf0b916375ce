// Package auth verifies bearer tokens presented to the HTTP API.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/joseph-ayodele/quote-compare/internal/common"
)

// Verifier checks a bearer token and returns the subject it identifies.
// Rejections wrap common.ErrUnauthorized.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

func unauthorized(msg string, cause error) error {
	if cause == nil {
		cause = common.ErrUnauthorized
	} else {
		cause = fmt.Errorf("%w: %w", common.ErrUnauthorized, cause)
	}
	return common.NewAppError(common.CodeUnauthorized, msg, cause)
}

// StaticTokenVerifier accepts one shared token, held either in plain text or
// as a bcrypt hash.
type StaticTokenVerifier struct {
	token []byte
	hash  []byte
}

// NewStaticToken compares in constant time against token.
func NewStaticToken(token string) *StaticTokenVerifier {
	return &StaticTokenVerifier{token: []byte(token)}
}

// NewBcryptToken checks presented tokens against a bcrypt hash.
func NewBcryptToken(hash string) (*StaticTokenVerifier, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, common.NewAppError(common.CodeConfig, "AUTH_TOKEN_BCRYPT is not a bcrypt hash", err)
	}
	return &StaticTokenVerifier{hash: []byte(hash)}, nil
}

// HashToken produces the value for AUTH_TOKEN_BCRYPT.
func HashToken(token string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	return string(b), err
}

func (v *StaticTokenVerifier) Verify(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", unauthorized("missing bearer token", nil)
	}
	if v.hash != nil {
		if err := bcrypt.CompareHashAndPassword(v.hash, []byte(token)); err != nil {
			return "", unauthorized("invalid token", nil)
		}
		return "static", nil
	}
	if subtle.ConstantTimeCompare(v.token, []byte(token)) != 1 {
		return "", unauthorized("invalid token", nil)
	}
	return "static", nil
}

// JWTVerifier accepts HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(_ context.Context, tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", unauthorized("missing bearer token", nil)
	}
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", unauthorized("invalid token", err)
	}
	if !token.Valid {
		return "", unauthorized("invalid token", nil)
	}
	sub, _ := token.Claims.GetSubject()
	if sub == "" {
		sub = "jwt"
	}
	return sub, nil
}

// Chain tries each verifier in order and accepts the first success.
type Chain []Verifier

func (c Chain) Verify(ctx context.Context, token string) (string, error) {
	if len(c) == 0 {
		return "", unauthorized("no verifier configured", nil)
	}
	var errs []error
	for _, v := range c {
		sub, err := v.Verify(ctx, token)
		if err == nil {
			return sub, nil
		}
		errs = append(errs, err)
	}
	return "", unauthorized("invalid token", errors.Join(errs...))
}

// AllowAll disables authentication; used when no credential is configured.
type AllowAll struct{}

func (AllowAll) Verify(context.Context, string) (string, error) { return "anonymous", nil }

// FromConfig builds the verifier set described by the auth configuration.
// With nothing configured every request is accepted.
func FromConfig(cfg common.AuthConfig) (Verifier, error) {
	var chain Chain
	switch {
	case cfg.TokenBcrypt != "":
		v, err := NewBcryptToken(cfg.TokenBcrypt)
		if err != nil {
			return nil, err
		}
		chain = append(chain, v)
	case cfg.StaticToken != "":
		chain = append(chain, NewStaticToken(cfg.StaticToken))
	}
	if cfg.JWTSecret != "" {
		chain = append(chain, NewJWTVerifier(cfg.JWTSecret))
	}
	if len(chain) == 0 {
		return AllowAll{}, nil
	}
	if len(chain) == 1 {
		return chain[0], nil
	}
	return chain, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
