package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/joseph-ayodele/quote-compare/internal/common"
)

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestStaticToken(t *testing.T) {
	v := NewStaticToken("s3cret")
	ctx := context.Background()
	if sub, err := v.Verify(ctx, "s3cret"); err != nil || sub != "static" {
		t.Fatalf("valid token: %q, %v", sub, err)
	}
	for _, tok := range []string{"", "s3cre", "s3cret ", "other"} {
		if _, err := v.Verify(ctx, tok); !errors.Is(err, common.ErrUnauthorized) {
			t.Errorf("Verify(%q) = %v, want ErrUnauthorized", tok, err)
		}
	}
}

func TestBcryptToken(t *testing.T) {
	hash, err := HashToken("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	v, err := NewBcryptToken(hash)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := v.Verify(context.Background(), "s3cret"); err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	if _, err := v.Verify(context.Background(), "nope"); !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("err = %v", err)
	}
	if _, err := NewBcryptToken("plain"); common.CodeOf(err) != common.CodeConfig {
		t.Fatalf("bad hash err = %v", err)
	}
}

func TestJWTVerifier(t *testing.T) {
	v := NewJWTVerifier("key")
	exp := time.Now().Add(time.Hour).Unix()

	good := sign(t, jwt.SigningMethodHS256, []byte("key"), jwt.MapClaims{"sub": "broker-7", "exp": exp})
	if sub, err := v.Verify(context.Background(), good); err != nil || sub != "broker-7" {
		t.Fatalf("valid jwt: %q, %v", sub, err)
	}

	tests := map[string]string{
		"wrong key": sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"exp": exp}),
		"expired":   sign(t, jwt.SigningMethodHS256, []byte("key"), jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()}),
		"no expiry": sign(t, jwt.SigningMethodHS256, []byte("key"), jwt.MapClaims{"sub": "x"}),
		"hs512":     sign(t, jwt.SigningMethodHS512, []byte("key"), jwt.MapClaims{"exp": exp}),
		"not a jwt": "abc.def.ghi",
		"empty":     "",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := v.Verify(context.Background(), tok); !errors.Is(err, common.ErrUnauthorized) {
				t.Fatalf("err = %v, want ErrUnauthorized", err)
			}
		})
	}
}

func TestFromConfig(t *testing.T) {
	v, err := FromConfig(common.AuthConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := v.Verify(context.Background(), ""); err != nil {
		t.Fatalf("open config rejected: %v", err)
	}

	v, err = FromConfig(common.AuthConfig{StaticToken: "tok", JWTSecret: "key"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := v.(Chain); !ok {
		t.Fatalf("verifier = %T, want Chain", v)
	}
	jwtTok := sign(t, jwt.SigningMethodHS256, []byte("key"), jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	for _, tok := range []string{"tok", jwtTok} {
		if _, err := v.Verify(context.Background(), tok); err != nil {
			t.Errorf("Verify(%q): %v", tok, err)
		}
	}
	if _, err := v.Verify(context.Background(), "bad"); !errors.Is(err, common.ErrUnauthorized) {
		t.Errorf("bad token err = %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"":             "",
	}
	for in, want := range tests {
		if got := BearerToken(in); got != want {
			t.Errorf("BearerToken(%q) = %q, want %q", in, got, want)
		}
	}
}
