package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/tasksync/pkg/httpcontext"
)

const secret = "test-secret"

func signed(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func run(token string, issuer string) (*fasthttp.RequestCtx, string) {
	var seen string
	handler := JWTAuth(secret, issuer, nil)(func(ctx *fasthttp.RequestCtx) {
		seen = httpcontext.UserID(ctx)
	})
	ctx := &fasthttp.RequestCtx{}
	if token != "" {
		ctx.Request.Header.Set("Authorization", "Bearer "+token)
	}
	handler(ctx)
	return ctx, seen
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	token := signed(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
		"user_id": "u1",
		"iss":     "tasksync",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	ctx, seen := run(token, "tasksync")
	if seen != "u1" {
		t.Fatalf("expected user u1, got %q (status %d)", seen, ctx.Response.StatusCode())
	}
}

func TestJWTAuthRejects(t *testing.T) {
	cases := map[string]string{
		"missing":      "",
		"wrong secret": signed(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"user_id": "u1"}),
		"expired": signed(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
			"user_id": "u1",
			"exp":     time.Now().Add(-time.Hour).Unix(),
		}),
		"no user":      signed(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "u1"}),
		"wrong issuer": signed(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"user_id": "u1", "iss": "other"}),
	}
	for name, token := range cases {
		ctx, seen := run(token, "tasksync")
		if seen != "" || ctx.Response.StatusCode() != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d (user %q)", name, ctx.Response.StatusCode(), seen)
		}
	}
}
