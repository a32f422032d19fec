// AngelaMos | 2026
// jwt_test.go

package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/ristan-marine/catalog-api/internal/core"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, secret string, exp time.Time, claims map[string]any) string {
	t.Helper()

	b := jwt.NewBuilder().
		Subject("u-1").
		Audience([]string{"authenticated"}).
		IssuedAt(time.Now().Add(-time.Minute)).
		Expiration(exp)
	for k, v := range claims {
		b = b.Claim(k, v)
	}

	tok, err := b.Build()
	if err != nil {
		t.Fatalf("build token: %v", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), []byte(secret)))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return string(signed)
}

func TestLocalVerifier(t *testing.T) {
	v := NewLocalVerifier(testSecret)

	t.Run("valid admin token", func(t *testing.T) {
		tok := signToken(t, testSecret, time.Now().Add(time.Hour), map[string]any{
			"email":         "admin@ristan.kr",
			"app_metadata":  map[string]any{"role": "admin"},
			"user_metadata": map[string]any{"full_name": "Admin Kim"},
		})

		id, err := v.Verify(context.Background(), tok)
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if id.ID != "u-1" || id.Email != "admin@ristan.kr" {
			t.Errorf("identity = %+v", id)
		}
		if !id.IsAdmin() {
			t.Errorf("Role = %q, want admin", id.Role)
		}
		if id.Metadata.FullName != "Admin Kim" {
			t.Errorf("FullName = %q", id.Metadata.FullName)
		}
	})

	t.Run("no role claim is user", func(t *testing.T) {
		tok := signToken(t, testSecret, time.Now().Add(time.Hour), nil)

		id, err := v.Verify(context.Background(), tok)
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if id.Role != RoleUser {
			t.Errorf("Role = %q, want user", id.Role)
		}
	})

	rejected := []struct {
		name  string
		token string
	}{
		{"expired", signToken(t, testSecret, time.Now().Add(-time.Hour), nil)},
		{"wrong secret", signToken(t, "another-secret-another-secret-another", time.Now().Add(time.Hour), nil)},
		{"garbage", "not.a.jwt"},
		{"empty", ""},
	}

	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token)
			if err == nil {
				t.Fatal("Verify() error = nil, want rejection")
			}
			if !errors.Is(err, core.ErrTokenInvalid) && !errors.Is(err, core.ErrTokenExpired) {
				t.Errorf("error = %v, want token error", err)
			}
		})
	}
}
