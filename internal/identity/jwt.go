// AngelaMos | 2026
// jwt.go

package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/ristan-marine/catalog-api/internal/config"
	"github.com/ristan-marine/catalog-api/internal/core"
)

const sessionAudience = "authenticated"

// LocalVerifier checks session tokens against the project's HS256 secret
// without a round trip to the auth service. Revoked sessions stay valid until
// their exp, so remote verification is the default.
type LocalVerifier struct {
	secret []byte
}

func NewLocalVerifier(secret string) *LocalVerifier {
	return &LocalVerifier{secret: []byte(secret)}
}

func (v *LocalVerifier) Verify(
	_ context.Context,
	tokenString string,
) (*Identity, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), v.secret),
		jwt.WithValidate(true),
		jwt.WithAudience(sessionAudience),
	)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	id := &Identity{ID: subject, Role: RoleUser}

	var email string
	if err := token.Get("email", &email); err == nil {
		id.Email = email
	}

	var appMeta map[string]any
	if err := token.Get("app_metadata", &appMeta); err == nil {
		if role, ok := appMeta["role"].(string); ok {
			id.Role = ParseRole(role)
		}
	}

	var userMeta map[string]any
	if err := token.Get("user_metadata", &userMeta); err == nil {
		id.Metadata = Metadata{
			FullName:     stringField(userMeta, "full_name"),
			Name:         stringField(userMeta, "name"),
			HostedDomain: stringField(userMeta, "hd"),
			Company:      stringField(userMeta, "company"),
		}
	}

	return id, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string) //nolint:errcheck // non-string means unset
	return s
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}

// NewVerifier selects remote or local verification by mode.
func NewVerifier(mode, secret string, client *Client) Verifier {
	if mode == config.VerifyModeLocal {
		return NewLocalVerifier(secret)
	}
	return client
}
