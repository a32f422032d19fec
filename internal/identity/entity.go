// AngelaMos | 2026
// entity.go

package identity

import (
	"context"
	"strings"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole reads the role claim. Anything other than admin is a plain user.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

type Metadata struct {
	FullName     string `json:"full_name,omitempty"`
	Name         string `json:"name,omitempty"`
	HostedDomain string `json:"hd,omitempty"`
	Company      string `json:"company,omitempty"`
}

type Identity struct {
	ID       string
	Email    string
	Role     Role
	Metadata Metadata
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	User         *Identity
}

type Verifier interface {
	Verify(ctx context.Context, accessToken string) (*Identity, error)
}

type userPayload struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	AppMetadata  map[string]any `json:"app_metadata"`
	UserMetadata Metadata       `json:"user_metadata"`
}

func (p *userPayload) toIdentity() *Identity {
	role, _ := p.AppMetadata["role"].(string) //nolint:errcheck // absent role means user
	return &Identity{
		ID:       p.ID,
		Email:    p.Email,
		Role:     ParseRole(role),
		Metadata: p.UserMetadata,
	}
}

type sessionPayload struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
	User         *userPayload `json:"user"`
}

func (p *sessionPayload) toSession() *Session {
	s := &Session{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresIn:    p.ExpiresIn,
	}
	if p.User != nil {
		s.User = p.User.toIdentity()
	}
	return s
}
