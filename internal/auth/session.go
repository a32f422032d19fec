// AngelaMos | 2026
// session.go

package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ristan-marine/catalog-api/internal/core"
	"github.com/ristan-marine/catalog-api/internal/identity"
)

type Refresher interface {
	RefreshSession(ctx context.Context, refreshToken string) (*identity.Session, error)
}

// Resolver turns session cookies into the caller. When the access token is
// missing or rejected it tries the refresh token once and rewrites the
// cookies on success. Every failure resolves to no caller.
type Resolver struct {
	verifier  identity.Verifier
	refresher Refresher
	cookies   *Cookies
}

func NewResolver(verifier identity.Verifier, refresher Refresher, cookies *Cookies) *Resolver {
	return &Resolver{
		verifier:  verifier,
		refresher: refresher,
		cookies:   cookies,
	}
}

func (s *Resolver) Resolve(w http.ResponseWriter, r *http.Request) *identity.Identity {
	ctx := r.Context()
	access, refresh := s.cookies.Tokens(r)

	if access != "" {
		id, err := s.verifier.Verify(ctx, access)
		if err == nil {
			return id
		}
		slog.DebugContext(ctx, "access token rejected", "error", err)
	}

	if refresh == "" {
		return nil
	}

	sess, err := s.refresher.RefreshSession(ctx, refresh)
	if err != nil {
		slog.DebugContext(ctx, "session refresh failed", "error", err)
		if errors.Is(err, core.ErrUnauthorized) || errors.Is(err, core.ErrInvalidInput) {
			s.cookies.ClearSession(w)
		}
		return nil
	}

	s.cookies.SetSession(w, sess)

	if sess.User != nil && sess.User.ID != "" {
		return sess.User
	}

	id, err := s.verifier.Verify(ctx, sess.AccessToken)
	if err != nil {
		slog.DebugContext(ctx, "refreshed token rejected", "error", err)
		return nil
	}
	return id
}
