// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/ristan-marine/catalog-api/internal/account"
	"github.com/ristan-marine/catalog-api/internal/core"
	"github.com/ristan-marine/catalog-api/internal/identity"
)

const (
	PathCatalog = "/catalog"
	PathLogin   = "/catalog/login"
	PathExpired = "/catalog/expired"
)

// IdentityProvider is the part of the auth service the sign-in flows use.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error)
	SignUp(
		ctx context.Context,
		email, password string,
		meta identity.Metadata,
	) (*identity.Identity, *identity.Session, error)
	ExchangeCode(ctx context.Context, code, verifier string) (*identity.Session, error)
	Logout(ctx context.Context, accessToken string) error
	AuthorizeURL(provider, redirectTo, challenge string) string
}

// Accounts writes catalog profiles for freshly created identities.
type Accounts interface {
	SignUp(
		ctx context.Context,
		ident *identity.Identity,
		fullName, company string,
	) (*account.Profile, error)
	ProvisionOAuth(ctx context.Context, ident *identity.Identity) (*account.Profile, bool, error)
}

type Service struct {
	idp       IdentityProvider
	accounts  Accounts
	providers []string
	now       func() time.Time
}

func NewService(idp IdentityProvider, accounts Accounts, providers []string) *Service {
	return &Service{
		idp:       idp,
		accounts:  accounts,
		providers: providers,
		now:       time.Now,
	}
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*identity.Session, error) {
	sess, err := s.idp.SignInWithPassword(ctx, strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, core.ErrUnauthorized) || errors.Is(err, core.ErrInvalidInput) {
			return nil, core.UnauthorizedError("invalid email or password")
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	return sess, nil
}

// SignUp registers the identity and opens the self-service trial. sess is nil
// when the auth service still wants the address confirmed.
func (s *Service) SignUp(
	ctx context.Context,
	req SignupRequest,
) (*identity.Identity, *identity.Session, error) {
	ident, sess, err := s.idp.SignUp(ctx,
		strings.TrimSpace(req.Email),
		req.Password,
		identity.Metadata{
			FullName: strings.TrimSpace(req.FullName),
			Company:  strings.TrimSpace(req.Company),
		},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("sign up: %w", err)
	}

	if _, err := s.accounts.SignUp(ctx, ident, req.FullName, req.Company); err != nil {
		return nil, nil, err
	}

	slog.InfoContext(ctx, "self-service signup", "user_id", ident.ID)
	return ident, sess, nil
}

// StartOAuth returns the provider redirect and the PKCE verifier the
// callback must present.
func (s *Service) StartOAuth(provider, callbackURL string) (authorizeURL, verifier string, err error) {
	if !slices.Contains(s.providers, provider) {
		return "", "", core.ValidationError("unsupported provider")
	}

	verifier = oauth2.GenerateVerifier()
	challenge := oauth2.S256ChallengeFromVerifier(verifier)

	return s.idp.AuthorizeURL(provider, callbackURL, challenge), verifier, nil
}

// CompleteOAuth exchanges the code, provisions a first-time profile and
// picks where the browser goes next.
func (s *Service) CompleteOAuth(
	ctx context.Context,
	code, verifier string,
) (*identity.Session, string, error) {
	sess, err := s.idp.ExchangeCode(ctx, code, verifier)
	if err != nil {
		return nil, "", fmt.Errorf("oauth callback: %w", err)
	}
	if sess.User == nil || sess.User.ID == "" {
		return nil, "", fmt.Errorf("oauth callback: session without user: %w", core.ErrUpstream)
	}

	profile, created, err := s.accounts.ProvisionOAuth(ctx, sess.User)
	if err != nil {
		return nil, "", fmt.Errorf("oauth callback: %w", err)
	}

	switch {
	case created:
		return sess, PathCatalog, nil
	case !account.IsUsable(profile, s.now()):
		return sess, PathExpired, nil
	default:
		return sess, PathCatalog, nil
	}
}

// Logout revokes the session upstream. Failures are logged only; the
// caller clears cookies regardless.
func (s *Service) Logout(ctx context.Context, accessToken string) {
	if accessToken == "" {
		return
	}
	if err := s.idp.Logout(ctx, accessToken); err != nil {
		slog.WarnContext(ctx, "remote logout failed", "error", err)
	}
}
