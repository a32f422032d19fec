// AngelaMos | 2026
// cookies.go

package auth

import (
	"net/http"
	"time"

	"github.com/ristan-marine/catalog-api/internal/config"
	"github.com/ristan-marine/catalog-api/internal/identity"
)

const verifierMaxAge = 10 * time.Minute

// Cookies reads and writes the session and PKCE cookies. All of them are
// HttpOnly; scripts never see tokens.
type Cookies struct {
	cfg config.SessionConfig
}

func NewCookies(cfg config.SessionConfig) *Cookies {
	return &Cookies{cfg: cfg}
}

func (c *Cookies) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.cfg.CookieDomain,
		HttpOnly: true,
		Secure:   c.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	switch {
	case maxAge > 0:
		ck.MaxAge = int(maxAge / time.Second)
	case maxAge < 0:
		ck.MaxAge = -1
	}
	return ck
}

// Tokens returns the access and refresh tokens the browser sent.
func (c *Cookies) Tokens(r *http.Request) (access, refresh string) {
	if ck, err := r.Cookie(c.cfg.AccessCookie); err == nil {
		access = ck.Value
	}
	if ck, err := r.Cookie(c.cfg.RefreshCookie); err == nil {
		refresh = ck.Value
	}
	return access, refresh
}

func (c *Cookies) SetSession(w http.ResponseWriter, s *identity.Session) {
	accessAge := time.Duration(s.ExpiresIn) * time.Second
	if accessAge <= 0 {
		accessAge = time.Hour
	}

	http.SetCookie(w, c.cookie(c.cfg.AccessCookie, s.AccessToken, accessAge))
	if s.RefreshToken != "" {
		http.SetCookie(w, c.cookie(c.cfg.RefreshCookie, s.RefreshToken, c.cfg.RefreshMaxAge))
	}
}

func (c *Cookies) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(c.cfg.AccessCookie, "", -1))
	http.SetCookie(w, c.cookie(c.cfg.RefreshCookie, "", -1))
}

func (c *Cookies) SetVerifier(w http.ResponseWriter, verifier string) {
	http.SetCookie(w, c.cookie(c.cfg.VerifierCookie, verifier, verifierMaxAge))
}

// TakeVerifier returns the PKCE verifier and clears it; it is single use.
func (c *Cookies) TakeVerifier(w http.ResponseWriter, r *http.Request) string {
	ck, err := r.Cookie(c.cfg.VerifierCookie)
	if err != nil {
		return ""
	}
	http.SetCookie(w, c.cookie(c.cfg.VerifierCookie, "", -1))
	return ck.Value
}
