// AngelaMos | 2026
// middleware.go

package guard

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/ristan-marine/catalog-api/internal/account"
	"github.com/ristan-marine/catalog-api/internal/core"
	"github.com/ristan-marine/catalog-api/internal/metrics"
	"github.com/ristan-marine/catalog-api/internal/middleware"
)

type ProfileLookup interface {
	Get(ctx context.Context, id string) (*account.Profile, error)
}

type Guard struct {
	profiles ProfileLookup
	siteURL  string
	now      func() time.Time
}

func New(profiles ProfileLookup, siteURL string) *Guard {
	return &Guard{
		profiles: profiles,
		siteURL:  siteURL,
		now:      time.Now,
	}
}

// Middleware enforces the page trees. It expects the caller, if any, to be in
// the context already; Authenticator must run first.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cleaned := path.Clean("/" + r.URL.Path)
		zone := Classify(cleaned)
		if zone == ZonePublic {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		in := Input{
			Path:   cleaned,
			Caller: middleware.GetIdentity(ctx),
		}

		switch zone {
		case ZoneAdmin:
			in.Back = BackURL(r.Referer(), core.RequestOrigin(r, g.siteURL))
		case ZoneCatalog:
			if in.Caller != nil {
				in.Profile = g.lookup(ctx, in.Caller.ID)
			}
		}

		d := Evaluate(in, g.now())
		metrics.GuardDecisions.WithLabelValues(string(d.Zone), string(d.Outcome)).Inc()

		if d.Allowed() {
			next.ServeHTTP(w, r)
			return
		}

		slog.DebugContext(ctx, "guard redirect",
			"path", r.URL.Path,
			"outcome", d.Outcome,
			"target", d.Target,
		)
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, r, d.Target, http.StatusTemporaryRedirect)
	})
}

// lookup fails closed: any error is treated as no profile.
func (g *Guard) lookup(ctx context.Context, id string) *account.Profile {
	p, err := g.profiles.Get(ctx, id)
	if err != nil {
		slog.DebugContext(ctx, "profile lookup failed", "user_id", id, "error", err)
		return nil
	}
	return p
}
