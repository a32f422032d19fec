// AngelaMos | 2026
// guard.go

package guard

import (
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/ristan-marine/catalog-api/internal/account"
	"github.com/ristan-marine/catalog-api/internal/identity"
)

type Zone string

const (
	ZonePublic  Zone = "public"
	ZoneAdmin   Zone = "admin"
	ZoneCatalog Zone = "catalog"
)

type Outcome string

const (
	OutcomeAllow           Outcome = "allow"
	OutcomeRedirectBack    Outcome = "redirect_back"
	OutcomeRedirectLogin   Outcome = "redirect_login"
	OutcomeRedirectExpired Outcome = "redirect_expired"
)

const (
	AdminRoot   = "/admin"
	CatalogRoot = "/catalog"
	LoginPath   = "/catalog/login"
	SignupPath  = "/catalog/signup"
	ExpiredPath = "/catalog/expired"
	SiteRoot    = "/"
)

var catalogPublic = []string{LoginPath, SignupPath, ExpiredPath}

// under reports whether path is root itself or inside it, by whole segments:
// /catalogue is not under /catalog.
func under(p, root string) bool {
	return p == root || strings.HasPrefix(p, root+"/")
}

// Classify maps a request path to the zone that governs it. Dot segments are
// resolved first, so /catalog/login/../../admin is the admin zone.
func Classify(p string) Zone {
	p = path.Clean("/" + p)

	switch {
	case under(p, AdminRoot):
		return ZoneAdmin
	case under(p, CatalogRoot):
		for _, public := range catalogPublic {
			if under(p, public) {
				return ZonePublic
			}
		}
		return ZoneCatalog
	default:
		return ZonePublic
	}
}

// Input is everything a decision depends on. Profile is nil when the caller
// has none or it could not be loaded.
type Input struct {
	Path    string
	Caller  *identity.Identity
	Profile *account.Profile
	Back    string
}

type Decision struct {
	Zone    Zone
	Outcome Outcome
	Target  string
}

func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllow
}

// Evaluate is the access decision for one request. It has no side effects.
func Evaluate(in Input, now time.Time) Decision {
	zone := Classify(in.Path)

	switch zone {
	case ZoneAdmin:
		if !in.Caller.IsAdmin() {
			back := in.Back
			if back == "" {
				back = SiteRoot
			}
			return Decision{Zone: zone, Outcome: OutcomeRedirectBack, Target: back}
		}
	case ZoneCatalog:
		if in.Caller == nil {
			return Decision{Zone: zone, Outcome: OutcomeRedirectLogin, Target: LoginPath}
		}
		if !account.IsUsable(in.Profile, now) {
			return Decision{Zone: zone, Outcome: OutcomeRedirectExpired, Target: ExpiredPath}
		}
	}

	return Decision{Zone: zone, Outcome: OutcomeAllow}
}

// BackURL is where a refused admin visitor is sent: the page they came from
// when it is on this site and outside the admin tree, else the site root.
func BackURL(referer, origin string) string {
	if referer == "" {
		return SiteRoot
	}

	ref, err := url.Parse(referer)
	if err != nil || !ref.IsAbs() {
		return SiteRoot
	}
	site, err := url.Parse(origin)
	if err != nil {
		return SiteRoot
	}

	if !strings.EqualFold(ref.Scheme, site.Scheme) || !strings.EqualFold(ref.Host, site.Host) {
		return SiteRoot
	}

	refPath := ref.Path
	if refPath == "" {
		refPath = "/"
	}
	if under(path.Clean(refPath), AdminRoot) {
		return SiteRoot
	}

	return ref.String()
}
