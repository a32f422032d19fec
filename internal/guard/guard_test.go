// AngelaMos | 2026
// guard_test.go

package guard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ristan-marine/catalog-api/internal/account"
	"github.com/ristan-marine/catalog-api/internal/config"
	"github.com/ristan-marine/catalog-api/internal/identity"
	"github.com/ristan-marine/catalog-api/internal/middleware"
)

var (
	now    = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	admin  = &identity.Identity{ID: "a1", Role: identity.RoleAdmin}
	member = &identity.Identity{ID: "u1", Role: identity.RoleUser}
)

func TestClassify(t *testing.T) {
	tests := map[string]Zone{
		"/":                      ZonePublic,
		"/company":               ZonePublic,
		"/admin":                 ZoneAdmin,
		"/admin/":                ZoneAdmin,
		"/admin/users":           ZoneAdmin,
		"/administrator":         ZonePublic,
		"/catalog":               ZoneCatalog,
		"/catalog/":              ZoneCatalog,
		"/catalog/ropes":         ZoneCatalog,
		"/catalogue":             ZonePublic,
		"/catalog/login":         ZonePublic,
		"/catalog/login/reset":   ZonePublic,
		"/catalog/signup":        ZonePublic,
		"/catalog/expired":       ZonePublic,
		"/catalog/expiredsoon":   ZoneCatalog,
		"/catalog/loginx":        ZoneCatalog,
		"/api/products":          ZonePublic,
		"/auth/callback":         ZonePublic,
		"/catalog/signup/verify": ZonePublic,

		"/catalog/expired/../../admin": ZoneAdmin,
		"/catalog/login/..":            ZoneCatalog,
		"/x/../admin":                  ZoneAdmin,
		"/catalog/./ropes":             ZoneCatalog,
		"//admin":                      ZoneAdmin,
	}

	for path, want := range tests {
		if got := Classify(path); got != want {
			t.Errorf("Classify(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestEvaluateAdminNeverAllowsWithoutAdmin(t *testing.T) {
	paths := []string{"/admin", "/admin/", "/admin/users", "/admin/products", "/admin/a/b/c"}
	callers := []*identity.Identity{nil, member, {ID: "x", Role: identity.Role("")}}

	for _, path := range paths {
		for _, caller := range callers {
			d := Evaluate(Input{Path: path, Caller: caller}, now)
			if d.Allowed() {
				t.Errorf("Evaluate(%q, %v) allowed", path, caller)
			}
			if d.Outcome != OutcomeRedirectBack || d.Target != SiteRoot {
				t.Errorf("Evaluate(%q) = %+v", path, d)
			}
		}

		if d := Evaluate(Input{Path: path, Caller: admin}, now); !d.Allowed() {
			t.Errorf("admin refused on %q: %+v", path, d)
		}
	}
}

func TestEvaluateAdminUsesBack(t *testing.T) {
	d := Evaluate(Input{Path: "/admin", Caller: member, Back: "https://ristan.kr/company"}, now)
	if d.Target != "https://ristan.kr/company" {
		t.Errorf("Target = %q", d.Target)
	}
}

func TestEvaluateCatalog(t *testing.T) {
	tests := []struct {
		name    string
		caller  *identity.Identity
		profile *account.Profile
		want    Outcome
	}{
		{"anonymous", nil, nil, OutcomeRedirectLogin},
		{"no profile", member, nil, OutcomeRedirectExpired},
		{"inactive", member, &account.Profile{IsActive: false, ExpiresAt: now.Add(time.Hour)}, OutcomeRedirectExpired},
		{"expired", member, &account.Profile{IsActive: true, ExpiresAt: now.Add(-time.Second)}, OutcomeRedirectExpired},
		{"expires exactly now", member, &account.Profile{IsActive: true, ExpiresAt: now}, OutcomeRedirectExpired},
		{"active", member, &account.Profile{IsActive: true, ExpiresAt: now.Add(time.Nanosecond)}, OutcomeAllow},
		{"admin without profile", admin, nil, OutcomeRedirectExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(Input{Path: "/catalog/valves", Caller: tt.caller, Profile: tt.profile}, now)
			if d.Outcome != tt.want {
				t.Errorf("Outcome = %s, want %s", d.Outcome, tt.want)
			}
			switch d.Outcome {
			case OutcomeRedirectLogin:
				if d.Target != LoginPath {
					t.Errorf("Target = %q", d.Target)
				}
			case OutcomeRedirectExpired:
				if d.Target != ExpiredPath {
					t.Errorf("Target = %q", d.Target)
				}
			}
		})
	}
}

func TestEvaluateCatalogPublicPagesAlwaysAllow(t *testing.T) {
	for _, path := range []string{LoginPath, SignupPath, ExpiredPath} {
		if d := Evaluate(Input{Path: path}, now); !d.Allowed() {
			t.Errorf("Evaluate(%q) = %+v", path, d)
		}
	}
}

func TestBackURL(t *testing.T) {
	const origin = "https://ristan.kr"

	tests := []struct {
		referer string
		want    string
	}{
		{"", "/"},
		{"https://ristan.kr/company/history?x=1", "https://ristan.kr/company/history?x=1"},
		{"https://ristan.kr", "https://ristan.kr"},
		{"https://ristan.kr/admin/users", "/"},
		{"https://ristan.kr/admin", "/"},
		{"https://ristan.kr/company/../admin/users", "/"},
		{"https://ristan.kr/administrator", "https://ristan.kr/administrator"},
		{"https://evil.example/company", "/"},
		{"https://ristan.kr.evil.example/company", "/"},
		{"http://ristan.kr/company", "/"},
		{"/company", "/"},
		{"::not a url", "/"},
	}

	for _, tt := range tests {
		if got := BackURL(tt.referer, origin); got != tt.want {
			t.Errorf("BackURL(%q) = %q, want %q", tt.referer, got, tt.want)
		}
	}
}

type stubProfiles struct {
	profile *account.Profile
	err     error
	calls   int
}

func (s *stubProfiles) Get(context.Context, string) (*account.Profile, error) {
	s.calls++
	return s.profile, s.err
}

func serve(g *Guard, caller *identity.Identity, path, referer string) *httptest.ResponseRecorder {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodGet, path, nil)
	if caller != nil {
		r = r.WithContext(middleware.WithIdentity(r.Context(), caller))
	}
	if referer != "" {
		r.Header.Set("Referer", referer)
	}

	w := httptest.NewRecorder()
	g.Middleware(next).ServeHTTP(w, r)
	return w
}

func TestMiddleware(t *testing.T) {
	active := &account.Profile{IsActive: true, ExpiresAt: time.Now().Add(24 * time.Hour)}

	tests := []struct {
		name      string
		profiles  *stubProfiles
		caller    *identity.Identity
		path      string
		referer   string
		wantCode  int
		wantLoc   string
		wantCalls int
	}{
		{"public page", &stubProfiles{}, nil, "/company", "", http.StatusOK, "", 0},
		{"admin anonymous", &stubProfiles{}, nil, "/admin/users", "https://ristan.kr/company", 307, "https://ristan.kr/company", 0},
		{"admin from admin referer", &stubProfiles{}, member, "/admin", "https://ristan.kr/admin/users", 307, "/", 0},
		{"admin ok", &stubProfiles{}, admin, "/admin/products", "", http.StatusOK, "", 0},
		{"catalog anonymous", &stubProfiles{}, nil, "/catalog", "", 307, "/catalog/login", 0},
		{"catalog active", &stubProfiles{profile: active}, member, "/catalog", "", http.StatusOK, "", 1},
		{"catalog lookup error", &stubProfiles{profile: active, err: errors.New("db down")}, member, "/catalog", "", 307, "/catalog/expired", 1},
		{"catalog login page", &stubProfiles{}, nil, "/catalog/login", "", http.StatusOK, "", 0},
		{"dot segments into admin", &stubProfiles{}, nil, "/catalog/expired/../../admin", "", 307, "/", 0},
		{"dot segments out of login", &stubProfiles{}, nil, "/catalog/login/..", "", 307, "/catalog/login", 0},
		{"dot segments from public", &stubProfiles{}, member, "/x/../admin", "", 307, "/", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.profiles, "https://ristan.kr")

			w := serve(g, tt.caller, tt.path, tt.referer)

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if loc := w.Header().Get("Location"); loc != tt.wantLoc {
				t.Errorf("Location = %q, want %q", loc, tt.wantLoc)
			}
			if tt.profiles.calls != tt.wantCalls {
				t.Errorf("profile lookups = %d, want %d", tt.profiles.calls, tt.wantCalls)
			}
		})
	}
}

func TestRedirectStillSetsLangCookie(t *testing.T) {
	g := New(&stubProfiles{}, "https://ristan.kr")
	lang := middleware.Language(config.LangConfig{
		CookieName:     "lang",
		CountryHeaders: []string{"CF-IPCountry"},
		MaxAge:         365 * 24 * time.Hour,
	})

	h := lang(g.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	r := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	r.Header.Set("CF-IPCountry", "KR")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", w.Code)
	}

	var found *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "lang" {
			found = c
		}
	}
	if found == nil || found.Value != "ko" || found.MaxAge != 31536000 {
		t.Errorf("lang cookie = %+v", found)
	}
}
