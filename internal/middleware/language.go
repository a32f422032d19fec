// AngelaMos | 2026
// language.go

package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/ristan-marine/catalog-api/internal/config"
)

type Lang string

const (
	LangKO Lang = "ko"
	LangEN Lang = "en"

	LangKey contextKey = "lang"
)

func parseLang(s string) (Lang, bool) {
	switch Lang(s) {
	case LangKO, LangEN:
		return Lang(s), true
	}
	return "", false
}

// ResolveLang picks the visitor's locale: an explicit cookie first, then the
// edge's geolocation country, then the strongest Accept-Language tag.
// fromCookie reports whether a valid cookie decided it.
func ResolveLang(r *http.Request, cfg config.LangConfig) (lang Lang, fromCookie bool) {
	if c, err := r.Cookie(cfg.CookieName); err == nil {
		if l, ok := parseLang(c.Value); ok {
			return l, true
		}
	}

	for _, h := range cfg.CountryHeaders {
		if country := strings.TrimSpace(r.Header.Get(h)); country != "" {
			if strings.EqualFold(country, "KR") {
				return LangKO, false
			}
			return LangEN, false
		}
	}

	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return LangEN, false
	}

	if base, _ := tags[0].Base(); base.String() == "ko" {
		return LangKO, false
	}
	return LangEN, false
}

// Language stores the resolved locale in the request context and, when the
// request carried no lang cookie at all, persists the decision. The cookie is
// written before next runs so redirects downstream still carry it.
func Language(cfg config.LangConfig) func(http.Handler) http.Handler {
	maxAge := int(cfg.MaxAge / time.Second)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang, _ := ResolveLang(r, cfg)

			if _, err := r.Cookie(cfg.CookieName); err != nil {
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    string(lang),
					Path:     "/",
					MaxAge:   maxAge,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), LangKey, lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetLang(ctx context.Context) Lang {
	if l, ok := ctx.Value(LangKey).(Lang); ok {
		return l
	}
	return LangEN
}
