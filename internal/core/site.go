// AngelaMos | 2026
// site.go

package core

import (
	"net/http"
	"strings"
)

// RequestOrigin is the scheme and host the browser used to reach us. A
// configured base URL wins over anything derived from the request.
func RequestOrigin(r *http.Request, configured string) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		scheme = proto
	}

	return scheme + "://" + r.Host
}
