// AngelaMos | 2026
// pages.go

package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Pages serves the prebuilt site from dir. Clean URLs resolve to
// "{path}.html" or "{path}/index.html"; anything else is a 404, including
// any path with a dot segment.
func Pages(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed),
				http.StatusMethodNotAllowed)
			return
		}

		if hasDotSegment(r.URL.Path) {
			http.NotFound(w, r)
			return
		}

		file, ok := resolvePage(dir, path.Clean("/"+r.URL.Path))
		if !ok {
			http.NotFound(w, r)
			return
		}

		f, err := os.Open(file)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer f.Close() //nolint:errcheck // read-only

		info, err := f.Stat()
		if err != nil {
			http.NotFound(w, r)
			return
		}

		// Gated pages depend on the caller.
		w.Header().Set("Cache-Control", "private, no-cache")
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	})
}

func hasDotSegment(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == "." || seg == ".." {
			return true
		}
	}
	return false
}

func resolvePage(dir, name string) (string, bool) {
	if strings.Contains(name, "..") {
		return "", false
	}

	candidates := []string{name}
	switch {
	case name == "/":
		candidates = []string{"/index.html"}
	case path.Ext(name) == "":
		candidates = []string{name + ".html", name + "/index.html"}
	}

	for _, c := range candidates {
		full := filepath.Join(dir, filepath.FromSlash(c))
		if info, err := os.Stat(full); err == nil && !info.IsDir() {
			return full, true
		}
	}
	return "", false
}
