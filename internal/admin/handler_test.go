// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ristan-marine/catalog-api/internal/account"
	"github.com/ristan-marine/catalog-api/internal/identity"
	"github.com/ristan-marine/catalog-api/internal/middleware"
)

type countFunc func(ctx context.Context) (int, error)

func (f countFunc) Count(ctx context.Context) (int, error) { return f(ctx) }

type accountCounts struct {
	counts account.Counts
	err    error
}

func (a accountCounts) Counts(context.Context) (account.Counts, error) { return a.counts, a.err }

func fixed(n int) countFunc {
	return func(context.Context) (int, error) { return n, nil }
}

func router(h *Handler, caller *identity.Identity) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if caller != nil {
				req = req.WithContext(middleware.WithIdentity(req.Context(), caller))
			}
			next.ServeHTTP(w, req)
		})
	})
	h.RegisterRoutes(r, middleware.RequireAdmin)
	return r
}

func TestGetStats(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Products:  fixed(1200),
		Accounts:  accountCounts{counts: account.Counts{Total: 40, Usable: 31}},
		Inquiries: fixed(7),
		DBStats:   func() sql.DBStats { return sql.DBStats{MaxOpenConnections: 25, InUse: 2} },
	})

	w := httptest.NewRecorder()
	router(h, &identity.Identity{ID: "a", Role: identity.RoleAdmin}).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp StatsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := Counts{Products: 1200, Accounts: 40, UsableAccounts: 31, Inquiries: 7}
	if resp.Counts != want {
		t.Errorf("counts = %+v, want %+v", resp.Counts, want)
	}
	if resp.Database == nil || resp.Database.MaxOpenConnections != 25 {
		t.Errorf("database = %+v", resp.Database)
	}
	if resp.Redis != nil {
		t.Errorf("redis = %+v, want omitted", resp.Redis)
	}
	if resp.Runtime.GoVersion == "" {
		t.Error("runtime stats missing")
	}
}

func TestGetStatsRequiresAdmin(t *testing.T) {
	h := NewHandler(HandlerConfig{Products: fixed(0), Accounts: accountCounts{}, Inquiries: fixed(0)})

	w := httptest.NewRecorder()
	router(h, &identity.Identity{ID: "u", Role: identity.RoleUser}).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestGetStatsCountFailure(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Products:  fixed(3),
		Accounts:  accountCounts{err: errors.New("connection reset")},
		Inquiries: fixed(1),
	})

	w := httptest.NewRecorder()
	router(h, &identity.Identity{ID: "a", Role: identity.RoleAdmin}).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
