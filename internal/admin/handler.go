// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/ristan-marine/catalog-api/internal/account"
	"github.com/ristan-marine/catalog-api/internal/core"
)

type ProductCounter interface {
	Count(ctx context.Context) (int, error)
}

type AccountCounter interface {
	Counts(ctx context.Context) (account.Counts, error)
}

type InquiryCounter interface {
	Count(ctx context.Context) (int, error)
}

type Handler struct {
	products   ProductCounter
	accounts   AccountCounter
	inquiries  InquiryCounter
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
}

type HandlerConfig struct {
	Products   ProductCounter
	Accounts   AccountCounter
	Inquiries  InquiryCounter
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		products:   cfg.Products,
		accounts:   cfg.Accounts,
		inquiries:  cfg.Inquiries,
		dbStats:    cfg.DBStats,
		redisStats: cfg.RedisStats,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Route("/admin/stats", func(r chi.Router) {
		r.Use(adminOnly)

		r.Get("/", h.GetStats)
		r.Get("/runtime", h.GetRuntimeStats)
	})
}

// GetStats is the dashboard summary: catalog and account counts plus pool
// and runtime figures.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.counts(r.Context())
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, StatsResponse{
		Counts:   counts,
		Database: h.getDBStats(),
		Redis:    h.getRedisStats(),
		Runtime:  readRuntimeStats(),
	})
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, readRuntimeStats())
}

func (h *Handler) counts(ctx context.Context) (Counts, error) {
	var out Counts
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := h.products.Count(ctx)
		out.Products = n
		return err
	})
	g.Go(func() error {
		c, err := h.accounts.Counts(ctx)
		out.Accounts = c.Total
		out.UsableAccounts = c.Usable
		return err
	})
	g.Go(func() error {
		n, err := h.inquiries.Count(ctx)
		out.Inquiries = n
		return err
	})

	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "dashboard counts failed", "error", err)
		return Counts{}, err
	}
	return out, nil
}

func readRuntimeStats() RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     mem.Alloc,
		MemSys:       mem.Sys,
		NumGC:        mem.NumGC,
	}
}

func (h *Handler) getDBStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}

	stats := h.dbStats()
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
	}
}

func (h *Handler) getRedisStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	stats := h.redisStats()
	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
	}
}
