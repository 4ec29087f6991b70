// Package http serves the chart views as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"money-manager/internal/aggregate"
	"money-manager/internal/analytics"
	"money-manager/internal/core"
	"money-manager/internal/log"
	"money-manager/internal/middleware/ratelimit"
	"money-manager/internal/middleware/trace"
)

// handlerTimeout bounds the work a single chart request may do.
const handlerTimeout = 7 * time.Second

// Charts is the read side the handlers need. *analytics.Service satisfies it.
type Charts interface {
	Monthly(ctx context.Context, req analytics.Request) (analytics.MonthlyView, error)
	MonthlyForCategory(ctx context.Context, req analytics.Request, name string, typ core.TransactionType) (analytics.MonthlyView, error)
	Categories(ctx context.Context, req analytics.Request, typ core.TransactionType) (analytics.CategoryView, error)
	Calendar(ctx context.Context, req analytics.Request, typ core.TransactionType, years aggregate.YearSelection) (analytics.CalendarView, error)
	CategoryNames(ctx context.Context, req analytics.Request, typ *core.TransactionType) ([]string, error)
	TimePeriod(req analytics.Request) string
	Stats() analytics.CacheStats
}

// Options configures a Server.
type Options struct {
	RequestsPerMinute int
	Logger            *log.Logger
}

type Server struct {
	http.Server
	charts          Charts
	rateLimiter     *ratelimit.Limiter
	traceMiddleware *trace.Middleware
	started         time.Time

	shutdownOnce sync.Once
}

func NewServer(addr string, charts Charts, opts Options) *Server {
	base := opts.Logger
	if base == nil {
		base = log.Discard()
	}
	logger := base.WithComponent(log.ComponentHTTP)

	s := &Server{
		charts:          charts,
		rateLimiter:     ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		traceMiddleware: trace.NewMiddleware(extractClientIP, logger),
		started:         time.Now(),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(log.Middleware(base))
	r.Use(log.ComponentMiddleware(log.ComponentHTTP))
	r.Use(s.traceMiddleware.Middleware)
	r.Use(log.RequestIDMiddleware(trace.RequestIDFromRequest))
	r.Use(securityHeaders)

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimiter.Middleware(extractClientIP, s.handleRateLimited))

		r.Route("/api/charts", func(r chi.Router) {
			r.Get("/period", s.handlePeriod)
			r.Get("/monthly", s.handleMonthly)
			r.Get("/categories", s.handleCategories)
			r.Get("/categories/{name}/monthly", s.handleCategoryMonthly)
			r.Get("/category-names", s.handleCategoryNames)
			r.Get("/calendar", s.handleCalendar)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusNotFound, "not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	s.Addr = addr
	s.Handler = r
	s.ReadHeaderTimeout = 5 * time.Second
	s.ReadTimeout = 10 * time.Second
	s.WriteTimeout = 15 * time.Second
	s.IdleTimeout = 60 * time.Second
	return s
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
