package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"money-manager/internal/core"
	"money-manager/internal/log"
)

// handleHealth reports liveness together with cache and limiter counters.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":       "ok",
		"timestamp":    time.Now().Format(time.RFC3339),
		"uptime":       time.Since(s.started).Round(time.Second).String(),
		"cache":        s.charts.Stats(),
		"rate_limiter": s.rateLimiter.GetMetrics(),
		"requests":     s.traceMiddleware.GetMetrics().TotalRequests,
	}).Write(w)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, extractClientIP(r),
		log.FieldPath, r.URL.Path)
	TooManyRequestsError("rate limit exceeded, please try again later").Write(w)
}

func (s *Server) handlePeriod(w http.ResponseWriter, r *http.Request) {
	req := ParseChartRequest(r.URL.Query())
	NewJSONResponse().Body(map[string]string{"label": s.charts.TimePeriod(req)}).Write(w)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	view, err := s.charts.Monthly(ctx, ParseChartRequest(r.URL.Query()))
	if err != nil {
		s.writeError(ctx, w, r, err)
		return
	}
	NewJSONResponse().Body(view).Write(w)
}

func (s *Server) handleCategoryMonthly(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	query := r.URL.Query()
	typ, err := ParseType(query, core.Expense)
	if err != nil {
		s.writeError(ctx, w, r, err)
		return
	}
	name := chi.URLParam(r, "name")

	view, err := s.charts.MonthlyForCategory(ctx, ParseChartRequest(query), name, typ)
	if err != nil {
		s.writeError(ctx, w, r, err)
		return
	}
	NewJSONResponse().Body(view).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	query := r.URL.Query()
	typ, err := ParseType(query, core.Expense)
	if err != nil {
		s.writeError(ctx, w, r, err)
		return
	}

	view, err := s.charts.Categories(ctx, ParseChartRequest(query), typ)
	if err != nil {
		s.writeError(ctx, w, r, err)
		return
	}
	NewJSONResponse().Body(view).Write(w)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	query := r.URL.Query()
	typ, err := ParseType(query, core.Expense)
	if err != nil {
		s.writeError(ctx, w, r, err)
		return
	}
	years, err := ParseYears(query)
	if err != nil {
		s.writeError(ctx, w, r, err)
		return
	}

	view, err := s.charts.Calendar(ctx, ParseChartRequest(query), typ, years)
	if err != nil {
		s.writeError(ctx, w, r, err)
		return
	}
	NewJSONResponse().Body(view).Write(w)
}

func (s *Server) handleCategoryNames(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	query := r.URL.Query()
	typ, err := ParseOptionalType(query)
	if err != nil {
		s.writeError(ctx, w, r, err)
		return
	}

	names, err := s.charts.CategoryNames(ctx, ParseChartRequest(query), typ)
	if err != nil {
		s.writeError(ctx, w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	NewJSONResponse().Body(map[string][]string{"categories": names}).Write(w)
}

// writeError maps pipeline errors to status codes. Caller mistakes are 400,
// an exhausted handler budget is 504 and anything else is logged as a 500.
func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, r *http.Request, err error) {
	structured := log.NewStructuredLogger(log.FromContext(ctx))
	switch {
	case errors.Is(err, core.ErrInvalidCurrency),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, ErrInvalidYears):
		BadRequestError(err.Error()).Write(w)
	case errors.Is(err, context.DeadlineExceeded):
		structured.LogError(ctx, "Chart request timed out", err, log.ComponentHTTP, log.OpAggregate,
			log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", ""))
		GatewayTimeoutError("request timed out").Write(w)
	default:
		structured.LogError(ctx, "Chart request failed", err, log.ComponentHTTP, log.OpAggregate,
			log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", ""))
		InternalServerError("internal error").Write(w)
	}
}
