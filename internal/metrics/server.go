package metrics

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ulule/limiter/v3"
	lstdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimit returns a per-client limit middleware for a rate such as "20-S"
// or "600-M". Requests over the limit get 429.
func RateLimit(formatted string) (func(http.Handler) http.Handler, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("metrics rate %q: %w", formatted, err)
	}

	mw := lstdlib.NewMiddleware(limiter.New(memory.NewStore(), rate))
	return mw.Handler, nil
}

// NewRouter serves g on GET /metrics behind the scrape limit.
func NewRouter(g prometheus.Gatherer, rate string) (http.Handler, error) {
	limit, err := RateLimit(rate)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(limit)
	r.Method(http.MethodGet, "/metrics", Handler(g))

	return r, nil
}
