package catalogsvc

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"Storefront/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	// Delay holds every catalog response back, so slow-network behavior
	// (stale responses, loading states) can be reproduced locally.
	Delay time.Duration
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))

	if deps.Registry != nil {
		m := kit.NewMetrics(deps.Registry)
		r.Use(m.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

		if deps.MetricsEnabled {
			r.With(kit.MetricsAuth(deps.MetricsToken)).
				Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
		}
	}

	routes := s.Routes()
	if deps.Delay > 0 {
		routes = delay(deps.Delay)(routes)
	}
	r.Mount("/", routes)
	return r
}

// delay waits d before serving; a request cancelled meanwhile gets no
// response.
func delay(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t := time.NewTimer(d)
			defer t.Stop()

			select {
			case <-r.Context().Done():
				return
			case <-t.C:
			}
			next.ServeHTTP(w, r)
		})
	}
}
