// Package storefront is the JSON HTTP surface a view layer drives: it
// reads the product cache, cart, favorites and session, and dispatches
// their commands.
package storefront

import (
	"context"
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
	Metrics  *kit.Metrics

	MetricsEnabled bool
	MetricsToken   string
}

// ReadyCheck is one dependency /readyz pings.
type ReadyCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

const (
	readyTimeout           = 2 * time.Second
	authLimitWindow        = 60 * time.Second
	defaultAuthLimitPerMin = 10
)

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	setupMiddleware(r, deps)
	setupMetrics(r, deps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", s.readyz)

	s.routes(r)
	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))
	}

	if !deps.MetricsEnabled || deps.Registry == nil {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	for _, c := range s.Ready {
		if err := c.Ping(ctx); err != nil {
			s.logger().Warn("readyz failed: "+c.Name, zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, c.Name+" not ready", nil)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) routes(r chi.Router) {
	limit := s.AuthLimitPerMin
	if limit <= 0 {
		limit = defaultAuthLimitPerMin
	}
	loginLimiter := kit.NewIPRateLimiter(limit, authLimitWindow)
	registerLimiter := kit.NewIPRateLimiter(limit, authLimitWindow)
	resetLimiter := kit.NewIPRateLimiter(limit, authLimitWindow)

	r.Route("/products", func(rr chi.Router) {
		rr.Get("/", s.listProducts)
		rr.Delete("/", s.clearProducts)
		rr.Post("/fetch", s.fetchProducts)
		rr.Post("/filter", s.filterProducts)
		rr.Put("/search", s.setSearchTerm)
		rr.Delete("/search", s.clearSearchTerm)
		rr.Delete("/error", s.clearProductsError)
		rr.Delete("/detail", s.clearDetail)
		rr.Get("/{id}", s.productDetail)
		rr.Get("/{id}/similar", s.similarProducts)
	})
	r.Get("/categories", s.categories)

	r.Route("/cart", func(rr chi.Router) {
		rr.Get("/", s.getCart)
		rr.Delete("/", s.clearCart)
		rr.Post("/reload", s.reloadCart)
		rr.Post("/items", s.addToCart)
		rr.Put("/items/{id}", s.updateQuantity)
		rr.Delete("/items/{id}", s.removeFromCart)
		rr.Post("/items/{id}/increase", s.increaseQuantity)
		rr.Post("/items/{id}/decrease", s.decreaseQuantity)
	})

	r.Route("/favorites", func(rr chi.Router) {
		rr.Get("/", s.getFavorites)
		rr.Post("/", s.addFavorite)
		rr.Delete("/", s.clearFavorites)
		rr.Delete("/{id}", s.removeFavorite)
	})

	r.Route("/session", func(rr chi.Router) {
		rr.Get("/", s.getSession)
		rr.With(loginLimiter.Middleware).Post("/login", s.login)
		rr.With(registerLimiter.Middleware).Post("/register", s.register)
		rr.With(resetLimiter.Middleware).Post("/password-reset", s.passwordReset)
		if s.Resets != nil {
			rr.With(resetLimiter.Middleware).Post("/password-reset/confirm", s.confirmPasswordReset)
		}
		rr.Post("/logout", s.logout)
	})

	r.Route("/checkout", func(rr chi.Router) {
		rr.Post("/", s.placeOrder)
		rr.Get("/{id}", s.getOrder)
		rr.Post("/{id}/confirm", s.confirmOrder)
		rr.Delete("/{id}", s.cancelOrder)
	})

	r.Post("/contact", s.submitContact)
}
