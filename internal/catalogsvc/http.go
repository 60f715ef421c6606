package catalogsvc

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Storefront/internal/catalog"
	"Storefront/pkg/kit"
)

const defaultPageSize = 30

type Server struct {
	Store Store
	Log   *zap.Logger
}

type listResp struct {
	Products []catalog.Product `json:"products"`
	Total    int               `json:"total"`
	Skip     int               `json:"skip"`
	Limit    int               `json:"limit"`
}

// message is the catalog's error body.
type message struct {
	Message string `json:"message"`
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Store.Ping(ctx); err != nil {
			s.logger().Warn("readyz failed", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/products", s.list)
	r.Get("/products/category-list", s.categories)
	r.Get("/products/category/{category}", s.byCategory)
	r.Get("/products/{id}", s.get)

	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultPageSize)
	skip := queryInt(r, "skip", 0)

	products, total, err := s.Store.List(r.Context(), limit, skip)
	if err != nil {
		s.logger().Error("list products failed", zap.Error(err))
		kit.WriteJSON(w, http.StatusInternalServerError, message{Message: "server error"})
		return
	}
	kit.WriteJSON(w, http.StatusOK, listResp{Products: products, Total: total, Skip: skip, Limit: len(products)})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	notFound := message{Message: fmt.Sprintf("Product with id '%s' not found", raw)}

	id, ok := catalog.ParseID(raw)
	if !ok {
		kit.WriteJSON(w, http.StatusNotFound, notFound)
		return
	}

	p, found, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.logger().Error("get product failed", zap.Error(err), zap.Int64("id", id))
		kit.WriteJSON(w, http.StatusInternalServerError, message{Message: "server error"})
		return
	}
	if !found {
		kit.WriteJSON(w, http.StatusNotFound, notFound)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) byCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	products, err := s.Store.ByCategory(r.Context(), category)
	if err != nil {
		s.logger().Error("list category failed", zap.Error(err), zap.String("category", category))
		kit.WriteJSON(w, http.StatusInternalServerError, message{Message: "server error"})
		return
	}
	kit.WriteJSON(w, http.StatusOK, listResp{Products: products, Total: len(products), Limit: len(products)})
}

func (s *Server) categories(w http.ResponseWriter, r *http.Request) {
	names, err := s.Store.Categories(r.Context())
	if err != nil {
		s.logger().Error("list categories failed", zap.Error(err))
		kit.WriteJSON(w, http.StatusInternalServerError, message{Message: "server error"})
		return
	}
	kit.WriteJSON(w, http.StatusOK, names)
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
