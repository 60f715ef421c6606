package storefront

import (
	"net/http"

	"Storefront/internal/products"
	"Storefront/pkg/kit"
)

type categoryReq struct {
	Category string `json:"category"`
}

type searchReq struct {
	Term string `json:"term"`
}

func (s *Server) listProducts(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.List.View())
}

// fetchProducts is also the retry action after a failed fetch.
func (s *Server) fetchProducts(w http.ResponseWriter, r *http.Request) {
	var v products.ListView
	if c := r.URL.Query().Get("category"); c != "" && c != products.AllCategories {
		v = s.List.FetchByCategory(r.Context(), c)
	} else {
		v = s.List.FetchAll(r.Context())
	}
	kit.WriteJSON(w, http.StatusOK, v)
}

func (s *Server) filterProducts(w http.ResponseWriter, r *http.Request) {
	var req categoryReq
	if !s.decode(w, r, &req) {
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.List.FilterByCategory(req.Category))
}

// setSearchTerm answers before the debounced term is committed.
func (s *Server) setSearchTerm(w http.ResponseWriter, r *http.Request) {
	var req searchReq
	if !s.decode(w, r, &req) {
		return
	}
	s.List.DebounceSearchTerm(req.Term)
	kit.WriteJSON(w, http.StatusAccepted, map[string]any{"pending": req.Term})
}

func (s *Server) clearSearchTerm(w http.ResponseWriter, _ *http.Request) {
	s.List.ClearSearchTerm()
	kit.WriteJSON(w, http.StatusOK, s.List.View())
}

func (s *Server) clearProductsError(w http.ResponseWriter, _ *http.Request) {
	s.List.ClearError()
	kit.WriteJSON(w, http.StatusOK, s.List.View())
}

func (s *Server) clearProducts(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.List.Clear())
}

func (s *Server) productDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.Detail.Fetch(r.Context(), id))
}

func (s *Server) clearDetail(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Detail.Clear())
}

func (s *Server) similarProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	current, err := s.resolveProduct(r.Context(), id)
	if err != nil {
		s.writeResolveError(w, r, id, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products.FetchSimilar(r.Context(), s.Catalog, current, s.Observe))
}

func (s *Server) categories(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") != "" {
		kit.WriteJSON(w, http.StatusOK, s.Categories.Fetch(r.Context()))
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.Categories.Ensure(r.Context()))
}
