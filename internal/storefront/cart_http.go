package storefront

import (
	"net/http"

	"Storefront/internal/cart"
	"Storefront/internal/catalog"
	"Storefront/pkg/kit"
)

type cartView struct {
	Items        []cart.Entry `json:"items"`
	Subtotal     float64      `json:"subtotal"`
	LineCount    int          `json:"lineCount"`
	UnitCount    int          `json:"unitCount"`
	PersistError string       `json:"persistError,omitempty"`
}

func (s *Server) cartView(st cart.State) cartView {
	v := cartView{
		Items:     st.Entries,
		Subtotal:  st.Subtotal,
		LineCount: st.LineCount(),
		UnitCount: st.UnitCount(),
	}
	if err := s.Cart.PersistErr(); err != nil {
		v.PersistError = err.Error()
	}
	return v
}

type quantityReq struct {
	Quantity int `json:"quantity"`
}

func (s *Server) getCart(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.cartView(s.Cart.State()))
}

func (s *Server) reloadCart(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.cartView(s.Cart.Reload()))
}

func (s *Server) clearCart(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.cartView(s.Cart.ClearCart()))
}

func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	var req productIDReq
	if !s.decode(w, r, &req) {
		return
	}

	p, err := s.resolveProduct(r.Context(), req.ProductID)
	if err != nil {
		s.writeResolveError(w, r, req.ProductID, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.cartView(s.Cart.AddToCart(p)))
}

func (s *Server) removeFromCart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.cartView(s.Cart.RemoveFromCart(id)))
}

func (s *Server) increaseQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.cartView(s.Cart.IncreaseQuantity(id)))
}

func (s *Server) decreaseQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.cartView(s.Cart.DecreaseQuantity(id)))
}

// updateQuantity goes through the clamped entry point: below 1 removes the
// line, above stock is cut to stock.
func (s *Server) updateQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req quantityReq
	if !s.decode(w, r, &req) {
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.cartView(s.Cart.UpdateQuantity(id, req.Quantity)))
}

type favoritesView struct {
	Items        []catalog.Product `json:"items"`
	Count        int               `json:"count"`
	PersistError string            `json:"persistError,omitempty"`
}

func (s *Server) favoritesView(items []catalog.Product) favoritesView {
	v := favoritesView{Items: items, Count: len(items)}
	if err := s.Favorites.PersistErr(); err != nil {
		v.PersistError = err.Error()
	}
	return v
}

func (s *Server) getFavorites(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.favoritesView(s.Favorites.Items()))
}

func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request) {
	var req productIDReq
	if !s.decode(w, r, &req) {
		return
	}

	p, err := s.resolveProduct(r.Context(), req.ProductID)
	if err != nil {
		s.writeResolveError(w, r, req.ProductID, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.favoritesView(s.Favorites.Add(p)))
}

func (s *Server) removeFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.favoritesView(s.Favorites.Remove(id)))
}

func (s *Server) clearFavorites(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.favoritesView(s.Favorites.Clear()))
}
