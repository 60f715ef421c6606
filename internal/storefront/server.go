package storefront

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Storefront/internal/cart"
	"Storefront/internal/catalog"
	"Storefront/internal/checkout"
	"Storefront/internal/contact"
	"Storefront/internal/favorites"
	"Storefront/internal/products"
	"Storefront/internal/session"
	"Storefront/pkg/kit"
)

// PasswordResetter completes a mailed password reset. Only the local
// provider has one; hosted providers finish resets on their own pages.
type PasswordResetter interface {
	ConfirmPasswordReset(ctx context.Context, token, password string) error
}

// IDTokenVerifier checks the signed-in user's ID token before an order is
// stamped with their uid.
type IDTokenVerifier interface {
	VerifyIDToken(token string) (session.User, error)
}

type Server struct {
	Log *zap.Logger

	Catalog    products.Gateway
	List       *products.ListSlice
	Detail     *products.DetailSlice
	Categories *products.CategoriesSlice
	Observe    products.Observer

	Cart      *cart.Store
	Favorites *favorites.Store
	Session   *session.Session
	Resets    PasswordResetter
	Tokens    IDTokenVerifier
	Checkout  *checkout.Service
	Contact   *contact.Service

	Ready           []ReadyCheck
	AuthLimitPerMin int
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

type productIDReq struct {
	ProductID int64 `json:"product_id"`
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := kit.DecodeJSON(w, r, v); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, ok := catalog.ParseID(raw)
	if !ok {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid product id", map[string]any{"id": raw})
		return 0, false
	}
	return id, true
}

var errNoProductID = errors.New("product_id required")

// resolveProduct finds the snapshot to store for id: the product being
// viewed, then the loaded list, then the catalog itself.
func (s *Server) resolveProduct(ctx context.Context, id int64) (catalog.Product, error) {
	if id <= 0 {
		return catalog.Product{}, errNoProductID
	}
	if p, ok := s.Detail.Current(); ok && p.ID == id {
		return p, nil
	}
	if p, ok := s.List.Find(id); ok {
		return p, nil
	}
	return s.Catalog.Get(ctx, id)
}

func (s *Server) writeResolveError(w http.ResponseWriter, r *http.Request, id int64, err error) {
	switch {
	case errors.Is(err, errNoProductID):
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, catalog.ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, catalog.UpstreamMessage(err, "product not found"), map[string]any{"id": id})
	default:
		s.logger().Warn("product lookup failed", zap.Int64("product_id", id), zap.Error(err))
		kit.WriteError(w, r, http.StatusBadGateway, catalog.UpstreamMessage(err, "Failed to fetch product"), nil)
	}
}
