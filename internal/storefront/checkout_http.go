package storefront

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Storefront/internal/checkout"
	"Storefront/internal/contact"
	"Storefront/pkg/kit"
)

func (s *Server) placeOrder(w http.ResponseWriter, r *http.Request) {
	var form checkout.Form
	if !s.decode(w, r, &form) {
		return
	}

	userID, ok := s.orderUserID(w, r)
	if !ok {
		return
	}

	o, err := s.Checkout.Place(r.Context(), form, userID)
	if err != nil {
		s.writeCheckoutError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, o)
}

const msgSessionExpired = "Your session has expired. Please sign in again."

// orderUserID is "" for guests. A signed-in user whose ID token no longer
// verifies is refused rather than checked out as a guest.
func (s *Server) orderUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	u, ok := s.Session.CurrentUser()
	if !ok {
		return "", true
	}
	if s.Tokens == nil {
		return u.UID, true
	}

	v, err := s.Tokens.VerifyIDToken(u.IDToken)
	if err != nil {
		s.logger().Info("checkout with stale session", zap.String("uid", u.UID), zap.Error(err))
		kit.WriteError(w, r, http.StatusUnauthorized, msgSessionExpired, nil)
		return "", false
	}
	return v.UID, true
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := s.Checkout.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeCheckoutError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, o)
}

func (s *Server) confirmOrder(w http.ResponseWriter, r *http.Request) {
	o, err := s.Checkout.Confirm(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeCheckoutError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, o)
}

func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request) {
	if err := s.Checkout.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeCheckoutError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	var fe checkout.FieldErrors
	switch {
	case errors.As(err, &fe):
		kit.WriteError(w, r, http.StatusUnprocessableEntity, "invalid checkout form", fe)
	case errors.Is(err, checkout.ErrEmptyCart):
		kit.WriteError(w, r, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, checkout.ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, checkout.ErrNotPending):
		kit.WriteError(w, r, http.StatusConflict, err.Error(), nil)
	default:
		s.logger().Error("checkout failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "internal error", nil)
	}
}

func (s *Server) submitContact(w http.ResponseWriter, r *http.Request) {
	var form contact.Form
	if !s.decode(w, r, &form) {
		return
	}

	err := s.Contact.Submit(r.Context(), form)
	var fe contact.FieldErrors
	switch {
	case err == nil:
		kit.WriteJSON(w, http.StatusAccepted, map[string]any{"sent": true})
	case errors.As(err, &fe):
		kit.WriteError(w, r, http.StatusUnprocessableEntity, "invalid contact form", fe)
	default:
		kit.WriteError(w, r, http.StatusBadGateway, contact.SendFailedMessage, nil)
	}
}
