package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"Storefront/internal/cart"
)

type Service struct {
	Cart  *cart.Store
	Store Store
	Log   *zap.Logger

	now func() time.Time
}

func NewService(c *cart.Store, st Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Cart: c, Store: st, Log: log, now: time.Now}
}

// Place validates f and snapshots the cart into a pending order. The cart
// itself is left as is until Confirm.
func (s *Service) Place(ctx context.Context, f Form, userID string) (Order, error) {
	if err := f.Validate(); err != nil {
		return Order{}, err
	}

	st := s.Cart.State()
	if len(st.Entries) == 0 {
		return Order{}, ErrEmptyCart
	}

	o := Order{
		ID:            newOrderID(),
		UserID:        userID,
		Status:        StatusPending,
		PaymentMethod: f.method(),
		ShipTo: ShipTo{
			FirstName: strings.TrimSpace(f.FirstName),
			LastName:  strings.TrimSpace(f.LastName),
			Address:   strings.TrimSpace(f.Address),
			City:      strings.TrimSpace(f.City),
			ZipCode:   strings.TrimSpace(f.ZipCode),
			Country:   strings.TrimSpace(f.Country),
		},
		Items:     itemsFrom(st),
		Quote:     NewQuote(st.Subtotal),
		CreatedAt: s.now().UTC(),
	}
	if o.PaymentMethod == PayCredit {
		o.CardLast4 = last4(f.CardNumber)
	}

	if err := s.Store.Create(ctx, o); err != nil {
		return Order{}, err
	}
	return o, nil
}

// Confirm marks a pending order confirmed and clears the cart.
func (s *Service) Confirm(ctx context.Context, id string) (Order, error) {
	o, err := s.pending(ctx, id)
	if err != nil {
		return Order{}, err
	}

	if err := s.Store.SetStatus(ctx, id, StatusConfirmed); err != nil {
		return Order{}, err
	}
	o.Status = StatusConfirmed

	s.Log.Info("order confirmed",
		zap.String("order_id", o.ID),
		zap.String("user_id", o.UserID),
		zap.Int("lines", len(o.Items)),
		zap.Float64("total", o.Quote.Total),
	)

	s.Cart.ClearCart()
	return o, nil
}

// Cancel drops a pending order; the cart is untouched.
func (s *Service) Cancel(ctx context.Context, id string) error {
	if _, err := s.pending(ctx, id); err != nil {
		return err
	}
	return s.Store.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	o, found, err := s.Store.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !found {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (s *Service) pending(ctx context.Context, id string) (Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if o.Status != StatusPending {
		return Order{}, ErrNotPending
	}
	return o, nil
}

func newOrderID() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
