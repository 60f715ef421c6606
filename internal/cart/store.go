package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"Storefront/internal/catalog"
	"Storefront/internal/storage"
)

const persistTimeout = 2 * time.Second

// Store is the single source of truth for the cart. Every Dispatch is
// followed by a synchronous write of the whole state; a failed write is
// logged and the in-memory state stays authoritative.
type Store struct {
	mu         sync.RWMutex
	state      State
	storage    storage.Storage
	log        *zap.Logger
	persistErr error
}

// NewStore seeds the cart from the persisted snapshot. A missing or
// malformed snapshot yields an empty cart; a malformed one is deleted.
func NewStore(st storage.Storage, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{storage: st, log: log}
	s.state = s.load()
	return s
}

func (s *Store) load() State {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	b, err := s.storage.Load(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return Empty()
	}
	if err != nil {
		s.log.Warn("cart snapshot load failed", zap.Error(err))
		return Empty()
	}

	st, err := DecodeSnapshot(b)
	if err != nil {
		s.log.Warn("cart snapshot discarded", zap.Error(err))
		if err := s.storage.Delete(ctx, StorageKey); err != nil {
			s.log.Warn("cart snapshot delete failed", zap.Error(err))
		}
		return Empty()
	}
	return st
}

func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatchLocked(a)
}

func (s *Store) dispatchLocked(a Action) State {
	s.state = Reduce(s.state, a)
	s.persistLocked()
	return s.state.clone()
}

func (s *Store) persistLocked() {
	b, err := EncodeSnapshot(s.state)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		err = s.storage.Save(ctx, StorageKey, b)
		cancel()
	}
	s.persistErr = err
	if err != nil {
		s.log.Error("cart snapshot write failed", zap.Error(err))
	}
}

func (s *Store) AddToCart(p catalog.Product) State { return s.Dispatch(Add{Product: p}) }
func (s *Store) RemoveFromCart(id int64) State    { return s.Dispatch(Remove{ProductID: id}) }
func (s *Store) IncreaseQuantity(id int64) State  { return s.Dispatch(Increase{ProductID: id}) }
func (s *Store) DecreaseQuantity(id int64) State  { return s.Dispatch(Decrease{ProductID: id}) }
func (s *Store) ClearCart() State                 { return s.Dispatch(Clear{}) }

// SetQuantity writes qty verbatim, including values below 1. Prefer
// UpdateQuantity unless the caller has already clamped.
func (s *Store) SetQuantity(id int64, qty int) State {
	return s.Dispatch(SetQuantity{ProductID: id, Quantity: qty})
}

// UpdateQuantity is the clamped form of SetQuantity: qty < 1 removes the
// entry and qty above a positive stock level is cut down to stock.
func (s *Store) UpdateQuantity(id int64, qty int) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	var a Action = SetQuantity{ProductID: id, Quantity: qty}
	switch e, ok := s.state.Find(id); {
	case qty < 1:
		a = Remove{ProductID: id}
	case ok && e.Product.Stock > 0 && qty > e.Product.Stock:
		a = SetQuantity{ProductID: id, Quantity: e.Product.Stock}
	}
	return s.dispatchLocked(a)
}

// Reload replaces the in-memory cart with whatever is persisted.
func (s *Store) Reload() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatchLocked(Replace{State: s.load()})
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *Store) Contains(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.state.Find(id)
	return ok
}

func (s *Store) LineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.LineCount()
}

func (s *Store) UnitCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.UnitCount()
}

func (s *Store) Subtotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Subtotal
}

// PersistErr reports the outcome of the most recent snapshot write.
func (s *Store) PersistErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistErr
}
