// Package favorites is the saved-products slice. It is a set of product
// snapshots keyed by id, written through to storage on every mutation.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"Storefront/internal/catalog"
	"Storefront/internal/storage"
)

const (
	StorageKey     = "favorites"
	persistTimeout = 2 * time.Second
)

var ErrMalformedSnapshot = errors.New("malformed favorites snapshot")

type Action interface {
	favoritesAction()
}

type (
	AddFavorite    struct{ Product catalog.Product }
	RemoveFavorite struct{ ProductID int64 }
	ClearFavorites struct{}
)

func (AddFavorite) favoritesAction()    {}
func (RemoveFavorite) favoritesAction() {}
func (ClearFavorites) favoritesAction() {}

// Reduce applies a to items and returns a new slice; items is not touched.
func Reduce(items []catalog.Product, a Action) []catalog.Product {
	out := make([]catalog.Product, 0, len(items)+1)

	switch a := a.(type) {
	case AddFavorite:
		out = append(out, items...)
		if indexOf(items, a.Product.ID) < 0 {
			out = append(out, a.Product)
		}
	case RemoveFavorite:
		for _, p := range items {
			if p.ID != a.ProductID {
				out = append(out, p)
			}
		}
	case ClearFavorites:
	default:
		out = append(out, items...)
	}
	return out
}

func indexOf(items []catalog.Product, id int64) int {
	for i, p := range items {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func EncodeSnapshot(items []catalog.Product) ([]byte, error) {
	if items == nil {
		items = []catalog.Product{}
	}
	return json.Marshal(items)
}

// DecodeSnapshot rejects anything but a JSON array of products with
// distinct ids.
func DecodeSnapshot(b []byte) ([]catalog.Product, error) {
	var items []catalog.Product
	if err := json.Unmarshal(b, &items); err != nil {
		return []catalog.Product{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if items == nil {
		return []catalog.Product{}, nil
	}

	seen := make(map[int64]struct{}, len(items))
	for _, p := range items {
		if _, dup := seen[p.ID]; dup {
			return []catalog.Product{}, fmt.Errorf("%w: duplicate product %d", ErrMalformedSnapshot, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return items, nil
}

type Store struct {
	mu         sync.RWMutex
	items      []catalog.Product
	storage    storage.Storage
	log        *zap.Logger
	persistErr error
}

func NewStore(st storage.Storage, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{storage: st, log: log, items: []catalog.Product{}}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	b, err := st.Load(ctx, StorageKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		log.Warn("favorites snapshot load failed", zap.Error(err))
	default:
		items, err := DecodeSnapshot(b)
		if err != nil {
			log.Warn("favorites snapshot discarded", zap.Error(err))
			if err := st.Delete(ctx, StorageKey); err != nil {
				log.Warn("favorites snapshot delete failed", zap.Error(err))
			}
			break
		}
		s.items = items
	}
	return s
}

func (s *Store) Dispatch(a Action) []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = Reduce(s.items, a)

	b, err := EncodeSnapshot(s.items)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		err = s.storage.Save(ctx, StorageKey, b)
		cancel()
	}
	s.persistErr = err
	if err != nil {
		s.log.Error("favorites snapshot write failed", zap.Error(err))
	}

	return append([]catalog.Product(nil), s.items...)
}

func (s *Store) Add(p catalog.Product) []catalog.Product { return s.Dispatch(AddFavorite{Product: p}) }
func (s *Store) Remove(id int64) []catalog.Product       { return s.Dispatch(RemoveFavorite{ProductID: id}) }
func (s *Store) Clear() []catalog.Product                { return s.Dispatch(ClearFavorites{}) }

func (s *Store) Items() []catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]catalog.Product{}, s.items...)
}

func (s *Store) Contains(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.items, id) >= 0
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) PersistErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistErr
}
