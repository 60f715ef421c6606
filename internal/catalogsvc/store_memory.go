package catalogsvc

import (
	"context"
	"sort"
	"sync"

	"Storefront/internal/catalog"
)

type MemStore struct {
	mu sync.RWMutex
	m  map[int64]catalog.Product
}

func NewMemStore(seed ...catalog.Product) *MemStore {
	s := &MemStore{m: make(map[int64]catalog.Product, len(seed))}
	for _, p := range seed {
		s.m[p.ID] = p
	}
	return s
}

// NewSeededStore returns a MemStore holding SeedProducts.
func NewSeededStore() *MemStore {
	return NewMemStore(SeedProducts()...)
}

func (s *MemStore) Ping(context.Context) error { return nil }

func (s *MemStore) Put(p catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[p.ID] = p
}

func (s *MemStore) List(_ context.Context, limit, skip int) ([]catalog.Product, int, error) {
	all := s.sorted(func(catalog.Product) bool { return true })
	return page(all, limit, skip), len(all), nil
}

func (s *MemStore) Get(_ context.Context, id int64) (catalog.Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.m[id]
	return p, ok, nil
}

func (s *MemStore) ByCategory(_ context.Context, category string) ([]catalog.Product, error) {
	return s.sorted(func(p catalog.Product) bool { return p.Category == category }), nil
}

func (s *MemStore) Categories(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	out := make([]string, 0, 8)
	for _, p := range s.m {
		if _, ok := seen[p.Category]; ok || p.Category == "" {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemStore) sorted(keep func(catalog.Product) bool) []catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Product, 0, len(s.m))
	for _, p := range s.m {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func page(all []catalog.Product, limit, skip int) []catalog.Product {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(all) {
		return []catalog.Product{}
	}
	end := len(all)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return all[skip:end]
}
