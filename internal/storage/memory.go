package storage

import (
	"context"
	"sync"
)

// Memory is an in-process Storage. Tests use FailSaves to simulate a full
// or disabled store.
type Memory struct {
	mu     sync.RWMutex
	m      map[string][]byte
	saveFn func(key string) error
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string][]byte)}
}

// FailSaves makes every subsequent Save return err (nil restores normal
// behaviour).
func (s *Memory) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		s.saveFn = nil
		return
	}
	s.saveFn = func(string) error { return err }
}

func (s *Memory) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.m[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Memory) Save(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveFn != nil {
		if err := s.saveFn(key); err != nil {
			return err
		}
	}
	s.m[key] = append([]byte(nil), value...)
	return nil
}

func (s *Memory) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.m, key)
	return nil
}

func (s *Memory) Ping(context.Context) error { return nil }
