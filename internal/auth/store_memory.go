package auth

import (
	"context"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

type MemStore struct {
	mu      sync.RWMutex
	byEmail map[string]User
	cost    int
}

func NewMemStore() *MemStore {
	return &MemStore{byEmail: make(map[string]User), cost: bcrypt.DefaultCost}
}

// NewFastMemStore hashes with the minimum bcrypt cost; for tests.
func NewFastMemStore() *MemStore {
	s := NewMemStore()
	s.cost = bcrypt.MinCost
	return s
}

func (s *MemStore) Ping(context.Context) error { return nil }

func (s *MemStore) Create(_ context.Context, u User, password string) error {
	u.Email = normalizeEmail(u.Email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	u.Hash = hash

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[u.Email]; ok {
		return ErrEmailExists
	}
	s.byEmail[u.Email] = u
	return nil
}

func (s *MemStore) Verify(_ context.Context, email, password string) (User, error) {
	s.mu.RLock()
	u, ok := s.byEmail[normalizeEmail(email)]
	s.mu.RUnlock()

	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.Hash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *MemStore) Lookup(_ context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (s *MemStore) SetPassword(_ context.Context, id, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for email, u := range s.byEmail {
		if u.ID == id {
			u.Hash = hash
			s.byEmail[email] = u
			return nil
		}
	}
	return ErrUserNotFound
}
