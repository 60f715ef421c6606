// Package session mirrors the identity provider's signed-in user and owns
// the sign-out policy: a successful sign-out also empties the locally held
// cart and favorites.
package session

import (
	"context"
	"sync"
)

type User struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	IDToken     string `json:"idToken,omitempty"`
}

type Listener func(u *User)

// Provider is a hosted or local identity provider. Subscribe delivers the
// current user (nil when signed out) immediately and then every change.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (User, error)
	CreateAccount(ctx context.Context, firstName, lastName, email, password string) (User, error)
	SendPasswordReset(ctx context.Context, email string) error
	SignOut(ctx context.Context) error
	Subscribe(fn Listener) (unsubscribe func())
}

// Notifier is the auth-state stream shared by Provider implementations.
type Notifier struct {
	mu        sync.Mutex
	current   *User
	listeners map[int]Listener
	next      int
}

func (n *Notifier) Subscribe(fn Listener) func() {
	n.mu.Lock()
	if n.listeners == nil {
		n.listeners = make(map[int]Listener)
	}
	id := n.next
	n.next++
	n.listeners[id] = fn
	cur := copyUser(n.current)
	n.mu.Unlock()

	fn(cur)

	return func() {
		n.mu.Lock()
		delete(n.listeners, id)
		n.mu.Unlock()
	}
}

// Set records u as the current user and tells every listener.
func (n *Notifier) Set(u *User) {
	n.mu.Lock()
	n.current = copyUser(u)
	fns := make([]Listener, 0, len(n.listeners))
	for _, fn := range n.listeners {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(copyUser(u))
	}
}

func (n *Notifier) Current() *User {
	n.mu.Lock()
	defer n.mu.Unlock()
	return copyUser(n.current)
}

func copyUser(u *User) *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
