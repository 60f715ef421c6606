package session

import (
	"context"
	"net/mail"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// MinPasswordLen applies to new accounts and to password resets.
const MinPasswordLen = 6

type RegisterForm struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Session subscribes to the provider once and keeps the latest user.
type Session struct {
	provider  Provider
	log       *zap.Logger
	onSignOut []func()

	mu          sync.RWMutex
	user        *User
	unsubscribe func()
}

// New subscribes to p. Each onSignOut hook runs after a sign-out the
// provider accepted.
func New(p Provider, log *zap.Logger, onSignOut ...func()) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{provider: p, log: log, onSignOut: onSignOut}
	s.unsubscribe = p.Subscribe(s.observe)
	return s
}

func (s *Session) observe(u *User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()

	if u == nil {
		s.log.Debug("auth state: signed out")
		return
	}
	s.log.Debug("auth state: signed in", zap.String("uid", u.UID))
}

func (s *Session) CurrentUser() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *Session) SignIn(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return User{}, &ValidationError{Field: "email", Message: "Email and password are required"}
	}

	u, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		s.log.Info("sign in failed", zap.String("code", Code(err)), zap.Error(err))
		return User{}, err
	}
	return u, nil
}

func (s *Session) Register(ctx context.Context, f RegisterForm) (User, error) {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = normalizeEmail(f.Email)

	switch {
	case f.FirstName == "" || f.LastName == "":
		return User{}, &ValidationError{Field: "name", Message: "First and last name are required"}
	case !ValidEmail(f.Email):
		return User{}, &ValidationError{Field: "email", Message: messages[CodeInvalidEmail]}
	case f.Password != f.ConfirmPassword:
		return User{}, &ValidationError{Field: "confirmPassword", Message: msgPasswordsDoNotMatch}
	case len(f.Password) < MinPasswordLen:
		return User{}, &ValidationError{Field: "password", Message: messages[CodeWeakPassword]}
	}

	u, err := s.provider.CreateAccount(ctx, f.FirstName, f.LastName, f.Email, f.Password)
	if err != nil {
		s.log.Info("registration failed", zap.String("code", Code(err)), zap.Error(err))
		return User{}, err
	}
	return u, nil
}

func (s *Session) ResetPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}
	if !ValidEmail(email) {
		return &ValidationError{Field: "email", Message: messages[CodeInvalidEmail]}
	}

	if err := s.provider.SendPasswordReset(ctx, email); err != nil {
		s.log.Info("password reset failed", zap.String("code", Code(err)), zap.Error(err))
		return err
	}
	return nil
}

// SignOut signs out with the provider and, only if that worked, runs the
// sign-out hooks.
func (s *Session) SignOut(ctx context.Context) error {
	if err := s.provider.SignOut(ctx); err != nil {
		s.log.Error("sign out failed", zap.Error(err))
		return err
	}
	for _, fn := range s.onSignOut {
		fn()
	}
	return nil
}

func (s *Session) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// ValidEmail reports whether s is a bare address of the form x@y.z.
func ValidEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	if err != nil || a.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return at > 0 && strings.Contains(s[at+1:], ".")
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
