package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"Storefront/internal/mail"
	"Storefront/internal/session"
)

const (
	DefaultIDTokenTTL = 1 * time.Hour
	DefaultResetTTL   = 30 * time.Minute
)

type Config struct {
	// ResetURL is the page the reset link points at; the token is added
	// as the `token` query parameter.
	ResetURL   string
	IDTokenTTL time.Duration
	ResetTTL   time.Duration
}

// Provider implements session.Provider on top of a UserStore.
type Provider struct {
	session.Notifier

	store  UserStore
	tokens *TokenMaker
	mailer mail.Mailer
	log    *zap.Logger
	cfg    Config
}

func NewProvider(store UserStore, tokens *TokenMaker, mailer mail.Mailer, log *zap.Logger, cfg Config) *Provider {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.IDTokenTTL <= 0 {
		cfg.IDTokenTTL = DefaultIDTokenTTL
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = DefaultResetTTL
	}
	return &Provider{store: store, tokens: tokens, mailer: mailer, log: log, cfg: cfg}
}

func (p *Provider) Ping(ctx context.Context) error { return p.store.Ping(ctx) }

func (p *Provider) SignIn(ctx context.Context, email, password string) (session.User, error) {
	u, err := p.store.Verify(ctx, email, password)
	if err != nil {
		return session.User{}, providerError(err)
	}
	return p.signedIn(u)
}

func (p *Provider) CreateAccount(ctx context.Context, firstName, lastName, email, password string) (session.User, error) {
	u := User{
		ID:          "u_" + uuid.NewString(),
		Email:       normalizeEmail(email),
		DisplayName: strings.TrimSpace(firstName + " " + lastName),
	}
	if err := p.store.Create(ctx, u, password); err != nil {
		return session.User{}, providerError(err)
	}

	p.log.Info("account created", zap.String("uid", u.ID))
	return p.signedIn(u)
}

func (p *Provider) signedIn(u User) (session.User, error) {
	tok, err := p.tokens.New(u, PurposeID, p.cfg.IDTokenTTL)
	if err != nil {
		p.log.Error("token issue", zap.Error(err))
		return session.User{}, &session.ProviderError{Code: session.CodeInternal, Err: err}
	}

	su := session.User{UID: u.ID, Email: u.Email, DisplayName: u.DisplayName, IDToken: tok}
	p.Set(&su)
	return su, nil
}

// SendPasswordReset mails a link carrying a short-lived reset token.
func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	u, err := p.store.Lookup(ctx, email)
	if err != nil {
		return providerError(err)
	}

	tok, err := p.tokens.New(u, PurposeReset, p.cfg.ResetTTL)
	if err != nil {
		return &session.ProviderError{Code: session.CodeInternal, Err: err}
	}

	link, err := resetLink(p.cfg.ResetURL, tok)
	if err != nil {
		return &session.ProviderError{Code: session.CodeInternal, Err: err}
	}

	err = p.mailer.Send(ctx, mail.Message{
		To:      u.Email,
		ToName:  u.DisplayName,
		Subject: "Reset your password",
		Body:    "Follow this link to reset your password:\n\n" + link + "\n\nIf you did not ask for this, ignore this email.",
	})
	if err != nil {
		return &session.ProviderError{Code: session.CodeNetworkFailed, Err: err}
	}
	return nil
}

// ConfirmPasswordReset sets a new password for the holder of a reset
// token. A token works once: the new hash no longer matches its claims.
func (p *Provider) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	c, err := p.tokens.Parse(token, PurposeReset)
	if err != nil {
		return &session.ProviderError{Code: session.CodeInvalidCredential, Err: err}
	}
	if len(password) < session.MinPasswordLen {
		return session.Errorf(session.CodeWeakPassword, "password shorter than %d", session.MinPasswordLen)
	}

	u, err := p.store.Lookup(ctx, c.Email)
	if errors.Is(err, ErrUserNotFound) {
		return &session.ProviderError{Code: session.CodeInvalidCredential, Err: ErrInvalidToken}
	}
	if err != nil {
		return providerError(err)
	}
	if !c.IssuedFor(u) {
		return &session.ProviderError{Code: session.CodeInvalidCredential, Err: ErrInvalidToken}
	}

	if err := p.store.SetPassword(ctx, u.ID, password); err != nil {
		return providerError(err)
	}
	p.log.Info("password reset", zap.String("uid", u.ID))
	return nil
}

// VerifyIDToken returns the user an ID token was issued to.
func (p *Provider) VerifyIDToken(token string) (session.User, error) {
	c, err := p.tokens.Parse(token, PurposeID)
	if err != nil {
		return session.User{}, &session.ProviderError{Code: session.CodeInvalidCredential, Err: err}
	}
	return session.User{UID: c.UserID, Email: c.Email, DisplayName: c.Name}, nil
}

func (p *Provider) SignOut(context.Context) error {
	p.Set(nil)
	return nil
}

func providerError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return &session.ProviderError{Code: session.CodeInvalidCredential, Err: err}
	case errors.Is(err, ErrEmailExists):
		return &session.ProviderError{Code: session.CodeEmailAlreadyInUse, Err: err}
	case errors.Is(err, ErrUserNotFound):
		return &session.ProviderError{Code: session.CodeUserNotFound, Err: err}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &session.ProviderError{Code: session.CodeNetworkFailed, Err: err}
	default:
		return &session.ProviderError{Code: session.CodeInternal, Err: err}
	}
}

func resetLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("reset url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
