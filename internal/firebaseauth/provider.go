// Package firebaseauth is the hosted identity provider: Firebase Auth's
// Admin SDK for accounts and reset links, and the Identity Toolkit REST
// API for password sign-in.
package firebaseauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"Storefront/internal/mail"
	"Storefront/internal/session"
)

const (
	DefaultEndpoint = "https://identitytoolkit.googleapis.com/v1"
	requestTimeout  = 10 * time.Second
	maxBodyBytes    = 1 << 20
)

// AdminClient is the part of *auth.Client the provider calls.
type AdminClient interface {
	CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error)
	PasswordResetLink(ctx context.Context, email string) (string, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

type Config struct {
	ProjectID       string
	CredentialsFile string
	APIKey          string
}

type Provider struct {
	session.Notifier

	admin    AdminClient
	apiKey   string
	mailer   mail.Mailer
	log      *zap.Logger
	client   *http.Client
	Endpoint string
}

// New initialises the Firebase app from cfg. Without a credentials file
// Application Default Credentials are used.
func New(ctx context.Context, cfg Config, mailer mail.Mailer, log *zap.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("firebaseauth: api key is required for password sign-in")
	}

	var opts []option.ClientOption
	if f := strings.TrimSpace(cfg.CredentialsFile); f != "" {
		opts = append(opts, option.WithCredentialsFile(f))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth: %w", err)
	}

	return NewWithClient(client, cfg.APIKey, mailer, log), nil
}

func NewWithClient(admin AdminClient, apiKey string, mailer mail.Mailer, log *zap.Logger) *Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{
		admin:  admin,
		apiKey: apiKey,
		mailer: mailer,
		log:    log,
		client: &http.Client{
			Timeout:   requestTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Endpoint: DefaultEndpoint,
	}
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	IDToken     string `json:"idToken"`
}

type restError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (session.User, error) {
	body, err := json.Marshal(signInRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return session.User{}, err
	}

	u := p.Endpoint + "/accounts:signInWithPassword?key=" + url.QueryEscape(p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return session.User{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return session.User{}, &session.ProviderError{Code: session.CodeNetworkFailed, Err: err}
	}
	defer resp.Body.Close()

	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode != http.StatusOK {
		var re restError
		_ = dec.Decode(&re)
		return session.User{}, &session.ProviderError{
			Code: restCode(re.Error.Message),
			Err:  fmt.Errorf("identity toolkit: status=%d %s", resp.StatusCode, re.Error.Message),
		}
	}

	var out signInResponse
	if err := dec.Decode(&out); err != nil {
		return session.User{}, &session.ProviderError{Code: session.CodeInternal, Err: err}
	}

	su := session.User{UID: out.LocalID, Email: out.Email, DisplayName: out.DisplayName, IDToken: out.IDToken}
	p.Set(&su)
	return su, nil
}

// restCode maps Identity Toolkit error messages such as
// "TOO_MANY_ATTEMPTS_TRY_LATER : ..." to provider codes.
func restCode(msg string) string {
	key, _, _ := strings.Cut(msg, " ")
	switch key {
	case "EMAIL_NOT_FOUND":
		return session.CodeUserNotFound
	case "INVALID_PASSWORD":
		return session.CodeWrongPassword
	case "INVALID_LOGIN_CREDENTIALS":
		return session.CodeInvalidCredential
	case "INVALID_EMAIL":
		return session.CodeInvalidEmail
	case "USER_DISABLED":
		return session.CodeUserDisabled
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return session.CodeTooManyRequests
	case "EMAIL_EXISTS":
		return session.CodeEmailAlreadyInUse
	case "WEAK_PASSWORD":
		return session.CodeWeakPassword
	default:
		return session.CodeInternal
	}
}

// CreateAccount creates the user through the Admin SDK, then signs in so
// the caller holds an ID token like a client SDK sign-up would.
func (p *Provider) CreateAccount(ctx context.Context, firstName, lastName, email, password string) (session.User, error) {
	params := (&fbauth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(strings.TrimSpace(firstName + " " + lastName))

	rec, err := p.admin.CreateUser(ctx, params)
	if err != nil {
		return session.User{}, adminError(err)
	}
	p.log.Info("account created", zap.String("uid", rec.UID))

	return p.SignIn(ctx, email, password)
}

// SendPasswordReset asks Firebase for an out-of-band reset link and mails
// it; the Admin SDK does not send email itself.
func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	link, err := p.admin.PasswordResetLink(ctx, email)
	if err != nil {
		return adminError(err)
	}

	err = p.mailer.Send(ctx, mail.Message{
		To:      email,
		Subject: "Reset your password",
		Body:    "Follow this link to reset your password:\n\n" + link + "\n\nIf you did not ask for this, ignore this email.",
	})
	if err != nil {
		return &session.ProviderError{Code: session.CodeNetworkFailed, Err: err}
	}
	return nil
}

// SignOut revokes the current user's refresh tokens. The local user is
// cleared only when revocation succeeds.
func (p *Provider) SignOut(ctx context.Context) error {
	cur := p.Current()
	if cur == nil {
		return nil
	}
	if err := p.admin.RevokeRefreshTokens(ctx, cur.UID); err != nil {
		return adminError(err)
	}
	p.Set(nil)
	return nil
}

func adminError(err error) error {
	switch {
	case fbauth.IsEmailAlreadyExists(err):
		return &session.ProviderError{Code: session.CodeEmailAlreadyInUse, Err: err}
	case fbauth.IsUserNotFound(err), fbauth.IsEmailNotFound(err):
		return &session.ProviderError{Code: session.CodeUserNotFound, Err: err}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &session.ProviderError{Code: session.CodeNetworkFailed, Err: err}
	default:
		return &session.ProviderError{Code: session.CodeInternal, Err: err}
	}
}
