package firebaseauth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"Storefront/internal/firebaseauth"
	"Storefront/internal/mail"
	"Storefront/internal/session"
)

type fakeAdmin struct {
	created   []*fbauth.UserToCreate
	createErr error
	resetErr  error
	revokeErr error
	revoked   []string
}

func (f *fakeAdmin) CreateUser(_ context.Context, u *fbauth.UserToCreate) (*fbauth.UserRecord, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, u)
	return &fbauth.UserRecord{UserInfo: &fbauth.UserInfo{UID: "fb-uid"}}, nil
}

func (f *fakeAdmin) PasswordResetLink(_ context.Context, email string) (string, error) {
	if f.resetErr != nil {
		return "", f.resetErr
	}
	return "https://shop.firebaseapp.com/__/auth/action?mode=resetPassword&oobCode=abc&email=" + email, nil
}

func (f *fakeAdmin) RevokeRefreshTokens(_ context.Context, uid string) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.revoked = append(f.revoked, uid)
	return nil
}

// identityToolkit accepts ada@example.com / secret1 and answers everything
// else with the given error message.
func identityToolkit(t *testing.T, failure string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts:signInWithPassword", r.URL.Path)
		assert.Equal(t, "api-key", r.URL.Query().Get("key"))

		var req struct {
			Email             string `json:"email"`
			Password          string `json:"password"`
			ReturnSecureToken bool   `json:"returnSecureToken"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.ReturnSecureToken)

		w.Header().Set("Content-Type", "application/json")
		if req.Email == "ada@example.com" && req.Password == "secret1" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"localId":     "fb-uid",
				"email":       req.Email,
				"displayName": "Ada Lovelace",
				"idToken":     "id-token",
			})
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 400, "message": failure},
		})
	}))
}

func newProvider(t *testing.T, admin *fakeAdmin, failure string) (*firebaseauth.Provider, *mail.LogMailer) {
	t.Helper()

	srv := identityToolkit(t, failure)
	t.Cleanup(srv.Close)

	m := mail.NewLogMailer(nil)
	p := firebaseauth.NewWithClient(admin, "api-key", m, zap.NewNop())
	p.Endpoint = srv.URL
	return p, m
}

func TestSignIn(t *testing.T) {
	p, _ := newProvider(t, &fakeAdmin{}, "INVALID_LOGIN_CREDENTIALS")

	u, err := p.SignIn(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, session.User{UID: "fb-uid", Email: "ada@example.com", DisplayName: "Ada Lovelace", IDToken: "id-token"}, u)
	require.NotNil(t, p.Current())

	_, err = p.SignIn(context.Background(), "ada@example.com", "nope")
	assert.Equal(t, session.CodeInvalidCredential, session.Code(err))
}

func TestSignInErrorCodes(t *testing.T) {
	for msg, code := range map[string]string{
		"EMAIL_NOT_FOUND":                               session.CodeUserNotFound,
		"INVALID_PASSWORD":                              session.CodeWrongPassword,
		"USER_DISABLED":                                 session.CodeUserDisabled,
		"TOO_MANY_ATTEMPTS_TRY_LATER : Access disabled": session.CodeTooManyRequests,
		"SOMETHING_NEW":                                 session.CodeInternal,
	} {
		t.Run(msg, func(t *testing.T) {
			p, _ := newProvider(t, &fakeAdmin{}, msg)
			_, err := p.SignIn(context.Background(), "x@example.com", "whatever")
			assert.Equal(t, code, session.Code(err))
			assert.Nil(t, p.Current())
		})
	}
}

func TestSignInUnreachable(t *testing.T) {
	p := firebaseauth.NewWithClient(&fakeAdmin{}, "api-key", mail.NewLogMailer(nil), nil)
	p.Endpoint = "http://127.0.0.1:1"

	_, err := p.SignIn(context.Background(), "ada@example.com", "secret1")
	assert.Equal(t, session.CodeNetworkFailed, session.Code(err))
}

func TestCreateAccountSignsIn(t *testing.T) {
	admin := &fakeAdmin{}
	p, _ := newProvider(t, admin, "INVALID_LOGIN_CREDENTIALS")

	u, err := p.CreateAccount(context.Background(), "Ada", "Lovelace", "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "fb-uid", u.UID)
	assert.Len(t, admin.created, 1)
}

func TestCreateAccountFailure(t *testing.T) {
	p, _ := newProvider(t, &fakeAdmin{createErr: errors.New("backend exploded")}, "")

	_, err := p.CreateAccount(context.Background(), "Ada", "L", "ada@example.com", "secret1")
	assert.Equal(t, session.CodeInternal, session.Code(err))
	assert.Equal(t, session.DefaultMessage, session.Message(err))
}

func TestSendPasswordResetMailsLink(t *testing.T) {
	p, m := newProvider(t, &fakeAdmin{}, "")

	require.NoError(t, p.SendPasswordReset(context.Background(), "ada@example.com"))
	msg, ok := m.Last()
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Contains(t, msg.Body, "mode=resetPassword")
}

func TestSignOutRevokes(t *testing.T) {
	admin := &fakeAdmin{}
	p, _ := newProvider(t, admin, "")

	require.NoError(t, p.SignOut(context.Background()), "signed-out sign-out is a no-op")
	assert.Empty(t, admin.revoked)

	_, err := p.SignIn(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)

	admin.revokeErr = errors.New("unavailable")
	assert.Error(t, p.SignOut(context.Background()))
	assert.NotNil(t, p.Current())

	admin.revokeErr = nil
	require.NoError(t, p.SignOut(context.Background()))
	assert.Equal(t, []string{"fb-uid"}, admin.revoked)
	assert.Nil(t, p.Current())
}
