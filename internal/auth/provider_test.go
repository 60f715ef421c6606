package auth_test

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"Storefront/internal/auth"
	"Storefront/internal/mail"
	"Storefront/internal/session"
)

func newProvider(t *testing.T) (*auth.Provider, *mail.LogMailer) {
	t.Helper()

	m := mail.NewLogMailer(zap.NewNop())
	p := auth.NewProvider(
		auth.NewFastMemStore(),
		auth.NewTokenMaker("test-secret"),
		m,
		zap.NewNop(),
		auth.Config{ResetURL: "http://shop.local/reset-password"},
	)
	return p, m
}

func TestCreateAccountSignsIn(t *testing.T) {
	p, _ := newProvider(t)

	var seen []*session.User
	unsub := p.Subscribe(func(u *session.User) { seen = append(seen, u) })
	defer unsub()

	u, err := p.CreateAccount(context.Background(), "Ada", "Lovelace", " Ada@Example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, "Ada Lovelace", u.DisplayName)
	assert.True(t, strings.HasPrefix(u.UID, "u_"))
	assert.NotEmpty(t, u.IDToken)

	require.Len(t, seen, 2)
	assert.Nil(t, seen[0])
	assert.Equal(t, u.UID, seen[1].UID)

	got, err := p.VerifyIDToken(u.IDToken)
	require.NoError(t, err)
	assert.Equal(t, u.UID, got.UID)
	assert.Equal(t, "Ada Lovelace", got.DisplayName)
}

func TestDuplicateAccount(t *testing.T) {
	p, _ := newProvider(t)
	ctx := context.Background()

	_, err := p.CreateAccount(ctx, "Ada", "L", "ada@example.com", "secret1")
	require.NoError(t, err)

	_, err = p.CreateAccount(ctx, "Ada", "L", "ADA@example.com", "secret2")
	assert.Equal(t, session.CodeEmailAlreadyInUse, session.Code(err))
}

func TestSignInAndOut(t *testing.T) {
	p, _ := newProvider(t)
	ctx := context.Background()

	_, err := p.CreateAccount(ctx, "Ada", "L", "ada@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, p.SignOut(ctx))
	assert.Nil(t, p.Current())

	_, err = p.SignIn(ctx, "ada@example.com", "wrong!")
	assert.Equal(t, session.CodeInvalidCredential, session.Code(err))
	assert.Nil(t, p.Current())

	u, err := p.SignIn(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, p.Current())
	assert.Equal(t, u.UID, p.Current().UID)
}

func TestPasswordResetFlow(t *testing.T) {
	p, m := newProvider(t)
	ctx := context.Background()

	_, err := p.CreateAccount(ctx, "Ada", "L", "ada@example.com", "secret1")
	require.NoError(t, err)

	err = p.SendPasswordReset(ctx, "nobody@example.com")
	assert.Equal(t, session.CodeUserNotFound, session.Code(err))

	require.NoError(t, p.SendPasswordReset(ctx, "ada@example.com"))
	msg, ok := m.Last()
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", msg.To)

	token := tokenFromBody(t, msg.Body)

	_, err = p.VerifyIDToken(token)
	assert.Error(t, err, "reset tokens are not ID tokens")

	require.NoError(t, p.ConfirmPasswordReset(ctx, token, "newpass1"))

	_, err = p.SignIn(ctx, "ada@example.com", "secret1")
	assert.Error(t, err)
	_, err = p.SignIn(ctx, "ada@example.com", "newpass1")
	assert.NoError(t, err)
}

func TestPasswordResetRejectsShortPasswords(t *testing.T) {
	p, m := newProvider(t)
	ctx := context.Background()

	_, err := p.CreateAccount(ctx, "Ada", "L", "ada@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, p.SendPasswordReset(ctx, "ada@example.com"))
	msg, _ := m.Last()
	token := tokenFromBody(t, msg.Body)

	for _, pw := range []string{"", "x", "12345"} {
		err := p.ConfirmPasswordReset(ctx, token, pw)
		assert.Equal(t, session.CodeWeakPassword, session.Code(err), "password %q", pw)
	}

	_, err = p.SignIn(ctx, "ada@example.com", "secret1")
	assert.NoError(t, err, "old password still works")

	// rejected attempts do not spend the token
	assert.NoError(t, p.ConfirmPasswordReset(ctx, token, "newpass1"))
}

func TestPasswordResetTokenIsSingleUse(t *testing.T) {
	p, m := newProvider(t)
	ctx := context.Background()

	_, err := p.CreateAccount(ctx, "Ada", "L", "ada@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, p.SendPasswordReset(ctx, "ada@example.com"))
	msg, _ := m.Last()
	first := tokenFromBody(t, msg.Body)

	require.NoError(t, p.SendPasswordReset(ctx, "ada@example.com"))
	msg, _ = m.Last()
	second := tokenFromBody(t, msg.Body)

	require.NoError(t, p.ConfirmPasswordReset(ctx, first, "newpass1"))

	err = p.ConfirmPasswordReset(ctx, first, "another1")
	assert.Equal(t, session.CodeInvalidCredential, session.Code(err))
	err = p.ConfirmPasswordReset(ctx, second, "another1")
	assert.Equal(t, session.CodeInvalidCredential, session.Code(err), "older links die with the password")

	_, err = p.SignIn(ctx, "ada@example.com", "newpass1")
	assert.NoError(t, err)
	_, err = p.SignIn(ctx, "ada@example.com", "another1")
	assert.Error(t, err)
}

func TestResetMailFailureIsNetworkError(t *testing.T) {
	p, m := newProvider(t)
	ctx := context.Background()

	_, err := p.CreateAccount(ctx, "Ada", "L", "ada@example.com", "secret1")
	require.NoError(t, err)

	m.Fail(mail.ErrNotConfigured)
	err = p.SendPasswordReset(ctx, "ada@example.com")
	assert.Equal(t, session.CodeNetworkFailed, session.Code(err))
}

func TestTokenMaker(t *testing.T) {
	tm := auth.NewTokenMaker("k1")
	u := auth.User{ID: "u_1", Email: "a@b.co"}

	tok, err := tm.New(u, auth.PurposeID, time.Minute)
	require.NoError(t, err)

	c, err := tm.Parse(tok, auth.PurposeID)
	require.NoError(t, err)
	assert.Equal(t, "u_1", c.UserID)

	_, err = tm.Parse(tok, auth.PurposeReset)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = auth.NewTokenMaker("k2").Parse(tok, auth.PurposeID)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	expired, err := tm.New(u, auth.PurposeID, -time.Minute)
	require.NoError(t, err)
	_, err = tm.Parse(expired, auth.PurposeID)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func tokenFromBody(t *testing.T, body string) string {
	t.Helper()

	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "http") {
			continue
		}
		u, err := url.Parse(line)
		require.NoError(t, err)
		assert.Equal(t, "/reset-password", u.Path)
		return u.Query().Get("token")
	}
	t.Fatalf("no link in %q", body)
	return ""
}
