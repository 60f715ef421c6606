package mail_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"Storefront/internal/mail"
)

func TestSendGrid_PostsMessage(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sg := mail.NewSendGrid("SG.key", "shop@example.com", zap.NewNop())
	sg.Host = srv.URL

	err := sg.Send(context.Background(), mail.Message{
		To:      "owner@example.com",
		ReplyTo: "ada@example.com",
		Subject: "Contact form",
		Body:    "hello",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer SG.key", auth)
	assert.Equal(t, "Contact form", got["subject"])
	from, _ := got["from"].(map[string]any)
	assert.Equal(t, "shop@example.com", from["email"])
	replyTo, _ := got["reply_to"].(map[string]any)
	assert.Equal(t, "ada@example.com", replyTo["email"])
}

func TestSendGrid_RejectedStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	sg := mail.NewSendGrid("SG.bad", "shop@example.com", nil)
	sg.Host = srv.URL

	err := sg.Send(context.Background(), mail.Message{To: "a@b.co", Subject: "x", Body: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=401")
}

func TestSendGrid_NotConfigured(t *testing.T) {
	err := mail.NewSendGrid("", "", nil).Send(context.Background(), mail.Message{To: "a@b.co"})
	assert.ErrorIs(t, err, mail.ErrNotConfigured)
}

func TestLogMailer(t *testing.T) {
	l := mail.NewLogMailer(nil)

	_, ok := l.Last()
	assert.False(t, ok)

	require.NoError(t, l.Send(context.Background(), mail.Message{To: "a@b.co", Subject: "one"}))
	require.NoError(t, l.Send(context.Background(), mail.Message{To: "a@b.co", Subject: "two"}))

	last, ok := l.Last()
	require.True(t, ok)
	assert.Equal(t, "two", last.Subject)
	assert.Len(t, l.Sent(), 2)

	boom := errors.New("relay down")
	l.Fail(boom)
	assert.ErrorIs(t, l.Send(context.Background(), mail.Message{}), boom)
	assert.Len(t, l.Sent(), 2)
}
