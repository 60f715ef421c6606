// Package mail sends the storefront's transactional email: contact-form
// submissions and password-reset links.
package mail

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("mailer not configured")

type Message struct {
	To      string
	ToName  string
	ReplyTo string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// SendGrid posts through the SendGrid v3 API. Host is only overridden in
// tests.
type SendGrid struct {
	APIKey   string
	From     string
	FromName string
	Host     string
	Log      *zap.Logger
}

func NewSendGrid(apiKey, from string, log *zap.Logger) *SendGrid {
	if log == nil {
		log = zap.NewNop()
	}
	return &SendGrid{APIKey: apiKey, From: from, FromName: "Storefront", Log: log}
}

func (s *SendGrid) Send(ctx context.Context, m Message) error {
	if s.APIKey == "" || s.From == "" {
		return ErrNotConfigured
	}
	if m.To == "" {
		return fmt.Errorf("mail: empty recipient")
	}

	msg := sgmail.NewSingleEmail(
		sgmail.NewEmail(s.FromName, s.From),
		m.Subject,
		sgmail.NewEmail(m.ToName, m.To),
		m.Body,
		fmt.Sprintf("<pre>%s</pre>", m.Body),
	)
	if m.ReplyTo != "" {
		msg.SetReplyTo(sgmail.NewEmail("", m.ReplyTo))
	}

	client := sendgrid.NewSendClient(s.APIKey)
	if s.Host != "" {
		client.BaseURL = s.Host + "/v3/mail/send"
	}

	resp, err := client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		s.Log.Warn("sendgrid rejected mail",
			zap.Int("status", resp.StatusCode),
			zap.String("subject", m.Subject),
		)
		return fmt.Errorf("sendgrid send: status=%d body=%s", resp.StatusCode, resp.Body)
	}

	s.Log.Info("mail sent",
		zap.Int("status", resp.StatusCode),
		zap.String("subject", m.Subject),
	)
	return nil
}

// LogMailer writes messages to the log instead of sending them and keeps
// the most recent ones in memory.
type LogMailer struct {
	Log *zap.Logger

	mu   sync.Mutex
	sent []Message
	err  error
}

const logMailerKeep = 32

func NewLogMailer(log *zap.Logger) *LogMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogMailer{Log: log}
}

func (l *LogMailer) Send(_ context.Context, m Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.err != nil {
		return l.err
	}

	l.Log.Info("mail (not sent)",
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
		zap.String("body", m.Body),
	)

	l.sent = append(l.sent, m)
	if len(l.sent) > logMailerKeep {
		l.sent = l.sent[len(l.sent)-logMailerKeep:]
	}
	return nil
}

// Fail makes every subsequent Send return err; nil restores it.
func (l *LogMailer) Fail(err error) {
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
}

func (l *LogMailer) Sent() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Message(nil), l.sent...)
}

func (l *LogMailer) Last() (Message, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.sent) == 0 {
		return Message{}, false
	}
	return l.sent[len(l.sent)-1], true
}
