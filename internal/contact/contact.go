// Package contact validates contact-form submissions and relays them by
// email.
package contact

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"Storefront/internal/mail"
)

var (
	ErrInvalid = errors.New("invalid contact form")
	ErrSend    = errors.New("contact message not sent")
)

// SendFailedMessage is shown to the user when ErrSend is returned.
const SendFailedMessage = "Failed to send message. Please try again."

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Form struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// FieldErrors maps a form field to the problem with it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	return fmt.Sprintf("%s: %d field(s)", ErrInvalid, len(fe))
}

func (fe FieldErrors) Unwrap() error { return ErrInvalid }

// Validate returns nil or a non-empty FieldErrors.
func (f Form) Validate() error {
	fe := FieldErrors{}

	if strings.TrimSpace(f.Name) == "" {
		fe["name"] = "Name is required"
	}
	switch email := strings.TrimSpace(f.Email); {
	case email == "":
		fe["email"] = "Email is required"
	case !emailRe.MatchString(email):
		fe["email"] = "Please enter a valid email"
	}
	if strings.TrimSpace(f.Message) == "" {
		fe["message"] = "Message is required"
	}

	if len(fe) == 0 {
		return nil
	}
	return fe
}

type Service struct {
	Mailer mail.Mailer
	To     string
	Log    *zap.Logger
}

// Submit sends one email for a valid form. A send failure is returned as
// ErrSend and not retried.
func (s *Service) Submit(ctx context.Context, f Form) error {
	if err := f.Validate(); err != nil {
		return err
	}

	err := s.Mailer.Send(ctx, mail.Message{
		To:      s.To,
		ReplyTo: strings.TrimSpace(f.Email),
		Subject: "Contact form: " + strings.TrimSpace(f.Name),
		Body:    fmt.Sprintf("From: %s <%s>\n\n%s", strings.TrimSpace(f.Name), strings.TrimSpace(f.Email), f.Message),
	})
	if err != nil {
		if s.Log != nil {
			s.Log.Error("contact mail failed", zap.Error(err))
		}
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	return nil
}
