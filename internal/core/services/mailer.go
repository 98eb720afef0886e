package services

import (
	"context"
	"log"
)

// Mailer delivers verification material to users. Delivery mechanics are
// external to this service; implementations must not block the caller for
// longer than a normal request.
type Mailer interface {
	SendActivationCode(ctx context.Context, email, code string) error
	SendActivationLink(ctx context.Context, email, token string) error
	SendPasswordResetCode(ctx context.Context, email, code string) error
}

// logMailer writes outbound mail to the process log. Used in development
// and as the default when no SMTP relay is configured.
type logMailer struct{}

// NewLogMailer creates a mailer that only logs
func NewLogMailer() Mailer {
	return &logMailer{}
}

func (m *logMailer) SendActivationCode(ctx context.Context, email, code string) error {
	log.Printf("📧 [mail] activation code for %s: %s", email, code)
	return nil
}

func (m *logMailer) SendActivationLink(ctx context.Context, email, token string) error {
	log.Printf("📧 [mail] activation link for %s: /api/v1/auth/activate/link/%s", email, token)
	return nil
}

func (m *logMailer) SendPasswordResetCode(ctx context.Context, email, code string) error {
	log.Printf("📧 [mail] password reset code for %s: %s", email, code)
	return nil
}
