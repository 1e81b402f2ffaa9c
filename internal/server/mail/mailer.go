// Package mail delivers registration activation codes over SMTP.
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/dmitrijs2005/identity/internal/common"
	"github.com/dmitrijs2005/identity/internal/server/config"
)

// Mailer sends an activation code to a newly registered user.
type Mailer interface {
	SendActivationCode(ctx context.Context, to string, code string) error
}

// SMTPMailer is the production Mailer. It dials the configured relay for
// every message; registration volume does not justify a held connection.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	sender string
}

// NewSMTPMailer creates a Mailer for the given relay. The service name is
// used in the From display name.
func NewSMTPMailer(cfg config.SMTPConfig, serviceName string) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, sender: serviceName + " Registration"}
}

func (m *SMTPMailer) SendActivationCode(ctx context.Context, to string, code string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(m.sender, m.cfg.User); err != nil {
		return fmt.Errorf("%w: invalid sender: %v", common.ErrMailDelivery, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("%w: invalid recipient: %v", common.ErrMailDelivery, err)
	}
	msg.Subject("Registration Activation Code")
	msg.SetBodyString(gomail.TypeTextPlain, fmt.Sprintf("Your activation code: %s", code))

	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.User),
		gomail.WithPassword(m.cfg.Password),
	}
	if m.cfg.Secure {
		opts = append(opts, gomail.WithSSL())
	}

	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrMailDelivery, err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", common.ErrMailDelivery, err)
	}
	return nil
}
