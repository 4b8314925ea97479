package notify

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"gopkg.in/gomail.v2"

	"plandrift/internal/config"
	"plandrift/pkg/logging"
)

// EmailNotifier sends alerts over SMTP
type EmailNotifier struct {
	mailer Mailer
	from   string
	logger logging.Logger
}

// NewEmailNotifier creates an EmailNotifier dialing the configured SMTP server
func NewEmailNotifier(cfg *config.EmailConfig, logger logging.Logger) *EmailNotifier {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password)
	return NewEmailNotifierWithMailer(dialer, cfg.From, logger)
}

// NewEmailNotifierWithMailer creates an EmailNotifier with a provided mailer
func NewEmailNotifierWithMailer(mailer Mailer, from string, logger logging.Logger) *EmailNotifier {
	return &EmailNotifier{
		mailer: mailer,
		from:   from,
		logger: logger,
	}
}

// Notify emails the alert to its recipients.
func (n *EmailNotifier) Notify(ctx context.Context, alert Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(alert.Recipients) == 0 {
		return errors.New("no recipients specified")
	}
	for _, r := range alert.Recipients {
		if _, err := mail.ParseAddress(r); err != nil {
			return fmt.Errorf("invalid email address %q: %w", r, err)
		}
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", alert.Recipients...)
	msg.SetHeader("Subject", alert.Subject())
	msg.SetBody("text/plain", alert.Text())

	if err := n.mailer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.logger.Debug("Emailed drift alert for %s to %d recipients", alert.PlanID, len(alert.Recipients))
	return nil
}
