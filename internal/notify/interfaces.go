package notify

import (
	"context"

	"gopkg.in/gomail.v2"
)

// Notifier delivers a drift alert over one channel
//
//go:generate mockery --name=Notifier --output=./mocks
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// Mailer sends composed email messages; *gomail.Dialer satisfies it
//
//go:generate mockery --name=Mailer --output=./mocks
type Mailer interface {
	DialAndSend(m ...*gomail.Message) error
}
