// Package notify sends order confirmation and cancellation emails. Dispatch
// is fire-and-forget: handlers spawn it after the transaction commits and
// never wait on the outcome; failures are logged, not surfaced.
package notify

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Mailer struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

// NewMailer returns a disabled mailer when no SMTP host is configured, so
// callers never need to nil-check.
func NewMailer(host string, port int, user, pass, from string, logger *zap.Logger) *Mailer {
	m := &Mailer{from: from, logger: logger}
	if host != "" {
		m.dialer = gomail.NewDialer(host, port, user, pass)
	}
	return m
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.dialer != nil
}

// SendOrderConfirmation is meant to run in its own goroutine.
func (m *Mailer) SendOrderConfirmation(to, orderID string, total float64) {
	subject := "Order confirmation"
	body := fmt.Sprintf(
		"Thank you for your order.\n\nOrder reference: %s\nTotal: %.3f KD\n\nWe will contact you when your order ships.",
		orderID, total,
	)
	m.send(to, orderID, "order_confirmation", subject, body)
}

// SendOrderCancellation is meant to run in its own goroutine.
func (m *Mailer) SendOrderCancellation(to, orderID string) {
	subject := "Order canceled"
	body := fmt.Sprintf(
		"Your order %s has been canceled.\n\nIf this was not you, please contact support.",
		orderID,
	)
	m.send(to, orderID, "order_cancellation", subject, body)
}

func (m *Mailer) send(to, orderID, kind, subject, body string) {
	if !m.Enabled() {
		m.logger.Debug("mailer disabled, skipping dispatch",
			zap.String("kind", kind),
			zap.String("order_id", orderID))
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("notification dispatch failed",
			zap.String("kind", kind),
			zap.String("order_id", orderID),
			zap.Error(err))
		return
	}

	m.logger.Info("notification dispatched",
		zap.String("kind", kind),
		zap.String("order_id", orderID))
}
