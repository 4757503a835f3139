// internal/workers/notification_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/ammerola/resell-orders/internal/pkg/config"
)

// Mailer delivers a plain-text e-mail
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends mail through an SMTP relay
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPMailer creates a mailer for the configured relay. Credentials
// are optional.
func NewSMTPMailer(cfg config.NotificationConfig) *SMTPMailer {
	m := &SMTPMailer{addr: cfg.SMTPAddr, from: cfg.From}
	if cfg.SMTPUser != "" {
		host := cfg.SMTPAddr
		if i := strings.LastIndex(host, ":"); i >= 0 {
			host = host[:i]
		}
		m.auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, host)
	}
	return m
}

// Send implements Mailer
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		m.from, to, subject, body,
	))
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogMailer only logs messages. Used in development and when no relay is
// configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger.With(slog.String("component", "mailer"))}
}

// Send implements Mailer
func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.InfoContext(ctx, "email would be sent",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body))
	return nil
}

// NewMailer picks the mailer for the environment
func NewMailer(cfg *config.Config, logger *slog.Logger) Mailer {
	if cfg.IsDevelopment() || cfg.Notification.SMTPAddr == "" {
		return NewLogMailer(logger)
	}
	return NewSMTPMailer(cfg.Notification)
}

// NotificationProcessor handles low-stock alerts
type NotificationProcessor struct {
	mailer    Mailer
	recipient string
	logger    *slog.Logger
}

// NewNotificationProcessor creates a new notification processor. With an
// empty recipient alerts are only logged.
func NewNotificationProcessor(mailer Mailer, recipient string, logger *slog.Logger) *NotificationProcessor {
	return &NotificationProcessor{
		mailer:    mailer,
		recipient: recipient,
		logger:    logger.With(slog.String("processor", "notification")),
	}
}

// HandleLowStockAlert processes a stock:low_alert task
func (p *NotificationProcessor) HandleLowStockAlert(ctx context.Context, t *asynq.Task) error {
	var alert domain.LowStockAlert
	if err := json.Unmarshal(t.Payload(), &alert); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	p.logger.WarnContext(ctx, "low stock",
		slog.String("product_id", alert.ProductID.String()),
		slog.Int("count", alert.Count),
		slog.Int("threshold", alert.Threshold))

	if p.recipient == "" {
		return nil
	}

	subject := fmt.Sprintf("Low stock: product %s", alert.ProductID)
	body := fmt.Sprintf("Product %s has %d units left (threshold %d).\n", alert.ProductID, alert.Count, alert.Threshold)
	if alert.OrderID != uuid.Nil {
		body += fmt.Sprintf("Triggered by order %s.\n", alert.OrderID)
	}

	if err := p.mailer.Send(ctx, p.recipient, subject, body); err != nil {
		return fmt.Errorf("failed to notify %s: %w", p.recipient, err)
	}

	p.logger.InfoContext(ctx, "low stock notification sent",
		slog.String("product_id", alert.ProductID.String()))
	return nil
}
