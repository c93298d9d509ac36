// Package notify delivers turn and outcome notifications to players. Delivery
// is best effort: a failed notification never affects game state.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/chesspost/chesspost/internal/config"
	"github.com/chesspost/chesspost/internal/logger"
)

// Notifier sends one message to one recipient address.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New returns an SMTP notifier when SMTP is configured, otherwise a notifier
// that only logs, so development setups work without a mail server.
func New(cfg config.Config) Notifier {
	if cfg.SMTPHost == "" {
		return &LogNotifier{}
	}
	return &SMTPNotifier{
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		host:     cfg.SMTPHost,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
	}
}

// LogNotifier writes notifications to the log instead of delivering them.
type LogNotifier struct{}

func (n *LogNotifier) Send(ctx context.Context, to, subject, body string) error {
	logger.FromContext(ctx).WithPrefix("notify").Info("notification (not delivered): to=%s subject=%q", to, subject)
	return nil
}

// SMTPNotifier delivers notifications as plain-text mail.
type SMTPNotifier struct {
	addr     string
	host     string
	username string
	password string
	from     string
}

func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) error {
	log := logger.FromContext(ctx).WithPrefix("notify")

	var auth smtp.Auth
	if n.username != "" {
		auth = smtp.PlainAuth("", n.username, n.password, n.host)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", n.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")

	if err := smtp.SendMail(n.addr, auth, n.from, []string{to}, []byte(msg.String())); err != nil {
		log.Error("failed to send mail to %s: %v", to, err)
		return err
	}
	log.Debug("mail sent: to=%s subject=%q", to, subject)
	return nil
}
