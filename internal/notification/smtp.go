package notification

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/staff-registry/internal"
	"github.com/google/uuid"
)

// SMTPNotifier sends multipart mail over SMTP, upgrading with STARTTLS when
// the server offers it.
type SMTPNotifier struct {
	config   internal.MailConfig
	renderer *Renderer
	logger   *slog.Logger
	// deliver is swapped in tests.
	deliver func(ctx context.Context, to string, body []byte) error
	backoff func(attempt int) time.Duration
}

func NewSMTPNotifier(config internal.MailConfig, renderer *Renderer, logger *slog.Logger) *SMTPNotifier {
	if config.SMTPPort == 0 {
		config.SMTPPort = 587
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 3
	}
	if config.FromName == "" {
		config.FromName = "Staff Registry"
	}
	if logger == nil {
		logger = slog.Default()
	}

	n := &SMTPNotifier{
		config:   config,
		renderer: renderer,
		logger:   logger,
		backoff: func(attempt int) time.Duration {
			d := time.Duration(attempt) * time.Second
			if d > 30*time.Second {
				d = 30 * time.Second
			}
			return d
		},
	}
	n.deliver = n.send
	return n
}

func (n *SMTPNotifier) Notify(ctx context.Context, address string, outcome Outcome, reason, name string) error {
	msg, err := n.renderer.Render(outcome, reason, name)
	if err != nil {
		return err
	}

	body, err := n.buildMessage(address, msg)
	if err != nil {
		return err
	}

	if err := n.sendWithRetry(ctx, address, body); err != nil {
		n.logger.Error("failed to send notification", "outcome", outcome, "error", err)
		return fmt.Errorf("send %s notification: %w", outcome, err)
	}

	n.logger.Info("notification sent", "outcome", outcome)
	return nil
}

func (n *SMTPNotifier) sendWithRetry(ctx context.Context, to string, body []byte) error {
	var lastErr error
	for attempt := 1; attempt <= n.config.RetryAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(n.backoff(attempt - 1)):
			}
		}

		err := n.deliver(ctx, to, body)
		if err == nil {
			return nil
		}
		lastErr = err
		n.logger.Warn("notification send attempt failed", "attempt", attempt, "error", err)

		if !shouldRetry(err) {
			break
		}
	}
	return lastErr
}

// shouldRetry treats network failures and 4xx SMTP replies as transient.
func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return protoErr.Code >= 400 && protoErr.Code < 500
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (n *SMTPNotifier) send(ctx context.Context, to string, body []byte) error {
	addr := net.JoinHostPort(n.config.SMTPHost, strconv.Itoa(n.config.SMTPPort))

	dialer := &net.Dialer{Timeout: n.config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(n.config.Timeout))
	}

	client, err := smtp.NewClient(conn, n.config.SMTPHost)
	if err != nil {
		conn.Close()
		return fmt.Errorf("open smtp session: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: n.config.SMTPHost}); err != nil {
			return fmt.Errorf("start tls: %w", err)
		}
	}

	if n.config.Username != "" {
		auth := smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("authenticate: %w", err)
		}
	}

	if err := client.Mail(n.config.FromAddress); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("open data writer: %w", err)
	}
	if _, err := wc.Write(body); err != nil {
		wc.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("finish message: %w", err)
	}

	return client.Quit()
}

func (n *SMTPNotifier) buildMessage(to string, msg *Message) ([]byte, error) {
	rcpt, err := mail.ParseAddress(to)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	from := mail.Address{Name: n.config.FromName, Address: n.config.FromAddress}
	boundary := "b-" + uuid.NewString()

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from.String())
	fmt.Fprintf(&b, "To: %s\r\n", rcpt.String())
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Text)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(msg.HTML)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String()), nil
}
