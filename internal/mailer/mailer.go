// Package mailer delivers confirmation codes by email.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wneessen/go-mail"
)

type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer sends a single message. Implementations must honour ctx.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds connection settings for SMTPMailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	mm, err := newMsg(msg)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTimeout(m.cfg.Timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password))
	}
	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// newMsg builds a plain-text message; addresses are validated and headers
// encoded by go-mail.
func newMsg(msg Message) (*mail.Msg, error) {
	mm := mail.NewMsg()
	if err := mm.From(msg.From); err != nil {
		return nil, fmt.Errorf("from address %q: %w", msg.From, err)
	}
	if err := mm.To(msg.To); err != nil {
		return nil, fmt.Errorf("to address %q: %w", msg.To, err)
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextPlain, msg.Body)
	return mm, nil
}

// LogMailer writes messages to the log instead of sending them. Used in
// development when no SMTP host is configured; it also keeps the last
// message per recipient for tests.
type LogMailer struct {
	log  *slog.Logger
	mu   sync.Mutex
	sent map[string]Message
}

func NewLogMailer(log *slog.Logger) *LogMailer {
	return &LogMailer{log: log, sent: make(map[string]Message)}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.sent[msg.To] = msg
	m.mu.Unlock()

	m.log.InfoContext(ctx, "mail not sent, logging instead",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body))
	return nil
}

// Last returns the most recent message sent to the recipient.
func (m *LogMailer) Last(to string) (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.sent[to]
	return msg, ok
}
