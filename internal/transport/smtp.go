package transport

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	certmail "github.com/alnah/go-certmail"
)

// Security selects how the SMTP connection is protected.
type Security string

// Supported connection security modes.
const (
	SecuritySSL      Security = "ssl"      // implicit TLS
	SecuritySTARTTLS Security = "starttls" // STARTTLS required
	SecurityNone     Security = "none"     // no TLS, local relays only
)

// SMTPConfig configures the SMTP transport.
type SMTPConfig struct {
	Host     string
	Port     int
	Security Security
	Username string
	Password string
	Timeout  time.Duration
}

// dialer is implemented by *mail.Client.
type dialer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTP sends mail through an authenticated SMTP relay such as Gmail.
type SMTP struct {
	client   dialer
	username string
}

// NewSMTP creates an SMTP transport. No connection is opened until Send.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidConfig)
	}

	opts := []mail.Option{mail.WithPort(cfg.Port)}
	switch cfg.Security {
	case SecuritySSL, "":
		opts = append(opts, mail.WithSSL())
	case SecuritySTARTTLS:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	case SecurityNone:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	default:
		return nil, fmt.Errorf("%w: unknown security %q", ErrInvalidConfig, cfg.Security)
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &SMTP{client: client, username: cfg.Username}, nil
}

// Send implements certmail.Transport.
func (s *SMTP) Send(ctx context.Context, msg *certmail.Message) error {
	m, err := s.buildMsg(msg)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return classifySMTP(err)
	}
	return nil
}

// buildMsg converts a certificate message to a MIME message:
// text/plain with an optional text/html alternative, plus the PDF.
func (s *SMTP) buildMsg(msg *certmail.Message) (*mail.Msg, error) {
	from := msg.From
	if from == "" {
		from = s.username
	}

	m := mail.NewMsg()
	setFrom := func() error { return m.From(from) }
	if msg.FromName != "" {
		setFrom = func() error { return m.FromFormat(msg.FromName, from) }
	}
	if err := setFrom(); err != nil {
		return nil, fmt.Errorf("%w: from %q: %v", ErrInvalidMsg, from, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("%w: to %q: %v", ErrInvalidMsg, msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	a := msg.Attachment
	if err := m.AttachReader(a.FileName, bytes.NewReader(a.Data),
		mail.WithFileContentType(mail.ContentType(a.ContentType))); err != nil {
		return nil, fmt.Errorf("%w: attachment: %v", ErrInvalidMsg, err)
	}
	return m, nil
}

// classifySMTP separates credential rejections from other failures.
// 535 is the SMTP reply for rejected credentials.
func classifySMTP(err error) error {
	text := err.Error()
	if strings.Contains(text, "535 ") || strings.Contains(strings.ToLower(text), "authentication failed") {
		return fmt.Errorf("%w: %w", ErrAuth, err)
	}
	return fmt.Errorf("%w: %w", ErrDelivery, err)
}

// Compile-time interface check.
var _ certmail.Transport = (*SMTP)(nil)
