package transport

import (
	"context"
	"fmt"
	"net/url"

	"github.com/resend/resend-go/v3"

	certmail "github.com/alnah/go-certmail"
)

// ResendConfig configures the Resend API transport.
type ResendConfig struct {
	APIKey  string
	BaseURL string // empty = https://api.resend.com
}

// Resend sends mail through the Resend HTTP API.
type Resend struct {
	client *resend.Client
}

// NewResend creates a Resend transport.
func NewResend(cfg ResendConfig) (*Resend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidConfig)
	}
	client := resend.NewClient(cfg.APIKey)
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("%w: base URL: %v", ErrInvalidConfig, err)
		}
		client.BaseURL = u
	}
	return &Resend{client: client}, nil
}

// Send implements certmail.Transport.
func (r *Resend) Send(ctx context.Context, msg *certmail.Message) error {
	if msg.From == "" {
		return fmt.Errorf("%w: sender address is required", ErrInvalidMsg)
	}

	req := &resend.SendEmailRequest{
		From:    formatAddress(msg.FromName, msg.From),
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Text,
		Html:    msg.HTML,
		Attachments: []*resend.Attachment{{
			Filename:    msg.Attachment.FileName,
			Content:     msg.Attachment.Data,
			ContentType: msg.Attachment.ContentType,
		}},
	}

	if _, err := r.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("%w: resend: %w", ErrDelivery, err)
	}
	return nil
}

// Compile-time interface check.
var _ certmail.Transport = (*Resend)(nil)
