package certmail

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Message is a single email carrying one certificate.
type Message struct {
	From       string // bare address
	FromName   string // optional display name
	To         string
	Subject    string
	Text       string
	HTML       string // optional alternative part
	Attachment Attachment
}

// Attachment is a binary email attachment.
type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Transport delivers a message. Implementations make exactly one attempt.
type Transport interface {
	Send(ctx context.Context, msg *Message) error
}

// BodyData is passed to subject and body templates.
type BodyData struct {
	Name  string
	Event string
	Date  string
}

// Body is a rendered email subject and body.
type Body struct {
	Subject string
	Text    string
	HTML    string
}

// BodyRenderer renders the email for one participant.
type BodyRenderer interface {
	Render(data BodyData) (*Body, error)
}

// Mailer builds certificate emails and hands them to a Transport.
type Mailer struct {
	transport Transport
	body      BodyRenderer
	from      string
	fromName  string
	date      string
}

// NewMailer creates a Mailer sending from the given address.
func NewMailer(transport Transport, body BodyRenderer, from, fromName string) *Mailer {
	return &Mailer{
		transport: transport,
		body:      body,
		from:      from,
		fromName:  fromName,
	}
}

// WithDate sets the date made available to templates as {{.Date}}.
func (m *Mailer) WithDate(date string) *Mailer {
	m.date = date
	return m
}

// Send emails the artifact to one recipient in a single attempt. Every
// failure, including template errors, is returned as a *SendError.
func (m *Mailer) Send(ctx context.Context, to, name, event string, a *Artifact) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return &SendError{To: to, Err: ErrNoRecipient}
	}
	if a == nil || len(a.Data) == 0 {
		return &SendError{To: to, Err: ErrNoAttachment}
	}

	body, err := m.body.Render(BodyData{Name: name, Event: event, Date: m.date})
	if err != nil {
		return &SendError{To: to, Err: fmt.Errorf("rendering email: %w", err)}
	}

	msg := &Message{
		From:     m.from,
		FromName: m.fromName,
		To:       to,
		Subject:  body.Subject,
		Text:     body.Text,
		HTML:     body.HTML,
		Attachment: Attachment{
			FileName:    a.FileName,
			ContentType: ContentTypePDF,
			Data:        a.Data,
		},
	}

	if err := m.transport.Send(ctx, msg); err != nil {
		var se *SendError
		if errors.As(err, &se) {
			return se
		}
		return &SendError{To: to, Err: err}
	}
	return nil
}
