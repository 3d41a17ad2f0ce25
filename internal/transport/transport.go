// Package transport delivers certificate emails, over SMTP or through the
// Resend API. Each Send is exactly one delivery attempt.
package transport

import (
	"errors"
	"fmt"
	"mime"
)

// Sentinel errors for transports.
var (
	ErrInvalidConfig = errors.New("invalid transport configuration")
	ErrInvalidMsg    = errors.New("invalid message")
	ErrAuth          = errors.New("authentication failed")
	ErrDelivery      = errors.New("delivery failed")
)

// formatAddress renders `Name <addr>` for display names, quoting as needed.
func formatAddress(name, addr string) string {
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", name), addr)
}
