// Package mail defines the outbound email port used by the notification layer.
package mail

import "context"

// Sender delivers a single plain-text email. Implementations must be safe
// for concurrent use.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, to, subject, body string) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, to, subject, body string) error {
	return f(ctx, to, subject, body)
}
