package email

import "context"

// Client sends an HTML email. Implementations must honor the context for
// cancellation.
type Client interface {
	Send(ctx context.Context, to, replyTo, subject, htmlBody string) error
}
