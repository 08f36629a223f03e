package mailer

import "context"

// EmailSender delivers the internal notification for a new trade enquiry.
// The pipeline treats it as best-effort: failures are logged, never surfaced.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}
