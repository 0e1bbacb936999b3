package repository

import "context"

// EmailSender delivers transactional email
type EmailSender interface {
	Send(ctx context.Context, toAddress, toName, subject, body string) error
}
