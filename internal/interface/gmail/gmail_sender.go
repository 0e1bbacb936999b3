package gmail

import (
	"context"
	"encoding/base64"
	"fmt"

	"salonsync-service/internal/domain/repository"
	"salonsync-service/pkg/logger"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailSender delivers transactional email through the Gmail API
type GmailSender struct {
	gmailService *gmail.Service
	from         string
	fromName     string
	logger       logger.Logger
}

// NewGmailSender creates a new Gmail sender
func NewGmailSender(ctx context.Context, tokenSource oauth2.TokenSource, from, fromName string, logger logger.Logger) (repository.EmailSender, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &GmailSender{
		gmailService: service,
		from:         from,
		fromName:     fromName,
		logger:       logger,
	}, nil
}

// Send builds an RFC 2822 message and submits it via users.messages.send
func (s *GmailSender) Send(ctx context.Context, toAddress, toName, subject, body string) error {
	if toAddress == "" {
		return fmt.Errorf("no recipient address")
	}

	raw := buildMessage(s.from, s.fromName, toAddress, toName, subject, body)
	msg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}

	_, err := s.gmailService.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("Email sent", "to", toAddress, "subject", subject)
	return nil
}

func buildMessage(from, fromName, to, toName, subject, body string) string {
	fromHeader := from
	if fromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", fromName, from)
	}
	toHeader := to
	if toName != "" {
		toHeader = fmt.Sprintf("%s <%s>", toName, to)
	}

	return fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		fromHeader,
		toHeader,
		subject,
		body,
	)
}
