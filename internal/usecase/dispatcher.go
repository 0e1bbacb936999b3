package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salonsync-service/internal/domain/entity"
	"salonsync-service/internal/domain/repository"
	"salonsync-service/pkg/logger"
	"salonsync-service/pkg/metrics"
	"salonsync-service/templates"
)

// Delivery channels
const (
	ChannelLocal  = "local"
	ChannelRemote = "remote_push"
	ChannelEmail  = "email"
	ChannelInApp  = "in_app"
)

// ChannelResult records the outcome of one delivery channel for one dispatch
type ChannelResult struct {
	Channel string
	Skipped bool
	Err     error
}

// NotificationDispatcher fans one domain event out to the local queue, the
// remote push gateway, the email transport, and the persisted in-app record.
// Channels are isolated: a failure is logged, captured in the result list,
// and never blocks the remaining channels. Dispatch itself only fails when
// the in-app step cannot even be attempted.
type NotificationDispatcher struct {
	tokens        repository.PushTokenRepository
	push          repository.PushGateway
	email         repository.EmailSender
	local         repository.LocalNotifier
	notifications repository.NotificationRepository
	logger        logger.Logger
	metrics       *metrics.Metrics
}

// NewNotificationDispatcher creates a new notification dispatcher
func NewNotificationDispatcher(
	tokens repository.PushTokenRepository,
	push repository.PushGateway,
	email repository.EmailSender,
	local repository.LocalNotifier,
	notifications repository.NotificationRepository,
	logger logger.Logger,
	metrics *metrics.Metrics,
) *NotificationDispatcher {
	return &NotificationDispatcher{
		tokens:        tokens,
		push:          push,
		email:         email,
		local:         local,
		notifications: notifications,
		logger:        logger,
		metrics:       metrics,
	}
}

// Dispatch delivers one event across all channels, best effort. The per
// channel results are returned for observability; only a missing recipient
// id is an error.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, event string, dctx entity.DispatchContext) ([]ChannelResult, error) {
	if dctx.RecipientID == "" {
		d.metrics.ErrorsCount.WithLabelValues("dispatch").Inc()
		return nil, fmt.Errorf("dispatch %s: %w", event, entity.ErrNoRecipient)
	}

	title, body := templates.Render(event, dctx)
	payload := dctx.Payload(event)

	results := make([]ChannelResult, 0, 4)
	results = append(results, d.sendLocal(event, title, body, payload))
	results = append(results, d.sendRemote(ctx, event, dctx, title, body, payload))
	results = append(results, d.sendEmail(ctx, event, dctx, title, body))
	results = append(results, d.persistInApp(ctx, event, dctx, title, body, payload))

	return results, nil
}

func (d *NotificationDispatcher) sendLocal(event, title, body string, payload map[string]interface{}) ChannelResult {
	result := ChannelResult{Channel: ChannelLocal}

	if err := d.local.Enqueue(title, body, payload); err != nil {
		d.logger.Warn("Local notification failed", "event", event, "error", err)
		result.Err = err
	}

	d.count(ChannelLocal, result)
	return result
}

// sendRemote looks up the recipient's registered device tokens. No token is
// a silent skip, not an error.
func (d *NotificationDispatcher) sendRemote(ctx context.Context, event string, dctx entity.DispatchContext, title, body string, payload map[string]interface{}) ChannelResult {
	result := ChannelResult{Channel: ChannelRemote}

	tokens, err := d.tokens.FindActiveByUser(ctx, dctx.RecipientID)
	if err != nil {
		d.logger.Warn("Push token lookup failed", "event", event,
			"recipientId", dctx.RecipientID, "error", err)
		result.Err = err
		d.count(ChannelRemote, result)
		return result
	}

	if len(tokens) == 0 {
		result.Skipped = true
		d.count(ChannelRemote, result)
		return result
	}

	for _, token := range tokens {
		if _, err := d.push.SendRemote(ctx, token.Token, title, body, payload); err != nil {
			if errors.Is(err, entity.ErrDeviceNotRegistered) {
				// The device is gone for good, stop addressing it
				d.logger.Info("Deactivating unregistered device token",
					"recipientId", dctx.RecipientID)
				if derr := d.tokens.Deactivate(ctx, token.Token); derr != nil {
					d.logger.Warn("Failed to deactivate device token", "error", derr)
				}
				continue
			}
			d.logger.Warn("Remote push failed", "event", event,
				"recipientId", dctx.RecipientID, "error", err)
			if result.Err == nil {
				result.Err = err
			}
		}
	}

	d.count(ChannelRemote, result)
	return result
}

func (d *NotificationDispatcher) sendEmail(ctx context.Context, event string, dctx entity.DispatchContext, title, body string) ChannelResult {
	result := ChannelResult{Channel: ChannelEmail}

	if dctx.RecipientEmail == "" {
		result.Skipped = true
		d.count(ChannelEmail, result)
		return result
	}

	if err := d.email.Send(ctx, dctx.RecipientEmail, dctx.RecipientName, title, body); err != nil {
		d.logger.Warn("Email delivery failed", "event", event,
			"to", dctx.RecipientEmail, "error", err)
		result.Err = err
	}

	d.count(ChannelEmail, result)
	return result
}

func (d *NotificationDispatcher) persistInApp(ctx context.Context, event string, dctx entity.DispatchContext, title, body string, payload map[string]interface{}) ChannelResult {
	result := ChannelResult{Channel: ChannelInApp}

	notification := &entity.Notification{
		RecipientID:   dctx.RecipientID,
		RecipientRole: dctx.RecipientRole,
		Type:          event,
		Title:         title,
		Message:       body,
		Data:          payload,
		IsRead:        false,
		CreatedAt:     time.Now(),
	}

	if _, err := d.notifications.Insert(ctx, notification); err != nil {
		d.logger.Error("Failed to persist in-app notification", "event", event,
			"recipientId", dctx.RecipientID, "error", err)
		result.Err = err
	}

	d.count(ChannelInApp, result)
	return result
}

func (d *NotificationDispatcher) count(channel string, result ChannelResult) {
	outcome := "ok"
	switch {
	case result.Err != nil:
		outcome = "failed"
	case result.Skipped:
		outcome = "skipped"
	}
	d.metrics.Dispatches.WithLabelValues(channel, outcome).Inc()
}
