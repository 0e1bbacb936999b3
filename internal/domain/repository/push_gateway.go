package repository

import "context"

// PushGateway delivers remote push notifications to a registered device
// address and returns the gateway's delivery ticket id.
type PushGateway interface {
	SendRemote(ctx context.Context, token, title, body string, data map[string]interface{}) (string, error)
}
