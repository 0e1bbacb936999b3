package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"salonsync-service/internal/domain/entity"
	"salonsync-service/internal/domain/repository"
	"salonsync-service/pkg/logger"
)

// ExpoPushGateway delivers remote push notifications through an Expo
// compatible push endpoint
type ExpoPushGateway struct {
	logger      logger.Logger
	baseURL     string
	bearerToken string
	client      *http.Client
}

// NewExpoPushGateway creates a new push gateway client
func NewExpoPushGateway(baseURL, bearerToken string, logger logger.Logger) repository.PushGateway {
	if baseURL == "" {
		baseURL = "https://exp.host"
	}

	return &ExpoPushGateway{
		logger:      logger,
		baseURL:     baseURL,
		bearerToken: bearerToken,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

type expoPushMessage struct {
	To       string                 `json:"to"`
	Title    string                 `json:"title"`
	Body     string                 `json:"body"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Sound    string                 `json:"sound"`
	Priority string                 `json:"priority"`
}

// SendRemote sends one push message and returns the gateway ticket id
func (g *ExpoPushGateway) SendRemote(ctx context.Context, token, title, body string, data map[string]interface{}) (string, error) {
	msg := expoPushMessage{
		To:       token,
		Title:    title,
		Body:     body,
		Data:     data,
		Sound:    "default",
		Priority: "high",
	}

	jsonData, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal push message: %w", err)
	}

	url := fmt.Sprintf("%s/--/api/v2/push/send", g.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if g.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+g.bearerToken)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errorBody map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errorBody)
		return "", fmt.Errorf("push gateway returned status %d: %v", resp.StatusCode, errorBody)
	}

	var response struct {
		Data struct {
			Status  string `json:"status"`
			ID      string `json:"id"`
			Message string `json:"message"`
			Details struct {
				Error string `json:"error"`
			} `json:"details"`
		} `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if response.Data.Status != "ok" {
		if response.Data.Details.Error == "DeviceNotRegistered" {
			return "", fmt.Errorf("push rejected: %s: %w", response.Data.Message, entity.ErrDeviceNotRegistered)
		}
		return "", fmt.Errorf("push rejected: %s (%s)", response.Data.Message, response.Data.Details.Error)
	}

	g.logger.Info("Push ticket created",
		"ticketId", response.Data.ID,
		"title", title)

	return response.Data.ID, nil
}
