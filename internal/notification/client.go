package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	TemplateInvitationIssued = "invitation.issued"
	TemplateInvitationResent = "invitation.resent"
)

type Config struct {
	Enabled bool
	APIURL  string
	APIKey  string
	Sender  string
	Timeout time.Duration
}

// Client hands templated messages to the mail provider's HTTP API.
type Client struct {
	enabled    bool
	apiURL     string
	apiKey     string
	sender     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		enabled:    config.Enabled,
		apiURL:     strings.TrimRight(config.APIURL, "/"),
		apiKey:     config.APIKey,
		sender:     config.Sender,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type sendRequest struct {
	TemplateID string                 `json:"template_id"`
	From       string                 `json:"from,omitempty"`
	To         string                 `json:"to"`
	Params     map[string]interface{} `json:"params"`
}

// Send delivers one message. When the client is disabled it only logs.
func (c *Client) Send(ctx context.Context, templateID, recipient string, params map[string]interface{}) error {
	if !c.enabled {
		c.logger.Info("notifications disabled, skipping send", "template", templateID)
		return nil
	}

	payload, err := json.Marshal(sendRequest{
		TemplateID: templateID,
		From:       c.sender,
		To:         recipient,
		Params:     params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail provider returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	c.logger.Info("notification sent", "template", templateID)
	return nil
}
