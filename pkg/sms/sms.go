package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrSMSDisabled signals that SMS delivery is disabled via configuration.
var ErrSMSDisabled = errors.New("sms: delivery disabled")

// Message represents an outbound text message.
type Message struct {
	To   string
	Body string
}

// Sender defines behaviour for dispatching text messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// GatewaySettings configure the HTTP SMS gateway client.
type GatewaySettings struct {
	Enabled bool
	URL     string
	APIKey  string
	From    string
	Timeout time.Duration
}

type gatewayClient struct {
	cfg  GatewaySettings
	http *http.Client
}

// NewGatewayClient builds a Sender that posts JSON to a provider gateway.
// A disabled configuration is valid; Send then returns ErrSMSDisabled.
func NewGatewayClient(cfg GatewaySettings) (Sender, error) {
	if cfg.Enabled && strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("sms: gateway url is required when enabled")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &gatewayClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type gatewayPayload struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Body string `json:"body"`
}

func (c *gatewayClient) Send(ctx context.Context, msg Message) error {
	if !c.cfg.Enabled {
		return ErrSMSDisabled
	}

	to := strings.TrimSpace(msg.To)
	if to == "" {
		return errors.New("sms: recipient number is required")
	}

	payload, err := json.Marshal(gatewayPayload{
		From: c.cfg.From,
		To:   to,
		Body: msg.Body,
	})
	if err != nil {
		return fmt.Errorf("sms: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("sms: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sms: gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms: gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	return nil
}
