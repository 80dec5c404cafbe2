// Package gateway is the delivery client for the templated-messaging
// provider. It owns retry policy and the terminal-vs-retryable error
// classification; callers get back a single final result per message.
package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/afyacard/healthcard-backend/internal/config"
	appErrors "github.com/afyacard/healthcard-backend/internal/errors"
	"github.com/afyacard/healthcard-backend/internal/phone"
	"github.com/afyacard/healthcard-backend/internal/pkg/logger"
	"github.com/afyacard/healthcard-backend/internal/template"
)

// Provider error codes that no amount of retrying can fix. Everything not
// in this table (timeouts, 5xx, unknown codes) is considered transient.
var terminalCodes = map[int]bool{
	1001: true, // invalid parameter
	1008: true, // template parameter count mismatch
	2001: true, // template not found
	2002: true, // template not approved
	4003: true, // recipient cannot receive template messages
}

// SendResult is the final outcome of one Send call, after retries.
type SendResult struct {
	Success   bool
	MessageID string
	Err       error
}

// Client sends templated messages to the gateway with bounded retries and
// linear backoff. It refuses to place any network call while notifications
// are disabled, independent of the orchestrator-level gate.
type Client struct {
	cfg        config.GatewayConfig
	enabled    bool
	maxRetries int
	backoff    time.Duration
	language   string

	httpClient *http.Client

	// sleep is swapped out in tests so retry paths run instantly.
	sleep func(time.Duration)
}

// NewClient builds a delivery client from the application config.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:        cfg.Gateway,
		enabled:    cfg.Notifications.Enabled,
		maxRetries: cfg.Notifications.MaxRetries,
		backoff:    cfg.Notifications.RetryBackoff(),
		language:   cfg.Gateway.Language,
		httpClient: &http.Client{Timeout: cfg.Gateway.Timeout()},
		sleep:      time.Sleep,
	}
}

type sendRequest struct {
	SenderID   string   `json:"sender_id"`
	To         string   `json:"to"`
	Template   string   `json:"template"`
	Language   string   `json:"language"`
	Parameters []string `json:"parameters"`
}

type sendResponse struct {
	MessageID string `json:"message_id"`
	Error     *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Send delivers one templated message to destination. The destination is
// normalized to digits only; an invalid number short-circuits without any
// network call, as does a disabled kill switch or missing credentials.
// Transient failures are retried up to the configured total attempts with
// linear backoff; terminal provider errors return immediately.
func (c *Client) Send(destination string, msg template.Message) SendResult {
	if !c.enabled {
		return SendResult{Err: appErrors.NewNotificationsDisabled()}
	}

	if err := c.cfg.Validate(); err != nil {
		return SendResult{Err: err}
	}

	digits, err := phone.Normalize(destination)
	if err != nil {
		return SendResult{Err: err}
	}

	payload := sendRequest{
		SenderID:   c.cfg.SenderID,
		To:         digits,
		Template:   msg.TemplateName,
		Language:   c.language,
		Parameters: msg.Parameters,
	}

	attempts := c.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			// Linear backoff: attempt number times the fixed unit.
			c.sleep(time.Duration(attempt-1) * c.backoff)
		}

		id, terminal, err := c.post(payload)
		if err == nil {
			return SendResult{Success: true, MessageID: id}
		}
		if terminal {
			return SendResult{Err: err}
		}

		lastErr = err
		logger.Warn("gateway send attempt failed",
			"attempt", attempt,
			"max_attempts", attempts,
			"template", msg.TemplateName,
			"destination", digits,
			"error", err,
		)
	}

	return SendResult{Err: lastErr}
}

// post performs a single gateway call. The second return value reports
// whether the failure is terminal.
func (c *Client) post(payload sendRequest) (string, bool, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", true, err
	}

	req, err := http.NewRequest(http.MethodPost, c.cfg.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", true, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network or timeout error, worth retrying.
		return "", false, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var parsed sendResponse
	if err := json.Unmarshal(raw, &parsed); err != nil && resp.StatusCode < 400 {
		// A malformed success may still have been delivered; retrying
		// risks a duplicate message, so this is terminal.
		return "", true, fmt.Errorf("gateway returned unreadable body (status %d)", resp.StatusCode)
	}

	if resp.StatusCode >= 400 {
		if parsed.Error != nil {
			err := fmt.Errorf("gateway error %d: %s", parsed.Error.Code, parsed.Error.Message)
			return "", terminalCodes[parsed.Error.Code], err
		}
		// No machine-readable code: 4xx other than 429 will not get
		// better on its own, 429 and 5xx might.
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", !retryable, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(raw))
	}

	if parsed.MessageID == "" {
		// Same trade-off: the provider may have delivered despite the
		// missing id, so do not re-send.
		return "", true, fmt.Errorf("gateway returned status %d without a message id", resp.StatusCode)
	}
	return parsed.MessageID, false, nil
}
