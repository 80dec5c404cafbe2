package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afyacard/healthcard-backend/internal/config"
	appErrors "github.com/afyacard/healthcard-backend/internal/errors"
	"github.com/afyacard/healthcard-backend/internal/template"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Gateway: config.GatewayConfig{
			BaseURL:        baseURL,
			AccessToken:    "test-token",
			SenderID:       "afyacard",
			Language:       "en",
			TimeoutSeconds: 5,
		},
		Notifications: config.NotificationsConfig{
			Enabled:        true,
			MaxRetries:     3,
			RetryBackoffMS: 1,
		},
	}
}

func testClient(cfg *config.Config) *Client {
	c := NewClient(cfg)
	c.sleep = func(time.Duration) {}
	return c
}

var testMessage = template.Message{
	TemplateName: template.TemplateRenewalUpcoming,
	Parameters:   []string{"Alice Wanjiku", "15 Jun 2025", "Westlands Family Clinic"},
}

func TestSend_Success(t *testing.T) {
	var calls int
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]string{"message_id": "wamid.abc123"})
	}))
	defer srv.Close()

	res := testClient(testConfig(srv.URL)).Send("+254 712 345 678", testMessage)

	assert.True(t, res.Success)
	assert.Equal(t, "wamid.abc123", res.MessageID)
	assert.NoError(t, res.Err)
	assert.Equal(t, 1, calls)

	// Destination reaches the wire as digits only, parameters in order.
	assert.Equal(t, "254712345678", got.To)
	assert.Equal(t, "afyacard", got.SenderID)
	assert.Equal(t, "en", got.Language)
	assert.Equal(t, testMessage.TemplateName, got.Template)
	assert.Equal(t, testMessage.Parameters, got.Parameters)
}

func TestSend_TerminalErrorNoRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": 2001, "message": "template not found"},
		})
	}))
	defer srv.Close()

	res := testClient(testConfig(srv.URL)).Send("254712345678", testMessage)

	assert.False(t, res.Success)
	assert.ErrorContains(t, res.Err, "2001")
	assert.Equal(t, 1, calls, "terminal errors must not be retried")
}

func TestSend_TransientErrorExhaustsRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": 9000, "message": "temporarily unavailable"},
		})
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	res := testClient(cfg).Send("254712345678", testMessage)

	assert.False(t, res.Success)
	assert.ErrorContains(t, res.Err, "9000")
	assert.Equal(t, cfg.Notifications.MaxRetries, calls)
}

func TestSend_TransientThenSuccess(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"message_id": "wamid.retry"})
	}))
	defer srv.Close()

	res := testClient(testConfig(srv.URL)).Send("254712345678", testMessage)

	assert.True(t, res.Success)
	assert.Equal(t, "wamid.retry", res.MessageID)
	assert.Equal(t, 2, calls)
}

func TestSend_LinearBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Notifications.RetryBackoffMS = 100

	c := NewClient(cfg)
	var slept []time.Duration
	c.sleep = func(d time.Duration) { slept = append(slept, d) }

	c.Send("254712345678", testMessage)

	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, slept)
}

func TestSend_MalformedSuccessIsTerminal(t *testing.T) {
	// A 2xx without a message id (or with an unreadable body) may still
	// have been delivered; retrying it could duplicate the message, so
	// exactly one call is allowed.
	tests := []struct {
		name string
		body string
	}{
		{name: "missing message id", body: `{}`},
		{name: "unreadable body", body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			res := testClient(testConfig(srv.URL)).Send("254712345678", testMessage)

			assert.False(t, res.Success)
			assert.Error(t, res.Err)
			assert.Equal(t, 1, calls, "malformed success responses must not be retried")
		})
	}
}

func TestSend_InvalidDestinationNeverCallsGateway(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	res := testClient(testConfig(srv.URL)).Send("garbage", testMessage)

	assert.False(t, res.Success)
	assert.Error(t, res.Err)
	assert.Equal(t, 0, calls)
}

func TestSend_DisabledNeverCallsGateway(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Notifications.Enabled = false

	res := testClient(cfg).Send("254712345678", testMessage)

	assert.False(t, res.Success)
	var disabled *appErrors.ErrNotificationsDisabled
	assert.ErrorAs(t, res.Err, &disabled)
	assert.Equal(t, 0, calls)
}

func TestSend_MissingCredentialsFailsFast(t *testing.T) {
	cfg := testConfig("http://gateway.invalid")
	cfg.Gateway.AccessToken = ""

	res := testClient(cfg).Send("254712345678", testMessage)

	assert.False(t, res.Success)
	var missing *appErrors.ErrMissingGatewayConfig
	assert.ErrorAs(t, res.Err, &missing)
}
