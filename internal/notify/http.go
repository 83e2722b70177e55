package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cropwatch/internal/types"
)

// DefaultChannelTimeout bounds one provider HTTP call.
const DefaultChannelTimeout = 5 * time.Second

// httpPayload is the JSON body POSTed to sms/whatsapp/push gateways.
type httpPayload struct {
	Recipient string              `json:"recipient"`
	Kind      types.AlertKind     `json:"alert_kind"`
	Title     string              `json:"title"`
	Body      string              `json:"body"`
	Priority  types.TaskPriority  `json:"priority"`
	TaskID    string              `json:"task_id"`
	FieldID   string              `json:"field_id"`
	Actions   []types.AlertAction `json:"actions,omitempty"`
}

// HTTPChannel delivers alerts by POSTing JSON to a provider gateway. The
// sms, whatsapp, and push channels are all instances of this with different
// endpoints.
type HTTPChannel struct {
	name     string
	endpoint string
	apiKey   string
	client   *providerClient
}

// HTTPChannelConfig configures one gateway-backed channel.
type HTTPChannelConfig struct {
	// Name identifies the channel in logs ("sms", "whatsapp", "push").
	Name string
	// Endpoint is the gateway URL alerts are POSTed to.
	Endpoint string
	// APIKey is sent as a bearer token. Optional.
	APIKey string
	// Timeout bounds one call. Defaults to DefaultChannelTimeout.
	Timeout time.Duration
	// RetryPolicy defaults to DefaultRetryPolicy.
	RetryPolicy *RetryPolicy
}

// NewHTTPChannel creates a gateway-backed delivery channel with its own
// circuit breaker.
func NewHTTPChannel(cfg HTTPChannelConfig) *HTTPChannel {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultChannelTimeout
	}
	policy := DefaultRetryPolicy()
	if cfg.RetryPolicy != nil {
		policy = *cfg.RetryPolicy
	}
	return &HTTPChannel{
		name:     cfg.Name,
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   newProviderClient(&http.Client{Timeout: timeout}, cfg.Name, policy),
	}
}

func (c *HTTPChannel) Name() string { return c.name }

// Send POSTs the alert to the gateway. Any non-2xx response is an error.
func (c *HTTPChannel) Send(ctx context.Context, recipient string, kind types.AlertKind, msg types.AlertMessage) error {
	body, err := json.Marshal(httpPayload{
		Recipient: recipient,
		Kind:      kind,
		Title:     msg.Title,
		Body:      msg.Body,
		Priority:  msg.Priority,
		TaskID:    msg.TaskID,
		FieldID:   msg.FieldID,
		Actions:   msg.Actions,
	})
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode alert payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamChannel, "failed to build provider request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return types.NewAppError(
			types.ErrCodeUpstreamChannel,
			fmt.Sprintf("%s gateway rejected alert with status %d", c.name, resp.StatusCode),
			nil,
		)
	}
	return nil
}
