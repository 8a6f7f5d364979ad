package webhooks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultTimeout = 5 * time.Second

	notifiedMarker  = "user has been notified"
	maxResponseBody = 64 << 10
)

// Dispatcher performs one POST per call. There are no retries and nothing is
// queued; a failed delivery is only logged.
type Dispatcher struct {
	client  *http.Client
	timeout time.Duration
}

func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout: timeout,
	}
}

// Send never returns an error; every failure becomes Success=false.
func (d *Dispatcher) Send(ctx context.Context, rawURL string, event *Event) DispatchResult {
	if err := ValidateURL(rawURL); err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("webhook url rejected")
		return DispatchResult{}
	}
	if event == nil {
		log.Error().Str("url", rawURL).Msg("webhook event is nil")
		return DispatchResult{}
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("action", string(event.Action)).Msg("failed to encode webhook event")
		return DispatchResult{}
	}

	guard := timeout.New[DispatchResult](timeout.Config{
		DefaultTimeout: d.timeout,
	})
	result, err := guard.Execute(ctx, d.timeout, func(ctx context.Context) (DispatchResult, error) {
		return d.post(ctx, rawURL, payload)
	})
	if err != nil {
		log.Warn().Err(err).Str("url", rawURL).Str("action", string(event.Action)).Msg("webhook delivery failed")
		return DispatchResult{}
	}
	return result
}

func (d *Dispatcher) post(ctx context.Context, rawURL string, payload []byte) (DispatchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return DispatchResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return DispatchResult{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
		return DispatchResult{}, fmt.Errorf("webhook returned HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		log.Debug().Err(err).Str("url", rawURL).Msg("could not read webhook response body")
		return DispatchResult{Success: true}, nil
	}
	return DispatchResult{Success: true, UserNotified: userNotified(body)}, nil
}

func userNotified(body []byte) bool {
	return strings.Contains(strings.ToLower(string(body)), notifiedMarker)
}
