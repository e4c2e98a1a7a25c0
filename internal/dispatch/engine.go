// Package dispatch hands resolved call configurations to the external
// conversation engine. It owns no retry policy and no timeouts: both belong
// to the engine and to the caller respectively.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/voxdial/voxdial/internal/resolve"
)

// ExecutionDescriptor identifies a dispatched call: the engine's execution id
// and the carrier-side call id it reports back.
type ExecutionDescriptor struct {
	ExecutionID string `json:"execution_id"`
	TelephonyID string `json:"telephony_id"`
}

// Engine is the external conversation engine collaborator. Start places the
// call described by cfg and blocks until the engine has accepted it.
type Engine interface {
	Start(ctx context.Context, cfg resolve.ResolvedConfiguration) (ExecutionDescriptor, error)
}

// HTTPEngine reaches a conversation engine over its JSON HTTP API.
type HTTPEngine struct {
	BaseURL string
	HTTP    *http.Client
}

// NewHTTPEngine constructs an engine client for the given base URL.
func NewHTTPEngine(baseURL string) *HTTPEngine {
	return &HTTPEngine{BaseURL: baseURL, HTTP: &http.Client{}}
}

// Start posts the resolved configuration to the engine's conversations
// endpoint. Deadlines are taken from ctx; the client sets none of its own.
func (e *HTTPEngine) Start(ctx context.Context, cfg resolve.ResolvedConfiguration) (ExecutionDescriptor, error) {
	if e.BaseURL == "" {
		return ExecutionDescriptor{}, fmt.Errorf("missing engine base URL")
	}

	body, err := json.Marshal(cfg)
	if err != nil {
		return ExecutionDescriptor{}, fmt.Errorf("encode configuration: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/v1/conversations", bytes.NewReader(body))
	if err != nil {
		return ExecutionDescriptor{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := e.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	res, err := client.Do(req)
	if err != nil {
		return ExecutionDescriptor{}, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return ExecutionDescriptor{}, statusError(res)
	}

	var resp struct {
		ExecutionID string `json:"execution_id"`
		TelephonyID string `json:"telephony_id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return ExecutionDescriptor{}, fmt.Errorf("decode engine response: %w", err)
	}
	if resp.ExecutionID == "" {
		return ExecutionDescriptor{}, fmt.Errorf("engine response missing execution id")
	}

	return ExecutionDescriptor{ExecutionID: resp.ExecutionID, TelephonyID: resp.TelephonyID}, nil
}

// statusError surfaces the engine's error message when the body carries one.
// Proxies in front of the engine answer with plain text, so an undecodable
// body falls back to the status code.
func statusError(res *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error != "" {
		return fmt.Errorf("%s", resp.Error)
	}
	return fmt.Errorf("engine returned status %d", res.StatusCode)
}
