package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/voxdial/voxdial/internal/api"
	"github.com/voxdial/voxdial/internal/dispatch"
	"github.com/voxdial/voxdial/internal/providers"
	"github.com/voxdial/voxdial/internal/resolve"
	"github.com/voxdial/voxdial/internal/secrets"
)

var testEnv = map[string]string{
	providers.EnvOpenAIKey:         "sk-test",
	providers.EnvAnthropicKey:      "ak-test",
	providers.EnvDeepgramKey:       "dg-test",
	providers.EnvAzureSpeechKey:    "az-key",
	providers.EnvAzureSpeechRegion: "eastus",
	providers.EnvElevenLabsKey:     "el-key",
	providers.EnvTwilioAccountSID:  "AC123",
	providers.EnvTwilioAuthToken:   "tok-456",
	providers.EnvTwilioPhoneNumber: "+15550009999",
}

// recordingEngine captures every configuration it is asked to start.
type recordingEngine struct {
	mu      sync.Mutex
	started []resolve.ResolvedConfiguration
}

func (e *recordingEngine) Start(_ context.Context, cfg resolve.ResolvedConfiguration) (dispatch.ExecutionDescriptor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.started = append(e.started, cfg)
	return dispatch.ExecutionDescriptor{
		ExecutionID: "exec-1",
		TelephonyID: "CA123",
	}, nil
}

func (e *recordingEngine) calls() []resolve.ResolvedConfiguration {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]resolve.ResolvedConfiguration, len(e.started))
	copy(out, e.started)
	return out
}

func newRouter(t *testing.T, engine dispatch.Engine, env map[string]string) http.Handler {
	t.Helper()

	registry := providers.NewRegistry()
	secretResolver := secrets.NewResolver(secrets.WithLookup(func(name string) string {
		return env[name]
	}))
	resolver := resolve.NewResolver(registry, secretResolver, "calls.example.com")

	logger := zaptest.NewLogger(t)
	launcher := dispatch.NewLauncher(engine, logger)
	handler := api.NewHandler(resolver, launcher, registry, logger)
	return api.NewRouter(handler, logger, api.WithLogging(false))
}

func performRequest(t *testing.T, handler http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// A bare request with only the destination number resolves and dispatches
// using every default provider type and the default prompt text.
func TestStartCallDefaults(t *testing.T) {
	engine := &recordingEngine{}
	router := newRouter(t, engine, testEnv)

	payload, _ := json.Marshal(map[string]any{"to_phone": "+15550001111"})
	rec := performRequest(t, router, http.MethodPost, "/start_call", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Message       string `json:"message"`
		Configuration struct {
			AgentType       string `json:"agent_type"`
			TranscriberType string `json:"transcriber_type"`
			SynthesizerType string `json:"synthesizer_type"`
			TelephonyType   string `json:"telephony_type"`
		} `json:"configuration"`
		ExecutionID string `json:"execution_id"`
		TelephonyID string `json:"telephony_id"`
		FromPhone   string `json:"from_phone"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if body.Configuration.AgentType != "chat_gpt" ||
		body.Configuration.TranscriberType != "deepgram" ||
		body.Configuration.SynthesizerType != "azure" ||
		body.Configuration.TelephonyType != "twilio" {
		t.Fatalf("unexpected provider types: %+v", body.Configuration)
	}
	if body.ExecutionID != "exec-1" || body.TelephonyID != "CA123" {
		t.Fatalf("unexpected identifiers: %+v", body)
	}

	calls := engine.calls()
	if len(calls) != 1 {
		t.Fatalf("expected one dispatched call, got %d", len(calls))
	}
	if calls[0].Agent.Params["prompt_preamble"] != "Have a pleasant conversation about life" {
		t.Fatalf("expected default prompt, got %v", calls[0].Agent.Params["prompt_preamble"])
	}
}

// An unknown transcriber type is rejected before any dispatch.
func TestStartCallUnknownTranscriber(t *testing.T) {
	engine := &recordingEngine{}
	router := newRouter(t, engine, testEnv)

	payload, _ := json.Marshal(map[string]any{
		"to_phone":    "+15550001111",
		"transcriber": map[string]any{"type": "unknownProvider"},
	})
	rec := performRequest(t, router, http.MethodPost, "/start_call", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body struct {
		Domain  string `json:"domain"`
		Details string `json:"details"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Domain != "transcription" {
		t.Fatalf("expected domain transcription, got %q", body.Domain)
	}
	if len(engine.calls()) != 0 {
		t.Fatalf("expected no dispatch after rejection")
	}
}

// A synthesizer whose voice identifier secret is absent from both the
// overrides and the environment fails naming the exact variable.
func TestStartCallMissingVoiceSecret(t *testing.T) {
	engine := &recordingEngine{}
	router := newRouter(t, engine, testEnv) // testEnv lacks ELEVEN_LABS_VOICE_ID

	payload, _ := json.Marshal(map[string]any{
		"to_phone":    "+15550001111",
		"synthesizer": map[string]any{"type": "eleven_labs", "config": map[string]any{}},
	})
	rec := performRequest(t, router, http.MethodPost, "/start_call", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body struct {
		Error   string `json:"error"`
		Domain  string `json:"domain"`
		Details string `json:"details"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error != "Missing credential" || body.Domain != "synthesis" {
		t.Fatalf("unexpected error body: %+v", body)
	}
	if !bytes.Contains([]byte(body.Details), []byte(providers.EnvElevenLabsVoiceID)) {
		t.Fatalf("expected details naming %s, got %q", providers.EnvElevenLabsVoiceID, body.Details)
	}
	if len(engine.calls()) != 0 {
		t.Fatalf("expected no dispatch after rejection")
	}
}

// Concurrent requests with different override secrets never see each
// other's values.
func TestStartCallConcurrentOverrides(t *testing.T) {
	engine := &recordingEngine{}
	router := newRouter(t, engine, testEnv)

	tokens := []string{"tok-first", "tok-second"}
	var wg sync.WaitGroup
	codes := make([]int, len(tokens))
	for i, token := range tokens {
		wg.Add(1)
		go func() {
			defer wg.Done()
			payload, _ := json.Marshal(map[string]any{
				"to_phone": "+15550001111",
				"env_vars": map[string]string{"twilio_auth_token": token},
			})
			rec := performRequest(t, router, http.MethodPost, "/start_call", payload)
			codes[i] = rec.Code
		}()
	}
	wg.Wait()

	for i, code := range codes {
		if code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}

	calls := engine.calls()
	if len(calls) != 2 {
		t.Fatalf("expected two dispatched calls, got %d", len(calls))
	}
	seen := map[any]bool{}
	for _, call := range calls {
		seen[call.Telephony.Params["auth_token"]] = true
	}
	for _, token := range tokens {
		if !seen[token] {
			t.Fatalf("expected a call dispatched with token %s, saw %v", token, seen)
		}
	}
}

func TestSupportedServicesEndpoint(t *testing.T) {
	router := newRouter(t, &recordingEngine{}, testEnv)

	rec := performRequest(t, router, http.MethodGet, "/supported_services", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string][]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body["telephony"]) != 1 || body["telephony"][0] != "twilio" {
		t.Fatalf("unexpected telephony set: %v", body["telephony"])
	}
}

// Full path through the HTTP engine client against a stub engine server.
func TestStartCallThroughHTTPEngine(t *testing.T) {
	engineServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/conversations" {
			t.Errorf("unexpected engine path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"execution_id": "exec-http",
			"telephony_id": "CA777",
		})
	}))
	defer engineServer.Close()

	router := newRouter(t, dispatch.NewHTTPEngine(engineServer.URL), testEnv)

	payload, _ := json.Marshal(map[string]any{"to_phone": "+15550001111"})
	rec := performRequest(t, router, http.MethodPost, "/start_call", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		ExecutionID string `json:"execution_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.ExecutionID != "exec-http" {
		t.Fatalf("unexpected execution id %s", body.ExecutionID)
	}
}
