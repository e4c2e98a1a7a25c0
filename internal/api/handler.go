package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/voxdial/voxdial/internal/dispatch"
	"github.com/voxdial/voxdial/internal/providers"
	"github.com/voxdial/voxdial/internal/resolve"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler wires the resolver, launcher, and registry into HTTP handlers.
type Handler struct {
	resolver *resolve.Resolver
	launcher *dispatch.Launcher
	registry *providers.Registry
	logger   *zap.Logger

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(resolver *resolve.Resolver, launcher *dispatch.Launcher, registry *providers.Registry, logger *zap.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		resolver: resolver,
		launcher: launcher,
		registry: registry,
		logger:   logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSupportedServices reports, per domain, the closed set of provider
// type names the registry supports. Keys match the request selector fields.
func (h *Handler) handleSupportedServices(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := supportedServicesResponse{
		Agent:       h.registry.SupportedTypes(providers.DomainAgent),
		Transcriber: h.registry.SupportedTypes(providers.DomainTranscription),
		Synthesizer: h.registry.SupportedTypes(providers.DomainSynthesis),
		Telephony:   h.registry.SupportedTypes(providers.DomainTelephony),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleStartCall(w http.ResponseWriter, r *http.Request) {
	var req resolve.CallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if err := validatePhone(req.ToPhone); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "to_phone "+err.Error())
		return
	}

	cfg, err := h.resolver.Resolve(req)
	if err != nil {
		h.writeResolutionError(w, r.Context(), err)
		return
	}

	desc, err := h.launcher.Launch(r.Context(), cfg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Dispatch failed", err.Error())
		return
	}

	resp := startCallResponse{
		Message: "Call started to " + cfg.ToPhone,
		Configuration: configurationSummary{
			AgentType:       cfg.Agent.Type,
			TranscriberType: cfg.Transcriber.Type,
			SynthesizerType: cfg.Synthesizer.Type,
			TelephonyType:   cfg.Telephony.Type,
		},
		ExecutionID: desc.ExecutionID,
		TelephonyID: desc.TelephonyID,
		ToPhone:     cfg.ToPhone,
		FromPhone:   cfg.FromPhone,
		Webhooks:    cfg.Webhooks,
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeResolutionError maps the resolution error taxonomy onto HTTP statuses.
// All resolution failures are caller-remediable, hence 400.
func (h *Handler) writeResolutionError(w http.ResponseWriter, ctx context.Context, err error) {
	requestID := requestIDFromContext(ctx)

	var unsupported providers.UnsupportedTypeError
	var missingCred resolve.MissingCredentialError
	var configErr resolve.ConfigError

	switch {
	case errors.As(err, &unsupported):
		h.logger.Info("rejected unsupported provider type",
			zap.String("domain", string(unsupported.Domain)),
			zap.String("type", unsupported.Type),
			zap.String("request_id", requestID),
		)
		writeDomainError(w, "Unsupported provider type", string(unsupported.Domain), err.Error())
	case errors.As(err, &missingCred):
		h.logger.Info("rejected call with missing credential",
			zap.String("domain", string(missingCred.Domain)),
			zap.String("env_var", missingCred.EnvVar),
			zap.String("request_id", requestID),
		)
		writeDomainError(w, "Missing credential", string(missingCred.Domain), err.Error())
	case errors.As(err, &configErr):
		h.logger.Info("rejected incomplete provider configuration",
			zap.String("domain", string(configErr.Domain)),
			zap.Strings("missing", configErr.Missing),
			zap.String("request_id", requestID),
		)
		writeDomainError(w, "Incomplete configuration", string(configErr.Domain), err.Error())
	default:
		writeInternalError(w, err)
	}
}

// validatePhone checks the destination looks like an E.164 number. Carrier
// side validation is the engine's job; this only rejects obvious garbage.
func validatePhone(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return errors.New("is required")
	}
	if !strings.HasPrefix(phone, "+") {
		return errors.New("must be in E.164 format, starting with +")
	}
	return nil
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type startCallResponse struct {
	Message       string               `json:"message"`
	Configuration configurationSummary `json:"configuration"`
	ExecutionID   string               `json:"execution_id"`
	TelephonyID   string               `json:"telephony_id"`
	ToPhone       string               `json:"to_phone"`
	FromPhone     string               `json:"from_phone"`
	Webhooks      []string             `json:"webhooks,omitempty"`
}

type configurationSummary struct {
	AgentType       string `json:"agent_type"`
	TranscriberType string `json:"transcriber_type"`
	SynthesizerType string `json:"synthesizer_type"`
	TelephonyType   string `json:"telephony_type"`
}

type supportedServicesResponse struct {
	Agent       []string `json:"agent"`
	Transcriber []string `json:"transcriber"`
	Synthesizer []string `json:"synthesizer"`
	Telephony   []string `json:"telephony"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Domain  string `json:"domain,omitempty"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{Error: message, Details: details})
}

func writeDomainError(w http.ResponseWriter, message, domain, details string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: message, Domain: domain, Details: details})
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
