// Package resolve turns a raw call request into a fully-populated, validated
// provider configuration for each of the four subsystems, merging request
// overrides, environment-sourced secrets, and provider defaults. It performs
// no network I/O: credentials are resolved as values, not validated against
// the remote provider.
package resolve

import (
	"errors"

	"github.com/voxdial/voxdial/internal/providers"
	"github.com/voxdial/voxdial/internal/secrets"
)

// Resolver orchestrates the four per-domain builders and assembles the
// immutable ResolvedConfiguration. Builders are evaluated in the fixed order
// agent, transcription, synthesis, telephony; the first failure aborts the
// whole resolution and no partial configuration escapes.
type Resolver struct {
	registry    Catalog
	secrets     *secrets.Resolver
	baseURL     string
	agent       Builder
	transcriber Builder
	synthesizer Builder
	telephony   Builder
}

// NewResolver constructs a Resolver. baseURL is the process-wide default used
// when a request does not carry its own base_url.
func NewResolver(registry Catalog, sec *secrets.Resolver, baseURL string) *Resolver {
	return &Resolver{
		registry:    registry,
		secrets:     sec,
		baseURL:     baseURL,
		agent:       NewBuilder(providers.DomainAgent, registry, sec),
		transcriber: NewBuilder(providers.DomainTranscription, registry, sec),
		synthesizer: NewBuilder(providers.DomainSynthesis, registry, sec),
		telephony:   NewBuilder(providers.DomainTelephony, registry, sec),
	}
}

// Resolve consumes req exactly once and returns either a complete
// ResolvedConfiguration or the first resolution error encountered.
func (r *Resolver) Resolve(req CallRequest) (ResolvedConfiguration, error) {
	overrides := secrets.Overrides(req.EnvVars)

	fromPhone := req.FromPhone
	if fromPhone == "" {
		origin := providers.OriginNumberSecret
		value, err := r.secrets.Resolve(overrides.Get(origin.Override), origin.EnvVar)
		if err != nil {
			var notFound secrets.NotFoundError
			if errors.As(err, &notFound) {
				return ResolvedConfiguration{}, MissingCredentialError{
					Domain: providers.DomainTelephony,
					EnvVar: notFound.EnvVar,
				}
			}
			return ResolvedConfiguration{}, err
		}
		fromPhone = value
	}

	baseURL := req.BaseURL
	if baseURL == "" {
		baseURL = r.baseURL
	}

	agent, err := r.agent.Build(seedAgentSelector(req), overrides)
	if err != nil {
		return ResolvedConfiguration{}, err
	}

	transcriber, err := r.transcriber.Build(req.Transcriber, overrides)
	if err != nil {
		return ResolvedConfiguration{}, err
	}

	synthesizer, err := r.synthesizer.Build(req.Synthesizer, overrides)
	if err != nil {
		return ResolvedConfiguration{}, err
	}

	telephony, err := r.telephony.Build(req.Telephony, overrides)
	if err != nil {
		return ResolvedConfiguration{}, err
	}

	webhooks := make([]string, len(req.Webhooks))
	copy(webhooks, req.Webhooks)

	return ResolvedConfiguration{
		BaseURL:     baseURL,
		ToPhone:     req.ToPhone,
		FromPhone:   fromPhone,
		Webhooks:    webhooks,
		Agent:       agent,
		Transcriber: transcriber,
		Synthesizer: synthesizer,
		Telephony:   telephony,
	}, nil
}

// seedAgentSelector folds the request-level prompt_preamble and
// initial_message conveniences into the agent selector without mutating the
// request. An explicit agent.config value still wins.
func seedAgentSelector(req CallRequest) *Selector {
	if req.PromptPreamble == "" && req.InitialMessage == "" {
		return req.Agent
	}

	seeded := Selector{}
	if req.Agent != nil {
		seeded.Type = req.Agent.Type
	}
	seeded.Config = make(map[string]any)
	if req.Agent != nil {
		for key, value := range req.Agent.Config {
			seeded.Config[key] = value
		}
	}
	if req.PromptPreamble != "" {
		if _, ok := seeded.Config["prompt_preamble"]; !ok {
			seeded.Config["prompt_preamble"] = req.PromptPreamble
		}
	}
	if req.InitialMessage != "" {
		if _, ok := seeded.Config["initial_message"]; !ok {
			seeded.Config["initial_message"] = req.InitialMessage
		}
	}
	return &seeded
}
