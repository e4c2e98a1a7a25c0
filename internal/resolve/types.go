package resolve

import "github.com/voxdial/voxdial/internal/providers"

// Selector is the caller's choice of provider type plus raw parameters for
// one domain. A nil Selector means "use the domain default".
type Selector struct {
	Type   string         `json:"type"`
	Config map[string]any `json:"config,omitempty"`
}

// CallRequest is the wire shape of POST /start_call. It is treated as
// immutable: resolution copies parameter maps and never writes back.
type CallRequest struct {
	ToPhone        string            `json:"to_phone"`
	FromPhone      string            `json:"from_phone,omitempty"`
	BaseURL        string            `json:"base_url,omitempty"`
	PromptPreamble string            `json:"prompt_preamble,omitempty"`
	InitialMessage string            `json:"initial_message,omitempty"`
	Webhooks       []string          `json:"webhooks,omitempty"`
	EnvVars        map[string]string `json:"env_vars,omitempty"`
	Agent          *Selector         `json:"agent,omitempty"`
	Transcriber    *Selector         `json:"transcriber,omitempty"`
	Synthesizer    *Selector         `json:"synthesizer,omitempty"`
	Telephony      *Selector         `json:"telephony,omitempty"`
}

// SubConfiguration is one fully-populated provider configuration. Params
// contains every required parameter, whether supplied explicitly, defaulted,
// or secret-resolved.
type SubConfiguration struct {
	Domain providers.Domain `json:"domain"`
	Type   string           `json:"type"`
	Params map[string]any   `json:"params"`
}

// ResolvedConfiguration is the atomic bundle handed to the conversation
// engine. It never exists in partially-populated form: Resolver.Resolve
// either returns all four sub-configurations or an error.
type ResolvedConfiguration struct {
	BaseURL     string           `json:"base_url"`
	ToPhone     string           `json:"to_phone"`
	FromPhone   string           `json:"from_phone"`
	Webhooks    []string         `json:"webhooks,omitempty"`
	Agent       SubConfiguration `json:"agent"`
	Transcriber SubConfiguration `json:"transcriber"`
	Synthesizer SubConfiguration `json:"synthesizer"`
	Telephony   SubConfiguration `json:"telephony"`
}
