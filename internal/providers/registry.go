package providers

import openai "github.com/sashabaranov/go-openai"

// Env var names for every secret a provider can require. Each is overridable
// per request through the env_vars map using its lowercase override key.
const (
	EnvOpenAIKey         = "OPENAI_API_KEY"
	EnvAnthropicKey      = "ANTHROPIC_API_KEY"
	EnvDeepgramKey       = "DEEPGRAM_API_KEY"
	EnvAzureSpeechKey    = "AZURE_SPEECH_KEY"
	EnvAzureSpeechRegion = "AZURE_SPEECH_REGION"
	EnvElevenLabsKey     = "ELEVEN_LABS_API_KEY"
	EnvElevenLabsVoiceID = "ELEVEN_LABS_VOICE_ID"
	EnvTwilioAccountSID  = "TWILIO_ACCOUNT_SID"
	EnvTwilioAuthToken   = "TWILIO_AUTH_TOKEN"
	EnvTwilioPhoneNumber = "TWILIO_PHONE_NUMBER"
)

// OriginNumberSecret resolves the outbound caller number when the request
// does not supply from_phone.
var OriginNumberSecret = Secret{
	Param:    "from_phone",
	Override: "twilio_phone_number",
	EnvVar:   EnvTwilioPhoneNumber,
}

// NewRegistry builds the immutable provider table. The catalogue is static;
// adding a provider means adding an entry here and nowhere else.
func NewRegistry() *Registry {
	azureSpeechSecrets := []Secret{
		{Param: "azure_speech_key", Override: "azure_speech_key", EnvVar: EnvAzureSpeechKey},
		{Param: "azure_speech_region", Override: "azure_speech_region", EnvVar: EnvAzureSpeechRegion},
	}

	specs := []Spec{
		{
			Domain:   DomainAgent,
			Type:     "chat_gpt",
			Required: []string{"model", "prompt_preamble", "initial_message", "openai_api_key"},
			Defaults: map[string]any{
				"model":                       openai.GPT4o,
				"generate_responses":          true,
				"allowed_idle_time_seconds":   15,
				"end_conversation_on_goodbye": true,
			},
			Secrets: []Secret{
				{Param: "openai_api_key", Override: "openai_api_key", EnvVar: EnvOpenAIKey},
			},
		},
		{
			Domain:   DomainAgent,
			Type:     "anthropic",
			Required: []string{"model", "prompt_preamble", "initial_message", "anthropic_api_key"},
			Defaults: map[string]any{
				"model":                     "claude-3-5-sonnet-latest",
				"generate_responses":        true,
				"allowed_idle_time_seconds": 15,
			},
			Secrets: []Secret{
				{Param: "anthropic_api_key", Override: "anthropic_api_key", EnvVar: EnvAnthropicKey},
			},
		},
		{
			Domain:   DomainTranscription,
			Type:     "deepgram",
			Required: []string{"model", "language", "sampling_rate", "audio_encoding", "chunk_size", "deepgram_api_key"},
			Defaults: map[string]any{
				"model":              "nova-2",
				"endpointing":        "punctuation",
				"mute_during_speech": false,
			},
			Secrets: []Secret{
				{Param: "deepgram_api_key", Override: "deepgram_api_key", EnvVar: EnvDeepgramKey},
			},
		},
		{
			Domain:   DomainTranscription,
			Type:     "azure",
			Required: []string{"language", "sampling_rate", "audio_encoding", "chunk_size", "azure_speech_key", "azure_speech_region"},
			Secrets:  azureSpeechSecrets,
		},
		{
			Domain:   DomainSynthesis,
			Type:     "azure",
			Required: []string{"voice_name", "sampling_rate", "audio_encoding", "azure_speech_key", "azure_speech_region"},
			Defaults: map[string]any{
				"voice_name":    "en-GB-NoahNeural",
				"pitch":         0,
				"rate":          15,
				"language_code": "en-US",
			},
			Secrets: azureSpeechSecrets,
		},
		{
			Domain:   DomainSynthesis,
			Type:     "eleven_labs",
			Required: []string{"sampling_rate", "audio_encoding", "eleven_labs_api_key", "voice_id"},
			Defaults: map[string]any{
				"model_id":         "eleven_turbo_v2",
				"stability":        0.5,
				"similarity_boost": 0.75,
			},
			Secrets: []Secret{
				{Param: "eleven_labs_api_key", Override: "eleven_labs_api_key", EnvVar: EnvElevenLabsKey},
				{Param: "voice_id", Override: "eleven_labs_voice_id", EnvVar: EnvElevenLabsVoiceID},
			},
		},
		{
			Domain:   DomainTelephony,
			Type:     "twilio",
			Required: []string{"account_sid", "auth_token"},
			Secrets: []Secret{
				{Param: "account_sid", Override: "twilio_account_sid", EnvVar: EnvTwilioAccountSID},
				{Param: "auth_token", Override: "twilio_auth_token", EnvVar: EnvTwilioAuthToken},
			},
		},
	}

	table := make(map[Domain]map[string]Spec)
	for _, spec := range specs {
		byType, ok := table[spec.Domain]
		if !ok {
			byType = make(map[string]Spec)
			table[spec.Domain] = byType
		}
		byType[spec.Type] = spec
	}

	return &Registry{
		specs: table,
		defaultTypes: map[Domain]string{
			DomainAgent:         "chat_gpt",
			DomainTranscription: "deepgram",
			DomainSynthesis:     "azure",
			DomainTelephony:     "twilio",
		},
		sharedDefaults: map[Domain]map[string]any{
			DomainAgent: {
				"prompt_preamble": "Have a pleasant conversation about life",
				"initial_message": "Hi, how are you doing today?",
			},
			DomainTranscription: {
				"sampling_rate":  8000,
				"audio_encoding": "mulaw",
				"chunk_size":     3200,
				"language":       "en",
			},
			DomainSynthesis: {
				"sampling_rate":  8000,
				"audio_encoding": "mulaw",
			},
			DomainTelephony: {},
		},
	}
}
