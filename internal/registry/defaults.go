package registry

// Builtin holds the static defaults for providers the host knows out of the
// box. The daemon seeds the registry from this list at startup; plugins may
// register more at any time.
var Builtin = []ProviderDescriptor{
	{
		Name:    "anthropic",
		BaseURL: "https://api.anthropic.com/v1",
		API:     "anthropic",
		Models: []ModelDescriptor{
			{ID: "claude-sonnet-4-5", Name: "Claude Sonnet 4.5"},
			{ID: "claude-haiku-4-5", Name: "Claude Haiku 4.5"},
		},
	},
	{
		Name:    "openai",
		BaseURL: "https://api.openai.com/v1",
		API:     "openai",
		Models: []ModelDescriptor{
			{ID: "gpt-4o", Name: "GPT-4o"},
			{ID: "gpt-4o-mini", Name: "GPT-4o mini"},
		},
	},
	{
		Name:    "google",
		BaseURL: "https://generativelanguage.googleapis.com/v1beta/openai",
		API:     "openai",
		Models: []ModelDescriptor{
			{ID: "gemini-2.5-pro", Name: "Gemini 2.5 Pro"},
		},
	},
	{
		Name:    "ollama",
		BaseURL: "http://localhost:11434",
		API:     "ollama",
	},
}
