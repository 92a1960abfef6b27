// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by clients that call external APIs.
type HTTPConfig struct {
	// Timeout bounds a single request, including reading the response body.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-assistant/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Model is the AI model identifier (e.g. "gpt-4o", "sonar-pro").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// MaxRetries is the number of retry attempts on HTTP 429. Only chat calls
	// retry; the search-augmented call never does.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// ChatProvider selects the chat-completion implementation.
type ChatProvider string

const (
	ProviderOpenAI    ChatProvider = "openai"
	ProviderAnthropic ChatProvider = "anthropic"
)

// ChatConfig configures the chat-completion capability used by the query
// optimizer and the output structurer.
type ChatConfig struct {
	AIConfig `yaml:",inline" mapstructure:",squash"`

	// Provider selects openai or anthropic.
	Provider ChatProvider `json:"provider" yaml:"provider" mapstructure:"provider"`
}

// SearchConfig configures the search-augmented answering capability.
type SearchConfig struct {
	AIConfig `yaml:",inline" mapstructure:",squash"`

	// DeepModel is the higher-latency model used in deep research mode.
	DeepModel string `json:"deep_model" yaml:"deep_model" mapstructure:"deep_model"`
}

// ResearchConfig holds pipeline defaults applied when a request leaves an
// option unset.
type ResearchConfig struct {
	// MaxTokens is the research call's output budget in standard mode.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// DeepMaxTokens is the research call's output budget in deep mode.
	DeepMaxTokens int `json:"deep_max_tokens" yaml:"deep_max_tokens" mapstructure:"deep_max_tokens"`

	// Temperature is used for the research call.
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`

	// QueryMaxTokens and QueryTemperature configure the query optimizer call.
	QueryMaxTokens   int     `json:"query_max_tokens" yaml:"query_max_tokens" mapstructure:"query_max_tokens"`
	QueryTemperature float64 `json:"query_temperature" yaml:"query_temperature" mapstructure:"query_temperature"`

	// FormatMaxTokens and FormatTemperature configure the output structurer call.
	FormatMaxTokens   int     `json:"format_max_tokens" yaml:"format_max_tokens" mapstructure:"format_max_tokens"`
	FormatTemperature float64 `json:"format_temperature" yaml:"format_temperature" mapstructure:"format_temperature"`

	// SearchDomains is the default source-domain allow-list.
	SearchDomains []string `json:"search_domains,omitempty" yaml:"search_domains,omitempty" mapstructure:"search_domains"`

	// RunTimeout bounds a whole pipeline run started by the HTTP API.
	RunTimeout time.Duration `json:"run_timeout" yaml:"run_timeout" mapstructure:"run_timeout"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `json:"host" yaml:"host" mapstructure:"host"`
	Port int    `json:"port" yaml:"port" mapstructure:"port"`
}

// StorageBackend selects where summaries are kept.
type StorageBackend string

const (
	StorageMemory StorageBackend = "memory"
	StorageSQLite StorageBackend = "sqlite"
)

// StorageConfig selects and configures the summary store.
type StorageConfig struct {
	Backend StorageBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Path is the SQLite database file; ignored by the memory backend.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `json:"level" yaml:"level" mapstructure:"level"`
	Development bool   `json:"development" yaml:"development" mapstructure:"development"`
}

// Config groups all settings for the service and CLI.
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`
	Storage  StorageConfig  `json:"storage" yaml:"storage" mapstructure:"storage"`
	Chat     ChatConfig     `json:"chat" yaml:"chat" mapstructure:"chat"`
	Search   SearchConfig   `json:"search" yaml:"search" mapstructure:"search"`
	Research ResearchConfig `json:"research" yaml:"research" mapstructure:"research"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}
