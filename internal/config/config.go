// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config assembles types.Config from defaults, an optional YAML
// file and RESEARCH_ASSISTANT_* environment variables through viper.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// RESEARCH_ASSISTANT_SEARCH_API_KEY for search.api_key.
const EnvPrefix = "RESEARCH_ASSISTANT"

// defaults lists every key with its default. Every key must appear here so
// that viper binds its environment variable.
var defaults = map[string]any{
	"server.host": "127.0.0.1",
	"server.port": 8080,

	"storage.backend": string(types.StorageMemory),
	"storage.path":    "data/research.db",

	"chat.provider":    string(types.ProviderOpenAI),
	"chat.model":       "gpt-4o",
	"chat.api_key":     "",
	"chat.base_url":    "",
	"chat.timeout":     2 * time.Minute,
	"chat.user_agent":  "research-assistant",
	"chat.max_retries": 3,

	"search.model":       "sonar-pro",
	"search.deep_model":  "sonar-deep-research",
	"search.api_key":     "",
	"search.base_url":    "https://api.perplexity.ai",
	"search.timeout":     10 * time.Minute,
	"search.user_agent":  "research-assistant",
	"search.max_retries": 0,

	"research.max_tokens":         2000,
	"research.deep_max_tokens":    8000,
	"research.temperature":        0.2,
	"research.query_max_tokens":   300,
	"research.query_temperature":  0.3,
	"research.format_max_tokens":  4000,
	"research.format_temperature": 0.3,
	"research.search_domains":     []string{},
	"research.run_timeout":        15 * time.Minute,

	"log.level":       "info",
	"log.development": false,
}

// SetDefaults registers defaults and environment binding on v.
func SetDefaults(v *viper.Viper) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes v into a Config and validates it. SetDefaults must have been
// called on v.
func Load(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Research.SearchDomains = splitList(cfg.Research.SearchDomains)
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// splitList accepts both a YAML list and a comma-separated env value.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks settings that would otherwise fail deep inside a run.
// Missing API keys are not checked here: secrets are applied later.
func Validate(cfg types.Config) error {
	var errs []error
	switch cfg.Chat.Provider {
	case types.ProviderOpenAI, types.ProviderAnthropic:
	default:
		errs = append(errs, fmt.Errorf("chat.provider: unknown provider %q", cfg.Chat.Provider))
	}
	switch cfg.Storage.Backend {
	case types.StorageMemory:
	case types.StorageSQLite:
		if cfg.Storage.Path == "" {
			errs = append(errs, errors.New("storage.path: required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend: unknown backend %q", cfg.Storage.Backend))
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: %d out of range", cfg.Server.Port))
	}
	if cfg.Chat.Model == "" {
		errs = append(errs, errors.New("chat.model: required"))
	}
	if cfg.Search.Model == "" {
		errs = append(errs, errors.New("search.model: required"))
	}
	if cfg.Research.MaxTokens > types.MaxTokensLimit || cfg.Research.DeepMaxTokens > types.MaxTokensLimit {
		errs = append(errs, fmt.Errorf("research: max tokens above %d", types.MaxTokensLimit))
	}
	if cfg.Research.RunTimeout > 0 && cfg.Research.RunTimeout < cfg.Search.Timeout {
		errs = append(errs, fmt.Errorf("research.run_timeout: %s is shorter than search.timeout %s",
			cfg.Research.RunTimeout, cfg.Search.Timeout))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Dump writes cfg as YAML with API keys redacted.
func Dump(w io.Writer, cfg types.Config) error {
	cfg.Chat.APIKey = redact(cfg.Chat.APIKey)
	cfg.Search.APIKey = redact(cfg.Search.APIKey)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}

func redact(key string) string {
	if key == "" {
		return ""
	}
	return "<redacted>"
}
