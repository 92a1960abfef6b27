// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads provider API keys from a directory of plain-text
// files. Each file is one secret: the filename is the key name and the
// trimmed contents are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// DefaultDir is where the CLI looks for secret files.
const DefaultDir = ".secrets/"

// Key files understood by Apply.
const (
	OpenAIKey     = "openai-api-key"
	AnthropicKey  = "anthropic-api-key"
	PerplexityKey = "perplexity-api-key"
)

// Secrets maps key names to values.
type Secrets map[string]string

// Load reads all files in dir. A missing directory yields an empty set.
// Dotfiles, subdirectories and empty files are skipped; unreadable files
// are logged and skipped.
func Load(dir string, log *zap.Logger) (Secrets, error) {
	if log == nil {
		log = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(Secrets)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			out[name] = value
		}
	}
	return out, nil
}

// Keys returns the loaded key names in sorted order.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Apply fills API keys that cfg leaves empty. Keys already set by config
// or environment win. The chat key follows the configured provider.
func (s Secrets) Apply(cfg *types.Config) {
	if cfg.Chat.APIKey == "" {
		key := OpenAIKey
		if cfg.Chat.Provider == types.ProviderAnthropic {
			key = AnthropicKey
		}
		cfg.Chat.APIKey = s[key]
	}
	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = s[PerplexityKey]
	}
}
