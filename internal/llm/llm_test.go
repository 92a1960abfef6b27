// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func TestNewChat(t *testing.T) {
	tests := []struct {
		name     string
		cfg      types.ChatConfig
		wantType any
		wantErr  bool
	}{
		{"openai", types.ChatConfig{Provider: types.ProviderOpenAI, AIConfig: types.AIConfig{APIKey: "k"}}, &OpenAIChat{}, false},
		{"default is openai", types.ChatConfig{AIConfig: types.AIConfig{APIKey: "k"}}, &OpenAIChat{}, false},
		{"anthropic", types.ChatConfig{Provider: types.ProviderAnthropic, AIConfig: types.AIConfig{APIKey: "k"}}, &ClaudeChat{}, false},
		{"missing key", types.ChatConfig{Provider: types.ProviderOpenAI}, nil, true},
		{"unknown provider", types.ChatConfig{Provider: "llama", AIConfig: types.AIConfig{APIKey: "k"}}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewChat(tt.cfg, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, got)
		})
	}
}

func TestNewAnswerer(t *testing.T) {
	_, err := NewAnswerer(types.SearchConfig{}, nil)
	assert.Error(t, err)

	a, err := NewAnswerer(types.SearchConfig{AIConfig: types.AIConfig{APIKey: "k", Model: "sonar-pro"}}, nil)
	require.NoError(t, err)
	p, ok := a.(*PerplexityClient)
	require.True(t, ok)
	assert.Equal(t, DefaultSearchTimeout, p.Client.Timeout)
}
