// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitReasoning(t *testing.T) {
	tests := []struct {
		name          string
		in            string
		wantAnswer    string
		wantReasoning string
	}{
		{"no trace", "Answer [1].", "Answer [1].", ""},
		{"leading trace", "<think>plan the search</think>\n\nAnswer [1].", "Answer [1].", "plan the search"},
		{"two traces", "<think>a</think>One. <think>b</think>Two.", "One. Two.", "a\n\nb"},
		{"unterminated trace", "Intro. <think>never closed [2]", "Intro.", "never closed [2]"},
		{"only trace", "<think>all thinking</think>", "", "all thinking"},
		{"empty trace", "<think></think>Body", "Body", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer, reasoning := SplitReasoning(tt.in)
			assert.Equal(t, tt.wantAnswer, answer)
			assert.Equal(t, tt.wantReasoning, reasoning)
			assert.NotContains(t, answer, thinkOpen)
		})
	}
}
