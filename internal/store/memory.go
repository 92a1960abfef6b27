// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"strings"
	"sync"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Memory is an append-only in-process store with auto-increment ids.
type Memory struct {
	mu      sync.RWMutex
	nextID  int64
	entries map[int64]types.ResearchSummary
}

// NewMemory returns an empty memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[int64]types.ResearchSummary)}
}

// Save stores a copy of s under the next id.
func (m *Memory) Save(_ context.Context, s *types.ResearchSummary) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = m.nextID
	m.entries[s.ID] = cloneSummary(*s)
	return s.ID, nil
}

// Get returns a copy of the summary with id.
func (m *Memory) Get(_ context.Context, id int64) (*types.ResearchSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneSummary(s)
	return &out, nil
}

// List returns matching summaries newest first.
func (m *Memory) List(_ context.Context, opts ListOptions) ([]types.ResearchSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(opts.Query))
	var out []types.ResearchSummary
	skipped := 0
	for id := m.nextID; id > 0 && len(out) < opts.limit(); id-- {
		s, ok := m.entries[id]
		if !ok {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(s.Topic), q) && !strings.Contains(strings.ToLower(s.Title), q) {
			continue
		}
		if skipped < opts.Offset {
			skipped++
			continue
		}
		out = append(out, cloneSummary(s))
	}
	return out, nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

func cloneSummary(s types.ResearchSummary) types.ResearchSummary {
	s.Citations = append([]types.Citation(nil), s.Citations...)
	s.Degraded = append([]types.Stage(nil), s.Degraded...)
	return s
}
