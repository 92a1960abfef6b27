// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func sampleSummary(topic string) *types.ResearchSummary {
	return &types.ResearchSummary{
		Topic:   topic,
		Query:   topic + " literature",
		Title:   "Research on " + topic,
		Content: "Finding [1]. Other [2].",
		Citations: []types.Citation{
			{Authors: "arXiv", Text: "arXiv preprint arXiv:2301.07041", URL: "https://arxiv.org/abs/2301.07041"},
			{Authors: "Nature", Text: "DOI: 10.1038/x", URL: "https://doi.org/10.1038/x"},
		},
		Reasoning: "trace",
		ModelUsed: "sonar-deep-research+gpt-4o",
		Mode:      types.ModeDeep,
		Degraded:  []types.Stage{types.StageFormatting},
		CreatedAt: time.Date(2026, 2, 3, 4, 5, 6, 7000, time.UTC),
	}
}

// backends returns a fresh store of every kind.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := NewSQLite(filepath.Join(t.TempDir(), "db", "summaries.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sq,
	}
}

func TestStore_SaveGet(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			in := sampleSummary("urban heat")

			id, err := s.Save(ctx, in)
			require.NoError(t, err)
			assert.Equal(t, int64(1), id)
			assert.Equal(t, id, in.ID)

			got, err := s.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, in, got)

			id2, err := s.Save(ctx, sampleSummary("sea level"))
			require.NoError(t, err)
			assert.Equal(t, int64(2), id2)

			_, err = s.Get(ctx, 99)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_List(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, topic := range []string{"urban heat", "sea level rise", "Urban forestry", "wetlands"} {
				_, err := s.Save(ctx, sampleSummary(topic))
				require.NoError(t, err)
			}

			all, err := s.List(ctx, ListOptions{})
			require.NoError(t, err)
			require.Len(t, all, 4)
			assert.Equal(t, "wetlands", all[0].Topic, "newest first")

			urban, err := s.List(ctx, ListOptions{Query: "URBAN"})
			require.NoError(t, err)
			require.Len(t, urban, 2)
			assert.Equal(t, "Urban forestry", urban[0].Topic)

			page, err := s.List(ctx, ListOptions{Limit: 2, Offset: 1})
			require.NoError(t, err)
			require.Len(t, page, 2)
			assert.Equal(t, "Urban forestry", page[0].Topic)
			assert.Equal(t, "sea level rise", page[1].Topic)
		})
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	m := NewMemory()
	in := sampleSummary("t")
	id, _ := m.Save(context.Background(), in)

	in.Citations[0].Text = "mutated"
	got, err := m.Get(context.Background(), id)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", got.Citations[0].Text)
}

func TestMemory_ConcurrentSave(t *testing.T) {
	m := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.Save(context.Background(), sampleSummary(fmt.Sprintf("topic %d", i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	all, err := m.List(context.Background(), ListOptions{Limit: 100})
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

func TestSQLite_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summaries.db")
	s, err := NewSQLite(path)
	require.NoError(t, err)
	_, err = s.Save(context.Background(), sampleSummary("persisted"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Topic)
}

func TestOpen(t *testing.T) {
	s, err := Open(types.StorageConfig{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(types.StorageConfig{Backend: types.StorageSQLite, Path: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	s.Close()

	_, err = Open(types.StorageConfig{Backend: "postgres"})
	assert.Error(t, err)

	_, err = Open(types.StorageConfig{Backend: types.StorageSQLite})
	assert.Error(t, err)
}
