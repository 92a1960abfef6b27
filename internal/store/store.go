// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store keeps finished research summaries so they can be listed,
// fetched and exported after the run that produced them.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("summary not found")

// DefaultListLimit applies when ListOptions.Limit is not positive.
const DefaultListLimit = 50

// ListOptions filters and pages List results.
type ListOptions struct {
	// Query keeps summaries whose topic or title contains it, ignoring case.
	Query  string
	Limit  int
	Offset int
}

func (o ListOptions) limit() int {
	if o.Limit <= 0 {
		return DefaultListLimit
	}
	return o.Limit
}

// Store persists summaries. Save assigns the summary's ID and changes
// nothing else.
type Store interface {
	Save(ctx context.Context, s *types.ResearchSummary) (int64, error)
	Get(ctx context.Context, id int64) (*types.ResearchSummary, error)

	// List returns summaries newest first.
	List(ctx context.Context, opts ListOptions) ([]types.ResearchSummary, error)
	Close() error
}

// Open returns the store selected by cfg.Backend.
func Open(cfg types.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case types.StorageMemory, "":
		return NewMemory(), nil
	case types.StorageSQLite:
		return NewSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
