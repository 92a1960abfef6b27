// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"fmt"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// StageError records which pipeline stage a failure came from.
type StageError struct {
	Stage types.Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// PipelineError is returned by a run that could not produce a summary. Only
// a research stage failure ends a run this way.
type PipelineError struct {
	RunID string
	Err   error
}

func (e *PipelineError) Error() string {
	return "deep research agent failure: " + e.Err.Error()
}

func (e *PipelineError) Unwrap() error { return e.Err }
