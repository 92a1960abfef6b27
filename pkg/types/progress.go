// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Stage tags a ProgressEvent with the pipeline boundary it reports.
type Stage string

const (
	StageStarting         Stage = "starting"
	StageQueryGeneration  Stage = "query_generation"
	StageQueryComplete    Stage = "query_complete"
	StageResearch         Stage = "research"
	StageResearchComplete Stage = "research_complete"
	StageFormatting       Stage = "formatting"
	StageComplete         Stage = "complete"
	StageError            Stage = "error"
)

// ProgressError is the progress value carried by error events.
const ProgressError = -1

// stageProgress maps each non-error stage to its fixed completion percentage.
var stageProgress = map[Stage]int{
	StageStarting:         0,
	StageQueryGeneration:  10,
	StageQueryComplete:    30,
	StageResearch:         40,
	StageResearchComplete: 70,
	StageFormatting:       80,
	StageComplete:         100,
}

// Progress returns the completion percentage for the stage, or ProgressError
// for the error stage and unknown tags.
func (s Stage) Progress() int {
	if p, ok := stageProgress[s]; ok {
		return p
	}
	return ProgressError
}

// ProgressEvent reports a pipeline stage boundary to UI subscribers. Events
// are fire-and-forget: there is no persistence and no replay.
type ProgressEvent struct {
	// RunID identifies the pipeline run that emitted the event.
	RunID string `json:"runId,omitempty"`

	Stage   Stage  `json:"stage"`
	Message string `json:"message"`

	// Progress is 0-100, or -1 for an error.
	Progress int `json:"progress"`

	// Data is an optional auxiliary payload (e.g. the optimized query).
	Data any `json:"data,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}
