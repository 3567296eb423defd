package history

import (
	"context"
	"time"

	"github.com/nerrad567/gray-motion-core/internal/executor"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Run is one recorded sequence run.
type Run struct {
	RunID         string           `json:"run_id"`
	Sequence      string           `json:"sequence"`
	Outcome       executor.Outcome `json:"outcome"`
	Source        string           `json:"source,omitempty"`
	Interruptable bool             `json:"interruptable"`
	Error         string           `json:"error,omitempty"`
	StartedAt     time.Time        `json:"started_at"`
	DurationMS    int64            `json:"duration_ms"`
	Ticks         int              `json:"ticks"`
	Actions       int              `json:"actions"`
}

// RunFromEvent converts an executor event into a Run.
func RunFromEvent(ev executor.SequenceEvent) Run {
	return Run{
		RunID:         ev.RunID,
		Sequence:      ev.SequenceID,
		Outcome:       ev.Outcome,
		Source:        ev.Source,
		Interruptable: ev.Interruptable,
		Error:         ev.Error,
		StartedAt:     ev.StartedAt,
		DurationMS:    ev.DurationMS,
		Ticks:         ev.Ticks,
		Actions:       ev.Actions,
	}
}

// Repository stores and retrieves sequence runs.
//
// Implementations must be safe for concurrent use.
type Repository interface {
	// Record persists a run. Recording the same run ID twice replaces the
	// earlier row.
	Record(ctx context.Context, run Run) error

	// ListRuns returns runs newest first. An empty sequence lists every
	// sequence. limit is clamped to a sane range.
	ListRuns(ctx context.Context, sequence string, limit int) ([]Run, error)
}
