package executor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-motion-core/internal/bus"
	"github.com/nerrad567/gray-motion-core/internal/motion"
)

// Topic keys the executor uses on the process bus.
var (
	// EventsKey carries a SequenceEvent for every finished request.
	EventsKey = bus.NewKey[SequenceEvent]("sequence.events")

	// RequestsKey carries inbound requests from transports.
	RequestsKey = bus.NewKey[Request]("sequence.requests")
)

// State is the executor's lifecycle state.
type State string

const (
	StateIdle        State = "idle"
	StateRunning     State = "running"
	StateCompleted   State = "completed"
	StateInterrupted State = "interrupted"
	StateFailed      State = "failed"
	StateShutdown    State = "shutdown"
)

// Outcome is how a request ended.
type Outcome string

const (
	OutcomeCompleted   Outcome = "completed"
	OutcomeInterrupted Outcome = "interrupted"
	OutcomeFailed      Outcome = "failed"
	OutcomeRefused     Outcome = "refused"
	OutcomeCancelled   Outcome = "cancelled"
)

func (o Outcome) state() State {
	switch o {
	case OutcomeCompleted:
		return StateCompleted
	case OutcomeFailed:
		return StateFailed
	default:
		return StateInterrupted
	}
}

// Request asks the executor to run a sequence.
type Request struct {
	Sequence motion.Sequence

	// Interruptable requests may be preempted by non-interruptable ones.
	Interruptable bool

	// Source identifies who asked (api, mqtt, trigger, cli).
	Source string

	// RunID is assigned by Submit when empty.
	RunID string
}

// NewRequest returns an interruptable request for seq.
func NewRequest(seq motion.Sequence, source string) Request {
	return Request{Sequence: seq, Interruptable: true, Source: source}
}

// EmergencyRequest returns a non-interruptable request for seq.
func EmergencyRequest(seq motion.Sequence, source string) Request {
	return Request{Sequence: seq, Interruptable: false, Source: source}
}

// SequenceEvent announces the end of a request.
type SequenceEvent struct {
	SequenceID    string    `json:"sequence_id"`
	RunID         string    `json:"run_id"`
	Outcome       Outcome   `json:"outcome"`
	Source        string    `json:"source,omitempty"`
	Interruptable bool      `json:"interruptable"`
	Error         string    `json:"error,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	DurationMS    int64     `json:"duration_ms"`
	Ticks         int       `json:"ticks"`
	Actions       int       `json:"actions"` // actions fully completed
}

// Status is a point-in-time snapshot of the executor.
type Status struct {
	State         State     `json:"state"`
	Sequence      string    `json:"sequence,omitempty"`
	RunID         string    `json:"run_id,omitempty"`
	Interruptable bool      `json:"interruptable"`
	Since         time.Time `json:"since"`
	QueueDepth    int       `json:"queue_depth"`
	LastOutcome   Outcome   `json:"last_outcome,omitempty"`
}

// Hooks are the collaborator callbacks around each run.
type Hooks interface {
	// CanRun gates a request, e.g. on external system mode.
	CanRun(ctx context.Context, req Request) bool

	// PreExecution runs before the first action (power rails, indicators).
	PreExecution(ctx context.Context, req Request) error

	// PostExecution runs after a completed or failed run. It is skipped for
	// interrupted runs.
	PostExecution(ctx context.Context, req Request, outcome Outcome) error
}

// AbandonHandler is told about runs abandoned for an emergency request.
type AbandonHandler interface {
	Abandoned(ctx context.Context, req Request)
}

// EventPublisher receives lifecycle events. *bus.Topic[SequenceEvent]
// satisfies it.
type EventPublisher interface {
	Publish(SequenceEvent) error
}

// Logger is the logging interface used by the executor.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NopHooks allows every request and does nothing around runs.
type NopHooks struct{}

func (NopHooks) CanRun(context.Context, Request) bool                  { return true }
func (NopHooks) PreExecution(context.Context, Request) error           { return nil }
func (NopHooks) PostExecution(context.Context, Request, Outcome) error { return nil }

type nopPublisher struct{}

func (nopPublisher) Publish(SequenceEvent) error { return nil }

// GenerateRunID returns a new unique run ID.
func GenerateRunID() string {
	return uuid.New().String()
}
