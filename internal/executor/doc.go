// Package executor runs motion sequences on a single dedicated worker.
//
// The Executor owns every actuator it drives: only its worker goroutine
// calls Advance on them. Requests are queued and run one at a time:
//
//	CanRun -> PreExecution -> every Action stepped to completion -> PostExecution
//
// Requests marked non-interruptable (emergency stops) take a priority lane.
// They preempt the running interruptable request at the next tick boundary
// and cancel any interruptable requests still queued. A preempted run skips
// PostExecution and reports OutcomeInterrupted; an AbandonHandler, when
// installed, is told about the abandoned run instead.
//
// Every request produces exactly one SequenceEvent on the events publisher.
//
// State machine:
//
//	IDLE -> RUNNING -> (COMPLETED | INTERRUPTED | FAILED) -> IDLE
//	any  -> SHUTDOWN (terminal; actuators released)
package executor
