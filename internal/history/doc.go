// Package history keeps a local log of sequence runs in SQLite.
//
// Every SequenceEvent the executor publishes becomes one sequence_runs row.
// The log survives restarts and stays available when the time-series
// database is not, so the API can answer "what ran, when, and how did it
// end" on its own.
//
// The Recorder subscribes to the executor's event topic and writes through
// a Repository; SQLiteRepository is the production implementation.
package history
