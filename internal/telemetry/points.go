package telemetry

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gray-motion-core/internal/executor"
	"github.com/nerrad567/gray-motion-core/internal/infrastructure/influxdb"
)

// PointWriter accepts points for asynchronous delivery.
type PointWriter interface {
	WritePoint(point *write.Point)
}

// NewSequenceRunPoint builds the point for one finished request. The point
// is stamped with the run's start time.
func NewSequenceRunPoint(rig string, ev executor.SequenceEvent) *write.Point {
	at := ev.StartedAt
	if at.IsZero() {
		at = time.Now()
	}

	fields := map[string]any{
		"ticks":         ev.Ticks,
		"duration_ms":   ev.DurationMS,
		"actions":       ev.Actions,
		"interruptable": ev.Interruptable,
	}
	if ev.Error != "" {
		fields["error"] = ev.Error
	}

	tags := map[string]string{
		"rig":      rig,
		"sequence": ev.SequenceID,
		"outcome":  string(ev.Outcome),
	}
	if ev.Source != "" {
		tags["source"] = ev.Source
	}

	return write.NewPoint(influxdb.MeasurementSequenceRun, tags, fields, at)
}
