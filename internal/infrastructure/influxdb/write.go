package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by the rig.
const (
	MeasurementSequenceRun = "sequence_run"
	MeasurementActuator    = "actuator_position"
)

// NewActuatorPoint builds a position sample for one actuator.
func NewActuatorPoint(rig, actuator, kind string, position float64, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementActuator,
		map[string]string{
			"rig":      rig,
			"actuator": actuator,
			"kind":     kind,
		},
		map[string]any{"position": position},
		at,
	)
}

// WritePoint queues a point for the next batch. Dropped while disconnected.
func (c *Client) WritePoint(point *write.Point) {
	if point == nil || !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(point)
}

// WriteActuatorPosition records the current position of one actuator.
func (c *Client) WriteActuatorPosition(rig, actuator, kind string, position float64) {
	c.WritePoint(NewActuatorPoint(rig, actuator, kind, position, time.Now()))
}
