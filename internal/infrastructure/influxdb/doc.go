// Package influxdb writes Gray Motion telemetry (sequence runs and
// actuator positions) to InfluxDB v2 through the official
// influxdb-client-go library.
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteActuatorPosition("bench", "shoulder", "rotator", 42.5)
//
// Writes are batched (batch_size points or every flush_interval seconds)
// and never block the caller.
package influxdb
