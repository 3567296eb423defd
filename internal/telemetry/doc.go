// Package telemetry exports rig activity to InfluxDB.
//
// Two sources feed it:
//
//   - Recorder turns every SequenceEvent on the executor's event topic into
//     a sequence_run point tagged with rig, sequence, outcome and source.
//   - Hooks wraps the rig's executor hooks and, after each run, samples the
//     position of every actuator the run touched. It runs on the executor
//     goroutine, the only goroutine allowed to read actuator positions
//     while sequences run.
//
// Points go to a PointWriter; *influxdb.Client is the production one.
package telemetry
