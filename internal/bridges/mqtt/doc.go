// Package mqtt bridges the motion rig to an MQTT broker.
//
// The bridge is both an external command source and a lifecycle event
// publisher:
//
//	┌──────────────┐  graymotion/command/#    ┌──────────────┐
//	│    Broker    │ ───────────────────────► │    Bridge    │ ──► rig.Controller
//	│              │  graymotion/trigger/+    │  (this pkg)  │
//	│              │ ◄─────────────────────── │              │ ◄── bus: sequence.events,
//	└──────────────┘  graymotion/event/#,     └──────────────┘          scene.events
//	                  graymotion/status
//
// # Commands
//
//   - graymotion/command/sequence/{name}: queue a library sequence
//   - graymotion/command/stop: emergency stop (kills smooth scenes, queues
//     the non-interruptable stop sequence)
//   - graymotion/command/scene/{name}: play a smooth scene
//   - graymotion/trigger/{name}: fire a trigger
//
// Command payloads are optional JSON objects; {"source": "panel"} overrides
// the default source "mqtt" recorded on the run.
//
// # Events
//
// Every SequenceEvent is published as JSON on graymotion/event/sequence/{name}
// and every SceneEvent on graymotion/event/scene/{name}. A retained status
// snapshot is kept on graymotion/status.
//
// # Thread Safety
//
// All exported methods are safe for concurrent use.
package mqtt
