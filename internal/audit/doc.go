// Package audit keeps a trail of operator commands.
//
// Every run, stop, scene, trigger and mode command is recorded with the
// transport that carried it (api, mqtt, panel, cli) and whether the rig
// accepted it. Accepted sequence runs carry their run ID so the trail can
// be joined with run history.
//
// Controller wraps the rig controller, so the HTTP API and the MQTT bridge
// are audited without either knowing about it.
package audit
