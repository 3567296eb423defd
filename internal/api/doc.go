// Package api implements the HTTP REST API and WebSocket event stream for
// the motion rig.
//
// This package provides:
//   - Status and health endpoints
//   - The sequence and scene library, with endpoints to run them
//   - Emergency stop, mode switching and trigger firing
//   - Run history and command audit queries
//   - Optional operator login guarding the command endpoints
//   - A WebSocket hub relaying sequence and scene events as they happen
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Architecture
//
// The API is one of several command sources. Every command goes through
// the rig controller, the same one the MQTT bridge uses, so the executor
// sees identical requests whichever transport they arrived on. Events flow
// back from the in-process bus to subscribed WebSocket clients.
//
// # Graceful Degradation
//
// History, audit, auth and MQTT are optional. Without a history or audit
// repository /runs and /audit answer 503; without an authenticator commands
// are open; without MQTT the metrics simply report it disconnected.
package api
