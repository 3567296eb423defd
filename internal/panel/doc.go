// Package panel serves the operator console, a small browser UI for the
// rig, as an embedded asset.
//
// The console lists the sequence and scene library, runs entries, fires
// triggers, toggles the rig mode and raises the emergency stop. It talks
// only to the public /api/v1 endpoints and follows progress over the
// WebSocket event stream, so it needs nothing from the server beyond
// static file serving.
//
// Assets are embedded with go:embed. A directory on disk can override
// them during development; unknown paths fall back to index.html.
package panel
