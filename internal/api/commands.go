package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-motion-core/internal/audit"
)

// maxQueryParamLen limits path and query parameter length.
const maxQueryParamLen = 100

// defaultSource attributes commands that do not name their own source.
const defaultSource = "api"

// commandRequest is the optional body for run, stop and scene requests.
type commandRequest struct {
	Source string `json:"source"`
}

// modeRequest is the request body for PUT /mode.
type modeRequest struct {
	Enabled *bool `json:"enabled"`
}

// decodeCommand reads an optional command body. An empty body is valid.
func decodeCommand(r *http.Request) (commandRequest, error) {
	var req commandRequest
	if r.Body == nil {
		req.Source = defaultSource
		return req, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, err
	}
	if req.Source == "" {
		req.Source = defaultSource
	}
	return req, nil
}

// nameParam extracts and bounds the {name} URL parameter.
func nameParam(r *http.Request) (string, bool) {
	name := chi.URLParam(r, "name")
	if name == "" || len(name) > maxQueryParamLen {
		return "", false
	}
	return name, true
}

// handleListSequences returns the sequence library.
func (s *Server) handleListSequences(w http.ResponseWriter, _ *http.Request) {
	seqs := s.library.Sequences()
	writeJSON(w, http.StatusOK, map[string]any{"sequences": seqs, "count": len(seqs)})
}

// handleGetSequence describes one library sequence.
func (s *Server) handleGetSequence(w http.ResponseWriter, r *http.Request) {
	name, ok := nameParam(r)
	if !ok {
		writeBadRequest(w, "invalid sequence name")
		return
	}
	for _, info := range s.library.Sequences() {
		if info.Name == name {
			writeJSON(w, http.StatusOK, info)
			return
		}
	}
	writeNotFound(w, "sequence not found")
}

// handleRunSequence queues a library sequence.
//
// Returns 202 Accepted with the run ID; the outcome arrives later as a
// sequence event on the WebSocket and in /runs.
func (s *Server) handleRunSequence(w http.ResponseWriter, r *http.Request) {
	name, ok := nameParam(r)
	if !ok {
		writeBadRequest(w, "invalid sequence name")
		return
	}
	req, err := decodeCommand(r)
	if err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	runID, err := s.ctrl.RunSequence(name, req.Source)
	if err != nil {
		writeCommandError(w, err)
		return
	}

	s.logger.Info("sequence requested via API", "sequence", name, "run_id", runID, "source", req.Source)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"run_id":   runID,
		"sequence": name,
		"status":   "queued",
	})
}

// handleStop raises the kill flag and queues the stop sequence.
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCommand(r)
	if err != nil {
		// A malformed body must never block an emergency stop.
		req.Source = defaultSource
	}

	runID, err := s.ctrl.Stop(req.Source)
	if err != nil {
		writeCommandError(w, err)
		return
	}

	s.logger.Warn("stop requested via API", "run_id", runID, "source", req.Source)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"run_id": runID,
		"status": "stopping",
	})
}

// handleListScenes returns the scene library.
func (s *Server) handleListScenes(w http.ResponseWriter, _ *http.Request) {
	scenes := s.library.SceneNames()
	writeJSON(w, http.StatusOK, map[string]any{"scenes": scenes, "count": len(scenes)})
}

// handleRunScene starts a smooth scene.
func (s *Server) handleRunScene(w http.ResponseWriter, r *http.Request) {
	name, ok := nameParam(r)
	if !ok {
		writeBadRequest(w, "invalid scene name")
		return
	}
	req, err := decodeCommand(r)
	if err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if _, err := s.ctrl.PlayScene(name, req.Source); err != nil {
		writeCommandError(w, err)
		return
	}

	s.logger.Info("scene started via API", "scene", name, "source", req.Source)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"scene":  name,
		"status": "playing",
	})
}

// handleFireTrigger fires a named trigger.
func (s *Server) handleFireTrigger(w http.ResponseWriter, r *http.Request) {
	name, ok := nameParam(r)
	if !ok {
		writeBadRequest(w, "invalid trigger name")
		return
	}
	if err := s.ctrl.FireTrigger(name); err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trigger": name, "fired": true})
}

// handleSetMode enables or disables the rig.
func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Enabled == nil {
		writeBadRequest(w, "enabled is required")
		return
	}

	s.ctrl.SetEnabled(*req.Enabled)
	s.logger.Info("rig mode changed via API", "enabled", *req.Enabled)

	status := s.ctrl.Status()
	s.hub.publish(ChannelStatus, status)
	writeJSON(w, http.StatusOK, status)
}

// handleListRuns returns recorded sequence runs, newest first.
//
// Query parameters:
//   - sequence: filter by sequence name
//   - limit: maximum number of runs (clamped by the repository)
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeUnavailable(w, ErrCodeUnavailable, "run history not available")
		return
	}

	q := r.URL.Query()
	sequence := q.Get("sequence")
	if len(sequence) > maxQueryParamLen {
		writeBadRequest(w, "sequence exceeds maximum length")
		return
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := s.history.ListRuns(r.Context(), sequence, limit)
	if err != nil {
		s.logger.Error("failed to list runs", "error", err)
		writeInternalError(w, "failed to list runs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
}

// handleListAudit returns the command trail, most recent first.
// Query parameters: action, source, limit, offset.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeUnavailable(w, ErrCodeUnavailable, "command audit not available")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action: q.Get("action"),
		Source: q.Get("source"),
	}
	if len(filter.Action) > maxQueryParamLen || len(filter.Source) > maxQueryParamLen {
		writeBadRequest(w, "query parameter exceeds maximum length")
		return
	}
	pages := []struct {
		param string
		dst   *int
	}{
		{"limit", &filter.Limit},
		{"offset", &filter.Offset},
	}
	for _, p := range pages {
		raw := q.Get(p.param)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeBadRequest(w, p.param+" must be a non-negative integer")
			return
		}
		*p.dst = n
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list audit entries", "error", err)
		writeInternalError(w, "failed to list audit entries")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
