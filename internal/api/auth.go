package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/gray-motion-core/internal/auth"
)

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Password string `json:"password"`
}

// handleLogin exchanges the operator password for a bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil {
		writeNotFound(w, "operator login is not enabled")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Password == "" {
		writeBadRequest(w, "password is required")
		return
	}

	token, err := s.auth.Login(req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.logger.Warn("operator login failed", "remote", r.RemoteAddr)
		writeUnauthorized(w, "invalid credentials")
		return
	case err != nil:
		s.logger.Error("operator login error", "error", err)
		writeInternalError(w, "failed to log in")
		return
	}

	s.logger.Info("operator logged in", "remote", r.RemoteAddr)
	writeJSON(w, http.StatusOK, token)
}
