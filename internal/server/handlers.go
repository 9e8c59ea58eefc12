package server

import (
	"encoding/json"
	"net/http"
	"time"
)

var startTime = time.Now()

// handleHealth is the liveness probe
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleSystemStatus reports service and database status
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	dbStatus := "ok"
	if err := s.db.Conn().Ping(); err != nil {
		dbStatus = "unavailable"
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"database":       dbStatus,
		"uptime_seconds": int(time.Since(startTime).Seconds()),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}
