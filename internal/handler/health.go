package handler

import "net/http"

// GetHealth handles GET /healthz. Unauthenticated; used by liveness probes.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}
