package handlers

import "net/http"

// HealthHandler responds with service health information.
type HealthHandler struct{}

// Live implements GET /healthz for orchestrator probes.
func (HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	respondOK(r.Context(), w, map[string]string{"status": "ok"}, "")
}

// Check implements GET /api/v1/healthcheck.
func (HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	respondOK(r.Context(), w, map[string]string{"status": "OK"}, "Server is running.")
}
