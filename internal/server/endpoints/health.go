package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/jackzampolin/pafill/internal/api"
	"github.com/jackzampolin/pafill/internal/svcctx"
	"github.com/jackzampolin/pafill/version"
)

// HealthEndpoint handles GET /health.
type HealthEndpoint struct{}

var _ api.Endpoint = (*HealthEndpoint)(nil)

// HealthResponse reports server status.
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Credential bool   `json:"credential_configured"`
}

func (e *HealthEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/health", e.handler
}

func (e *HealthEndpoint) RequiresInit() bool { return false }

func (e *HealthEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: version.GitRelease,
	}
	if cm := svcctx.ConfigFrom(r.Context()); cm != nil {
		resp.Credential = cm.Get().InferenceConfig().APIKey != ""
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
