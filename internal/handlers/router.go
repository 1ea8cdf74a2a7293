package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/comexware/importdesk/internal/service"
	"github.com/comexware/importdesk/internal/store"
)

// Router wraps the mux router and the process façade
type Router struct {
	*mux.Router
	processes *service.ProcessService
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(processes *service.ProcessService) *Router {
	r := &Router{
		Router:    mux.NewRouter(),
		processes: processes,
	}

	r.Use(requestID)

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/processes", r.listProcesses).Methods("GET")
	api.HandleFunc("/processes/{key}", r.updateProcessHeader).Methods("PATCH")
	api.HandleFunc("/processes/{key}/products", r.listChildProducts).Methods("GET")
	api.HandleFunc("/transit", r.listTransit).Methods("GET")
	api.HandleFunc("/received", r.listReceived).Methods("GET")

	// Operator diagnostics ("test database" button)
	api.HandleFunc("/diagnostics/database", r.testConnection).Methods("GET")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error payload with a stable machine-readable code
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError maps façade failures onto HTTP statuses. The UI renders
// these as a dismissible banner with a retry affordance; it never sees a raw
// transport error.
func respondServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "no line items exist for that process")
		return
	}
	if errors.Is(err, service.ErrNoFields) {
		respondError(w, http.StatusBadRequest, "empty_patch", "request patches no updatable fields")
		return
	}

	var ce *store.ClassifiedError
	if errors.As(err, &ce) {
		switch ce.Kind {
		case store.ClassConnectivity:
			respondError(w, http.StatusBadGateway, string(ce.Kind), ce.Error())
		case store.ClassTransient:
			respondError(w, http.StatusServiceUnavailable, string(ce.Kind), ce.Error())
		default:
			respondError(w, http.StatusInternalServerError, string(ce.Kind), ce.Error())
		}
		return
	}

	respondError(w, http.StatusInternalServerError, "internal", err.Error())
}
