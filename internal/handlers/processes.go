package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/comexware/importdesk/internal/aggregate"
	"github.com/comexware/importdesk/internal/service"
)

// listProcesses returns the aggregated process list.
// Query params: status (exact match), q (free text).
func (r *Router) listProcesses(w http.ResponseWriter, req *http.Request) {
	criteria := aggregate.Criteria{
		StatusEquals: req.URL.Query().Get("status"),
		SearchText:   req.URL.Query().Get("q"),
	}

	entities, err := r.processes.ListProcesses(req.Context(), criteria)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entities)
}

// listChildProducts returns the detail rows under one process
func (r *Router) listChildProducts(w http.ResponseWriter, req *http.Request) {
	key, ok := businessKey(w, req)
	if !ok {
		return
	}

	products, err := r.processes.ListChildProducts(req.Context(), key)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// updateProcessHeader patches header fields on the most recent line item of
// a process and returns the re-aggregated entity
func (r *Router) updateProcessHeader(w http.ResponseWriter, req *http.Request) {
	key, ok := businessKey(w, req)
	if !ok {
		return
	}

	var patch service.HeaderPatch
	if err := json.NewDecoder(req.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "bad_payload", "invalid JSON payload")
		return
	}

	entity, err := r.processes.UpdateProcessHeader(req.Context(), key, patch)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entity)
}

// listTransit returns raw transit rows.
// Query params: key (business key), q (free text).
func (r *Router) listTransit(w http.ResponseWriter, req *http.Request) {
	key, ok := optionalKey(w, req)
	if !ok {
		return
	}

	records, err := r.processes.ListTransitRecords(req.Context(), key, req.URL.Query().Get("q"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// listReceived returns raw receiving rows.
// Query params: key (business key), q (free text).
func (r *Router) listReceived(w http.ResponseWriter, req *http.Request) {
	key, ok := optionalKey(w, req)
	if !ok {
		return
	}

	records, err := r.processes.ListReceivedRecords(req.Context(), key, req.URL.Query().Get("q"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// testConnection probes both access paths and reports per-path reachability
func (r *Router) testConnection(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, r.processes.TestConnection(req.Context()))
}

// businessKey parses the path variable; responds 400 on garbage
func businessKey(w http.ResponseWriter, req *http.Request) (int64, bool) {
	raw := mux.Vars(req)["key"]
	key, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || key <= 0 {
		respondError(w, http.StatusBadRequest, "bad_key", "business key must be a positive integer")
		return 0, false
	}
	return key, true
}

// optionalKey parses the key query parameter when present
func optionalKey(w http.ResponseWriter, req *http.Request) (*int64, bool) {
	raw := req.URL.Query().Get("key")
	if raw == "" {
		return nil, true
	}
	key, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || key <= 0 {
		respondError(w, http.StatusBadRequest, "bad_key", "business key must be a positive integer")
		return nil, false
	}
	return &key, true
}
