package handlers

import (
	"net/http"

	"github.com/google/uuid"
)

// requestID tags every request with a correlation ID. Incoming IDs from the
// UI are kept so a dashboard error banner can be matched to server logs.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, req)
	})
}
