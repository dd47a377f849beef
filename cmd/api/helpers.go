package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/drazan344/chat-core/internal/core"
	"github.com/go-chi/chi/v5"
)

// writeJSON writes a JSON response to the client, standardizing the
// Content-Type and status code across every handler.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// readJSON reads and unmarshals a JSON request body, rejecting unknown
// fields and bounding the body size to guard against oversized payloads.
func readJSON(r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, core.MaxMessageBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// writeError writes a standardized {"error": "..."} response.
func writeError(w http.ResponseWriter, status int, message string) {
	type errorResponse struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errorResponse{Error: message})
}

// writeCoreError maps a CoreError's Kind to an HTTP status via its
// StatusGroup and writes the corresponding error response. Unrecognized
// error values fall back to 500.
func writeCoreError(w http.ResponseWriter, err error) {
	cerr, ok := err.(*core.CoreError)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	switch cerr.Kind.StatusGroup() {
	case "refresh":
		writeError(w, http.StatusNonAuthoritativeInformation, "token has expired")
	case "bad_request":
		writeError(w, http.StatusBadRequest, cerr.Message)
	case "unauthorized":
		writeError(w, http.StatusUnauthorized, cerr.Message)
	case "forbidden":
		writeError(w, http.StatusForbidden, cerr.Message)
	case "not_found":
		writeError(w, http.StatusNotFound, cerr.Message)
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// extractIDFromURL extracts an int64 path parameter, e.g. {roomID}.
func extractIDFromURL(r *http.Request, param string) (int64, error) {
	idStr := chi.URLParam(r, param)
	return strconv.ParseInt(idStr, 10, 64)
}
