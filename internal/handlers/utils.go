package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/socialmock/apiserver/internal/apierror"
)

const headerTotalCount = "X-Total-Count"

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a confirmation payload.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps a service failure onto its status. Unclassified
// errors are logged and reported as 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apierror.As(err)
	if apiErr.Kind == apierror.Internal {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeError(w, apiErr.Status(), apiErr.Message)
}

func writeList(w http.ResponseWriter, total int, items any) {
	w.Header().Set(headerTotalCount, strconv.Itoa(total))
	writeJSON(w, http.StatusOK, items)
}

// decodeBody reads a JSON body into dst. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apierror.NewValidation("invalid request")
	}
	return nil
}

// readRawBody returns the request body as raw JSON.
func readRawBody(r *http.Request) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, apierror.NewValidation("invalid request")
	}
	return raw, nil
}

// Healthz reports that the process is serving.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
