package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

var errBodyTooLarge = errors.New("request body too large")

// decodeJSON reads a single JSON value from the body, bounded by the
// configured size. An empty body decodes to the zero value.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.As(err, &tooBig):
			return errBodyTooLarge
		default:
			return fmt.Errorf("invalid JSON body: %w", err)
		}
	}
	return nil
}

// decodeOrReject decodes the body and answers 400/413 itself on failure.
func (s *Server) decodeOrReject(w http.ResponseWriter, r *http.Request, v any) bool {
	err := s.decodeJSON(w, r, v)
	switch {
	case err == nil:
		return true
	case errors.Is(err, errBodyTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
	default:
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
	}
	return false
}
