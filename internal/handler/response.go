package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"fsanano/inventory-cart/internal/service"
)

type messageResponse struct {
	Message string `json:"message"`
}

type validationResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

type failureResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

func writeValidation(w http.ResponseWriter, ve *service.ValidationError) {
	writeJSON(w, http.StatusUnprocessableEntity, validationResponse{
		Message: ve.Error(),
		Errors:  ve.Fields,
	})
}

const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into v. It writes a 400 and returns
// false when the body is not valid JSON, and a 413 when it exceeds
// maxBodyBytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeError maps a service error to its HTTP response. Unexpected errors
// are logged and answered with 500; when failure is set the 500 body names
// the failed operation and carries the cause.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, failure string) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeValidation(w, ve)
	case errors.Is(err, service.ErrUnauthenticated):
		writeMessage(w, http.StatusUnauthorized, "Unauthenticated.")
	case errors.Is(err, service.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "This action is unauthorized.")
	case errors.Is(err, service.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, service.ErrInsufficientStock):
		writeMessage(w, http.StatusUnprocessableEntity, "Not enough stock available")
	default:
		h.log.Error(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		if failure != "" {
			writeJSON(w, http.StatusInternalServerError, failureResponse{Message: failure, Error: err.Error()})
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Server Error")
	}
}
