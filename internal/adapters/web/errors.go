package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"order-desk/internal/core"
)

type errorResponse struct {
	Error     string           `json:"error"`
	Code      string           `json:"code"`
	RequestID string           `json:"request_id,omitempty"`
	Order     *core.SalesOrder `json:"order,omitempty"` // server copy after a rejected transition
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeJSONStatus(w, status, errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	})
}

// writeServiceError maps an ApplicationService error onto a status code and
// error code. Nothing is retried.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		valErr   *core.ValidationError
		convErr  *core.ConversionError
		transErr *core.TransitionError
		netErr   *core.NetworkError
	)
	resp := errorResponse{
		Error:     core.UserMessage(err),
		RequestID: requestIDFromContext(r.Context()),
	}
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, core.ErrUnauthorized):
		resp.Code, status = "UNAUTHORIZED", http.StatusUnauthorized
	case errors.As(err, &valErr):
		resp.Code, status = "VALIDATION_ERROR", http.StatusBadRequest
	case errors.Is(err, core.ErrNoWarehouseAvailable):
		resp.Code, status = "NO_WAREHOUSE_AVAILABLE", http.StatusUnprocessableEntity
	case errors.As(err, &convErr):
		resp.Code, status = "CONVERSION_REJECTED", http.StatusConflict
	case errors.As(err, &transErr):
		resp.Code, status = "TRANSITION_REJECTED", http.StatusConflict
		resp.Order = transErr.Current
	case errors.Is(err, core.ErrNotFound):
		resp.Code, status = "NOT_FOUND", http.StatusNotFound
	case errors.As(err, &netErr):
		resp.Code, status = "UPSTREAM_UNAVAILABLE", http.StatusBadGateway
	default:
		resp.Code = "INTERNAL_ERROR"
		resp.Error = "internal server error"
	}
	writeJSONStatus(w, status, resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
