// Package web is the JSON gateway over the ApplicationService.
package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"order-desk/internal/app"
	"order-desk/internal/core"
)

// Handler holds the ApplicationService and the session used when a request
// carries no bearer token.
type Handler struct {
	svc      app.ApplicationService
	fallback core.Session
	logger   *zap.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, fallback core.Session, allowedOrigins string, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		svc:      svc,
		fallback: fallback,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	r.Group(func(r chi.Router) {
		r.Use(h.WithSession)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/me", h.me)

		// Quotes
		r.Get("/api/quotes/pending", h.listPendingQuotes)
		r.Get("/api/quotes/pending/events", h.pendingEvents)
		r.Get("/api/warehouses", h.listWarehouses)
		r.Post("/api/quotes/{id}/convert", h.convertQuote)

		// Orders
		r.Get("/api/orders", h.listOrders)
		r.Get("/api/orders/export", h.exportOrders)
		r.Get("/api/orders/{id}", h.getOrder)
		r.Post("/api/orders/{id}/actions/{action}", h.applyOrderAction)
		r.Post("/api/orders/{id}/advance", h.advanceOrder)
		r.Post("/api/orders/{id}/cancel", h.cancelOrder)
		r.Put("/api/orders/{id}/status", h.overrideOrderStatus)
	})

	return r
}

// health reports liveness and the pending-quote collection version.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status         string `json:"status"`
		PendingVersion uint64 `json:"pendingVersion"`
	}
	writeJSON(w, response{Status: "ok", PendingVersion: h.svc.PendingSnapshot().Version})
}

// fail writes err as a JSON error, logging anything that maps to a 5xx.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var netErr *core.NetworkError
	switch {
	case errors.As(err, &netErr):
		h.logger.Warn("backend unreachable", zap.Error(err), zap.String("request_id", requestIDFromContext(r.Context())))
	case isClientError(err):
	default:
		h.logger.Error("request failed", zap.Error(err), zap.String("request_id", requestIDFromContext(r.Context())))
	}
	writeServiceError(w, r, err)
}

func isClientError(err error) bool {
	var (
		valErr   *core.ValidationError
		convErr  *core.ConversionError
		transErr *core.TransitionError
	)
	return errors.Is(err, core.ErrUnauthorized) ||
		errors.Is(err, core.ErrNotFound) ||
		errors.Is(err, core.ErrNoWarehouseAvailable) ||
		errors.As(err, &valErr) ||
		errors.As(err, &convErr) ||
		errors.As(err, &transErr)
}

// pathID parses a positive integer URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid "+name, "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter; absent or malformed is 0.
func queryInt(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(name))
	return v
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors. An empty body
// leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
