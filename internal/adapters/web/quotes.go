package web

import (
	"net/http"

	"order-desk/internal/app"
	"order-desk/internal/core"
)

type pendingQuotesResponse struct {
	Items   []core.Quote `json:"items"`
	Total   int          `json:"total"`
	Page    int          `json:"page"`
	Limit   int          `json:"limit"`
	Version uint64       `json:"version"`
}

// listPendingQuotes handles GET /api/quotes/pending?page=&limit=&q=.
func (h *Handler) listPendingQuotes(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListPendingQuotes(r.Context(), sessionFromContext(r.Context()), app.ListQuotesRequest{
		Page:  queryInt(r, "page"),
		Limit: queryInt(r, "limit"),
		Query: r.URL.Query().Get("q"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, pendingQuotesResponse{
		Items:   result.Quotes,
		Total:   result.Total,
		Page:    result.Page,
		Limit:   result.Limit,
		Version: result.Version,
	})
}

// listWarehouses handles GET /api/warehouses: the warehouses the caller may ship from.
func (h *Handler) listWarehouses(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ResolveWarehouses(r.Context(), sessionFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, result.Warehouses)
}

// convertQuote handles POST /api/quotes/{id}/convert.
// Body: { "warehouseId": 3 }
func (h *Handler) convertQuote(w http.ResponseWriter, r *http.Request) {
	quoteID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		WarehouseID *int `json:"warehouseId"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.ConvertQuote(r.Context(), sessionFromContext(r.Context()), app.ConvertQuoteRequest{
		QuoteID:     quoteID,
		WarehouseID: body.WarehouseID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	type response struct {
		QuoteID   int                  `json:"quoteId"`
		Order     *core.SalesOrder     `json:"order"`
		Warehouse core.WarehouseOption `json:"warehouse"`
	}
	writeJSONStatus(w, http.StatusCreated, response{
		QuoteID:   result.QuoteID,
		Order:     result.Order,
		Warehouse: result.Warehouse,
	})
}
