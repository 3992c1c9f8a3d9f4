package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"order-desk/internal/app"
	"order-desk/internal/core"
	"order-desk/internal/export"
)

type orderResponse struct {
	Order   *core.SalesOrder `json:"order"`
	Actions []core.Action    `json:"actions"`
}

func toOrderResponse(result *app.OrderResult) orderResponse {
	actions := result.Actions
	if actions == nil {
		actions = []core.Action{}
	}
	return orderResponse{Order: result.Order, Actions: actions}
}

// listOrders handles GET /api/orders?status=&q=&page=&limit=.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.svc.ListOrders(r.Context(), sessionFromContext(r.Context()), app.ListOrdersRequest{
		Status: q.Get("status"),
		Query:  q.Get("q"),
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	type response struct {
		Items []core.SalesOrder `json:"items"`
		Total int               `json:"total"`
		Page  int               `json:"page"`
		Limit int               `json:"limit"`
	}
	items := result.Orders
	if items == nil {
		items = []core.SalesOrder{}
	}
	writeJSON(w, response{Items: items, Total: result.Total, Page: result.Page, Limit: result.Limit})
}

// exportOrders handles GET /api/orders/export?status=&q= and streams an XLSX workbook.
func (h *Handler) exportOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.svc.ExportOrders(r.Context(), sessionFromContext(r.Context()), app.ExportOrdersRequest{
		Status: q.Get("status"),
		Query:  q.Get("q"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer result.File.Close()

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+result.Filename+"\"")
	w.Header().Set("Content-Transfer-Encoding", "binary")
	if err := result.File.Write(w); err != nil {
		h.logger.Error("failed to write workbook", zap.Error(err), zap.String("request_id", requestIDFromContext(r.Context())))
	}
}

// getOrder handles GET /api/orders/{id}.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.GetOrder(r.Context(), sessionFromContext(r.Context()), orderID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, toOrderResponse(result))
}

// applyOrderAction handles POST /api/orders/{id}/actions/{action}.
func (h *Handler) applyOrderAction(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	action, err := core.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	result, err := h.svc.ApplyOrderAction(r.Context(), sessionFromContext(r.Context()), orderID, action)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, toOrderResponse(result))
}

// advanceOrder handles POST /api/orders/{id}/advance.
func (h *Handler) advanceOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.AdvanceOrder(r.Context(), sessionFromContext(r.Context()), orderID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, toOrderResponse(result))
}

// cancelOrder handles POST /api/orders/{id}/cancel.
// Body: { "reason": "customer requested" }
func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.CancelOrder(r.Context(), sessionFromContext(r.Context()), app.CancelOrderRequest{
		OrderID: orderID,
		Reason:  body.Reason,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, toOrderResponse(result))
}

// overrideOrderStatus handles PUT /api/orders/{id}/status.
// Body: { "status": "delivered", "note": "..." }
func (h *Handler) overrideOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.OverrideOrderStatus(r.Context(), sessionFromContext(r.Context()), app.StatusOverrideRequest{
		OrderID: orderID,
		Status:  body.Status,
		Note:    body.Note,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, toOrderResponse(result))
}
