// Package testutil provides an in-memory stand-in for the sales backend's REST
// API. It enforces the order lifecycle the way the real server does, so
// accessors, the application service and the gateway can be exercised end to end.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"order-desk/internal/core"
)

// RecordedRequest is one call the backend received.
type RecordedRequest struct {
	Method  string
	Path    string
	Header  http.Header
	Body    map[string]any
	Created time.Time
}

// Backend is a fake sales API served by httptest.
type Backend struct {
	mu          sync.Mutex
	quotes      map[int]*core.Quote
	orders      map[int]*core.SalesOrder
	regions     []core.Region
	requests    []RecordedRequest
	nextOrderID int

	// RequireToken makes every request without a bearer header fail with 401.
	RequireToken bool
	// OnConverted is called after a successful conversion, outside the lock.
	OnConverted func(quoteID, orderID int)

	server *httptest.Server
}

// NewBackend starts a fake backend that is closed when t finishes.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{
		quotes:      make(map[int]*core.Quote),
		orders:      make(map[int]*core.SalesOrder),
		nextOrderID: 500,
	}
	b.server = httptest.NewServer(b.routes())
	t.Cleanup(b.server.Close)
	return b
}

// URL is the base URL to hand to api.NewClient.
func (b *Backend) URL() string { return b.server.URL }

// AddQuote seeds a quote.
func (b *Backend) AddQuote(q core.Quote) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.quotes[q.ID] = &q
}

// AddOrder seeds an order.
func (b *Backend) AddOrder(o core.SalesOrder) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders[o.ID] = &o
}

// SetRegions seeds region reference data.
func (b *Backend) SetRegions(regions ...core.Region) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.regions = regions
}

// SetNextOrderID sets the id the next conversion assigns.
func (b *Backend) SetNextOrderID(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextOrderID = id
}

// Order returns the backend's copy of an order.
func (b *Backend) Order(id int) (core.SalesOrder, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.orders[id]
	if !ok {
		return core.SalesOrder{}, false
	}
	return *o, true
}

// Quote returns the backend's copy of a quote.
func (b *Backend) Quote(id int) (core.Quote, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.quotes[id]
	if !ok {
		return core.Quote{}, false
	}
	return *q, true
}

// Requests returns the recorded calls whose method matches and whose path
// starts with prefix. An empty method matches any.
func (b *Backend) Requests(method, prefix string) []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []RecordedRequest
	for _, r := range b.requests {
		if method != "" && r.Method != method {
			continue
		}
		if !strings.HasPrefix(r.Path, prefix) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)
	r.Use(b.authenticate)

	r.Get("/quotes/approval/status/approved", b.listApprovedQuotes)
	r.Get("/quotes/{id}", b.getQuote)
	r.Post("/quotes/{id}/convert-to-order", b.convertQuote)

	r.Get("/orders", b.listOrders)
	r.Get("/orders/status/{status}", b.listOrders)
	r.Get("/orders/{id}", b.getOrder)
	r.Put("/orders/{id}/cancel", b.cancelOrder)
	r.Put("/orders/{id}/status", b.overrideStatus)
	r.Put("/orders/{id}/{step}", b.advanceOrder)

	r.Get("/regions", b.listRegions)
	r.Get("/regions/{id}", b.getRegion)
	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := RecordedRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			Header:  r.Header.Clone(),
			Created: time.Now(),
		}
		if r.Body != nil && r.ContentLength != 0 {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				rec.Body = body
			}
		}
		b.mu.Lock()
		b.requests = append(b.requests, rec)
		b.mu.Unlock()

		if rec.Body != nil {
			ctx := r.Context()
			r = r.WithContext(withBody(ctx, rec.Body))
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.RequireToken && !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) listApprovedQuotes(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	var approved []core.Quote
	for _, q := range b.quotes {
		// Converted quotes are deliberately still listed: clients must filter them.
		if q.Status == core.QuoteApproved {
			approved = append(approved, *q)
		}
	}
	b.mu.Unlock()

	sort.Slice(approved, func(i, j int) bool { return approved[i].ID < approved[j].ID })
	page, limit := pageParams(r)
	items, total := core.Paginate(approved, page, limit)
	writeJSON(w, http.StatusOK, core.QuotePage{Items: items, Total: total, Page: page, Limit: limit})
}

func (b *Backend) getQuote(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	q, ok := b.Quote(id)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "quote not found")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (b *Backend) convertQuote(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	body := bodyFrom(r.Context())
	warehouseID := intField(body, "warehouseId")
	initiatedBy := intField(body, "initiatedBy")

	b.mu.Lock()
	q, ok := b.quotes[id]
	switch {
	case !ok:
		b.mu.Unlock()
		writeError(w, http.StatusNotFound, "NOT_FOUND", "quote not found")
		return
	case q.ConvertedToOrder:
		b.mu.Unlock()
		writeError(w, http.StatusConflict, "ALREADY_CONVERTED", "quote already converted")
		return
	case q.Status != core.QuoteApproved:
		b.mu.Unlock()
		writeError(w, http.StatusConflict, "NOT_APPROVED", "quote is not approved")
		return
	case !b.warehouseExists(warehouseID):
		b.mu.Unlock()
		writeError(w, http.StatusUnprocessableEntity, "INVALID_WAREHOUSE", "warehouse not available")
		return
	}

	orderID := b.nextOrderID
	b.nextOrderID++
	now := time.Now().UTC()
	quoteID := q.ID
	wh := warehouseID
	order := &core.SalesOrder{
		ID:          orderID,
		OrderNumber: fmt.Sprintf("SO-%d", orderID),
		QuoteID:     &quoteID,
		StoreID:     q.StoreID,
		CustomerID:  q.CustomerID,
		SalesRepID:  q.SalesRepID,
		Status:      core.StatusOrdered,
		Currency:    q.Currency,
		TotalAmount: q.Total,
		DepositDue:  q.DepositAmount,
		WarehouseID: &wh,
		Customer:    q.Customer,
		SalesRep:    q.SalesRep,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	b.orders[orderID] = order
	q.ConvertedToOrder = true
	q.ConvertedAt = &now
	q.ConvertedBy = &initiatedBy
	q.ConvertedOrderID = &orderID
	resp := *order
	hook := b.OnConverted
	b.mu.Unlock()

	if hook != nil {
		hook(quoteID, orderID)
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (b *Backend) warehouseExists(id int) bool {
	for _, r := range b.regions {
		for _, w := range r.Warehouses {
			if w.ID == id {
				return true
			}
		}
	}
	return false
}

func (b *Backend) listOrders(w http.ResponseWriter, r *http.Request) {
	status := chi.URLParam(r, "status")

	b.mu.Lock()
	var orders []core.SalesOrder
	for _, o := range b.orders {
		if status != "" && string(o.Status) != status {
			continue
		}
		orders = append(orders, *o)
	}
	b.mu.Unlock()

	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	page, limit := pageParams(r)
	items, total := core.Paginate(orders, page, limit)
	writeJSON(w, http.StatusOK, core.OrderPage{Items: items, Total: total, Page: page, Limit: limit})
}

func (b *Backend) getOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	o, ok := b.Order(id)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "order not found")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

var stepActions = map[string]core.Action{
	"deposit-payment": core.ActionMarkDepositReceived,
	"final-payment":   core.ActionMarkFinalPaymentReceived,
	"pd-complete":     core.ActionMarkPreDeliveryComplete,
	"ship":            core.ActionMarkShipped,
	"deliver":         core.ActionMarkDelivered,
}

func (b *Backend) advanceOrder(w http.ResponseWriter, r *http.Request) {
	action, ok := stepActions[chi.URLParam(r, "step")]
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown order action")
		return
	}
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	b.mu.Lock()
	o, ok := b.orders[id]
	if !ok {
		b.mu.Unlock()
		writeError(w, http.StatusNotFound, "NOT_FOUND", "order not found")
		return
	}
	from, _ := action.Requires()
	if o.Status != from {
		status := o.Status
		b.mu.Unlock()
		writeError(w, http.StatusConflict, "INVALID_TRANSITION",
			fmt.Sprintf("order is %s, %s requires %s", status, action, from))
		return
	}
	o.Status, _ = action.Target()
	o.UpdatedAt = time.Now().UTC()
	resp := *o
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (b *Backend) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	reason, _ := bodyFrom(r.Context())["reason"].(string)
	if strings.TrimSpace(reason) == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "reason is required")
		return
	}

	b.mu.Lock()
	o, ok := b.orders[id]
	if !ok {
		b.mu.Unlock()
		writeError(w, http.StatusNotFound, "NOT_FOUND", "order not found")
		return
	}
	if !core.CanCancel(o.Status) {
		status := o.Status
		b.mu.Unlock()
		writeError(w, http.StatusConflict, "INVALID_TRANSITION", fmt.Sprintf("order is %s and cannot be cancelled", status))
		return
	}
	o.Status = core.StatusCancelled
	o.CancellationReason = reason
	o.UpdatedAt = time.Now().UTC()
	resp := *o
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (b *Backend) overrideStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	body := bodyFrom(r.Context())
	status, err := core.ParseStatus(fmt.Sprint(body["status"]))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	b.mu.Lock()
	o, ok := b.orders[id]
	if !ok {
		b.mu.Unlock()
		writeError(w, http.StatusNotFound, "NOT_FOUND", "order not found")
		return
	}
	o.Status = status
	if note, ok := body["note"].(string); ok {
		o.Note = note
	}
	resp := *o
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (b *Backend) listRegions(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	regions := append([]core.Region(nil), b.regions...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, regions)
}

func (b *Backend) getRegion(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, reg := range b.regions {
		if reg.ID == id {
			writeJSON(w, http.StatusOK, reg)
			return
		}
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "region not found")
}

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

func intField(body map[string]any, key string) int {
	v, ok := body[key].(float64)
	if !ok {
		return 0
	}
	return int(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"error": msg, "code": code})
}
