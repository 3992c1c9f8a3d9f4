package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"order-desk/internal/app"
	"order-desk/internal/core"
)

const sseKeepAlive = 25 * time.Second

type pendingEvent struct {
	Version uint64       `json:"version"`
	Total   int          `json:"total"`
	Page    int          `json:"page"`
	Limit   int          `json:"limit"`
	Items   []core.Quote `json:"items"`
}

// sendSSE writes one SSE event and flushes. data is JSON-marshalled.
func sendSSE(w http.ResponseWriter, rc *http.ResponseController, event string, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, b); err != nil {
		return err
	}
	return rc.Flush()
}

// pendingEvents handles GET /api/quotes/pending/events?page=&limit=&q=.
//
// Streams one caller's page of pending quotes as SSE. The page is fetched
// once with the caller's session and sent as a "pending" event; after every
// change to the collection it is pruned of newly converted quotes and sent
// again if it shrank. Other callers' listings are never sent. A comment line
// goes out every sseKeepAlive to hold proxies open.
func (h *Handler) pendingEvents(w http.ResponseWriter, r *http.Request) {
	changed := h.svc.PendingChanged()
	result, err := h.svc.ListPendingQuotes(r.Context(), sessionFromContext(r.Context()), app.ListQuotesRequest{
		Page:  queryInt(r, "page"),
		Limit: queryInt(r, "limit"),
		Query: r.URL.Query().Get("q"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()

	send := func(res *app.PendingQuotesResult) bool {
		ev := pendingEvent{Version: res.Version, Total: res.Total, Page: res.Page, Limit: res.Limit, Items: res.Quotes}
		if err := sendSSE(w, rc, "pending", ev); err != nil {
			h.logger.Debug("pending stream closed", zap.Error(err))
			return false
		}
		return true
	}
	if !send(result) {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-changed:
			changed = h.svc.PendingChanged()
			pruned := h.svc.PrunePending(result)
			if len(pruned.Quotes) == len(result.Quotes) {
				continue
			}
			result = pruned
			if !send(result) {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
