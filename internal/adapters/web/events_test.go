package web

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-desk/internal/core"
)

// nextPendingEvent reads the stream up to the next "pending" event's data line.
func nextPendingEvent(t *testing.T, rd *bufio.Reader) pendingEvent {
	t.Helper()
	for {
		line, err := rd.ReadString('\n')
		require.NoError(t, err)
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			var ev pendingEvent
			require.NoError(t, json.Unmarshal([]byte(data), &ev))
			return ev
		}
	}
}

func openPendingStream(t *testing.T, h http.Handler, query string) *bufio.Reader {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/quotes/pending/events"+query, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	return bufio.NewReader(resp.Body)
}

func TestPendingEvents_StreamsCallersPage(t *testing.T) {
	h, b := newGateway(t)
	b.AddQuote(core.Quote{ID: 100, QuoteNumber: "Q-100", Status: core.QuoteApproved})

	rd := openPendingStream(t, h, "")
	first := nextPendingEvent(t, rd)
	assert.Equal(t, 1, first.Total)
	require.Len(t, first.Items, 1)
	assert.Equal(t, 100, first.Items[0].ID)

	rec := do(t, h, http.MethodPost, "/api/quotes/100/convert", `{"warehouseId":3}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	converted := nextPendingEvent(t, rd)
	assert.Greater(t, converted.Version, first.Version)
	assert.Empty(t, converted.Items)
	assert.Equal(t, 0, converted.Total)
}

func TestPendingEvents_OnlyOwnPageChangesAreSent(t *testing.T) {
	h, b := newGateway(t)
	b.AddQuote(core.Quote{ID: 100, QuoteNumber: "Q-100", Status: core.QuoteApproved})
	b.AddQuote(core.Quote{ID: 101, QuoteNumber: "Q-101", Status: core.QuoteApproved})

	rd := openPendingStream(t, h, "?page=2&limit=1")
	first := nextPendingEvent(t, rd)
	require.Len(t, first.Items, 1)
	assert.Equal(t, 101, first.Items[0].ID)
	assert.Equal(t, 2, first.Page)

	// Another caller loads page 1; the stream keeps its own page.
	rec := do(t, h, http.MethodGet, "/api/quotes/pending?page=1&limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	for _, id := range []string{"100", "101"} {
		rec = do(t, h, http.MethodPost, "/api/quotes/"+id+"/convert", `{"warehouseId":3}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	next := nextPendingEvent(t, rd)
	assert.Empty(t, next.Items, "only the removal of quote 101 concerns this page")
	assert.Equal(t, 2, next.Page)
}
