package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-desk/internal/api"
	"order-desk/internal/core"
	"order-desk/internal/testutil"
)

var fallbackSession = core.Session{FallbackUserID: "1", FallbackRegionID: "1"}

func newClient(t *testing.T) (*api.Client, *testutil.Backend) {
	t.Helper()
	b := testutil.NewBackend(t)
	b.SetRegions(
		core.Region{ID: 1, Name: "Region A", Warehouses: []core.Warehouse{{ID: 1, Name: "W-1", RegionID: 1}, {ID: 3, Name: "W-3", RegionID: 1}}},
	)
	return api.NewClient(b.URL(), time.Second, nil), b
}

func intPtr(v int) *int { return &v }

func TestListApprovedUnconverted_FiltersConverted(t *testing.T) {
	c, b := newClient(t)
	b.AddQuote(core.Quote{ID: 100, QuoteNumber: "Q-100", Status: core.QuoteApproved})
	b.AddQuote(core.Quote{ID: 101, QuoteNumber: "Q-101", Status: core.QuoteApproved, ConvertedToOrder: true})
	b.AddQuote(core.Quote{ID: 102, QuoteNumber: "Q-102", Status: core.QuoteApproved})

	page, err := c.ListApprovedUnconverted(context.Background(), fallbackSession, 1, 10)
	require.NoError(t, err)

	require.Len(t, page.Items, 2)
	for _, q := range page.Items {
		assert.False(t, q.ConvertedToOrder, "quote %s is converted", q.QuoteNumber)
	}
	assert.Equal(t, 2, page.Total)

	reqs := b.Requests(http.MethodGet, "/quotes/approval/status/approved")
	require.Len(t, reqs, 1)
	assert.Equal(t, "1", reqs[0].Header.Get("X-User-ID"))
	assert.Equal(t, "1", reqs[0].Header.Get("X-Region-ID"))
	assert.Empty(t, reqs[0].Header.Get("Authorization"))
	assert.NotEmpty(t, reqs[0].Header.Get("X-Request-ID"))
}

func TestBearerTokenReplacesFallbackHeaders(t *testing.T) {
	c, b := newClient(t)
	sess := fallbackSession.WithToken("abc.def.ghi")

	_, err := c.ListOrders(context.Background(), sess, 1, 10)
	require.NoError(t, err)

	reqs := b.Requests(http.MethodGet, "/orders")
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer abc.def.ghi", reqs[0].Header.Get("Authorization"))
	assert.Empty(t, reqs[0].Header.Get("X-User-ID"))
}

func TestConvertToOrder_RequiresWarehouse(t *testing.T) {
	c, b := newClient(t)
	b.AddQuote(core.Quote{ID: 100, QuoteNumber: "Q-100", Status: core.QuoteApproved})

	_, err := c.ConvertToOrder(context.Background(), fallbackSession, 100, core.ConvertRequest{WarehouseID: nil, InitiatedBy: 7})

	var valErr *core.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "warehouse_id", valErr.Field)
	assert.Empty(t, b.Requests("", "/quotes/100/convert-to-order"), "no request may be sent")
}

func TestConvertToOrder_Success(t *testing.T) {
	c, b := newClient(t)
	b.AddQuote(core.Quote{ID: 100, QuoteNumber: "Q-100", Status: core.QuoteApproved, Total: decimal.NewFromInt(25000)})

	order, err := c.ConvertToOrder(context.Background(), fallbackSession, 100, core.ConvertRequest{WarehouseID: intPtr(3), InitiatedBy: 7})
	require.NoError(t, err)
	assert.Equal(t, 500, order.ID)
	assert.Equal(t, "SO-500", order.OrderNumber)
	assert.Equal(t, core.StatusOrdered, order.Status)
	require.NotNil(t, order.QuoteID)
	assert.Equal(t, 100, *order.QuoteID)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(25000)))

	reqs := b.Requests(http.MethodPost, "/quotes/100/convert-to-order")
	require.Len(t, reqs, 1)
	assert.EqualValues(t, 3, reqs[0].Body["warehouseId"])
	assert.EqualValues(t, 7, reqs[0].Body["initiatedBy"])
}

func TestConvertToOrder_SecondAttemptIsConversionError(t *testing.T) {
	c, b := newClient(t)
	b.AddQuote(core.Quote{ID: 100, QuoteNumber: "Q-100", Status: core.QuoteApproved})
	req := core.ConvertRequest{WarehouseID: intPtr(3), InitiatedBy: 7}

	_, err := c.ConvertToOrder(context.Background(), fallbackSession, 100, req)
	require.NoError(t, err)

	_, err = c.ConvertToOrder(context.Background(), fallbackSession, 100, req)
	var convErr *core.ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, 100, convErr.QuoteID)

	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "ALREADY_CONVERTED", apiErr.Code)
}

func TestConvertToOrder_InvalidWarehouseIsConversionError(t *testing.T) {
	c, b := newClient(t)
	b.AddQuote(core.Quote{ID: 100, QuoteNumber: "Q-100", Status: core.QuoteApproved})

	_, err := c.ConvertToOrder(context.Background(), fallbackSession, 100, core.ConvertRequest{WarehouseID: intPtr(99), InitiatedBy: 7})
	var convErr *core.ConversionError
	assert.ErrorAs(t, err, &convErr)
}

func TestUnauthorizedIsTypedAndNotRetried(t *testing.T) {
	c, b := newClient(t)
	b.RequireToken = true

	_, err := c.ListOrders(context.Background(), fallbackSession, 1, 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnauthorized))
	assert.Len(t, b.Requests("", "/orders"), 1)
}

func TestNetworkError(t *testing.T) {
	c := api.NewClient("http://127.0.0.1:1", 200*time.Millisecond, nil)

	_, err := c.GetOrder(context.Background(), fallbackSession, 1)
	var netErr *core.NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestNotFound(t *testing.T) {
	c, _ := newClient(t)

	_, err := c.GetOrder(context.Background(), fallbackSession, 404)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRegions(t *testing.T) {
	c, _ := newClient(t)

	regions, err := c.ListRegions(context.Background(), fallbackSession)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Len(t, regions[0].Warehouses, 2)

	region, err := c.GetRegion(context.Background(), fallbackSession, 1)
	require.NoError(t, err)
	assert.Equal(t, "Region A", region.Name)
}
