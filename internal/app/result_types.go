package app

import (
	"github.com/xuri/excelize/v2"

	"order-desk/internal/core"
)

// ActorResult is returned by Whoami.
type ActorResult struct {
	Actor         core.Actor
	Authenticated bool
}

// PendingQuotesResult is returned by ListPendingQuotes.
type PendingQuotesResult struct {
	Quotes  []core.Quote
	Total   int
	Page    int
	Limit   int
	Version uint64
}

// WarehouseListResult is returned by ResolveWarehouses.
type WarehouseListResult struct {
	Actor      core.Actor
	Warehouses []core.WarehouseOption
}

// ConversionResult is returned by ConvertQuote.
type ConversionResult struct {
	QuoteID   int
	Order     *core.SalesOrder
	Warehouse core.WarehouseOption
}

// OrderResult is returned by order lifecycle operations.
type OrderResult struct {
	Order   *core.SalesOrder
	Actions []core.Action
}

// OrderListResult is returned by ListOrders.
type OrderListResult struct {
	Orders []core.SalesOrder
	Total  int // matches after filtering
	Page   int
	Limit  int
	Status core.OrderStatus
}

// ExportResult is returned by ExportOrders. The caller closes File.
type ExportResult struct {
	File     *excelize.File
	Filename string
	Count    int
}
