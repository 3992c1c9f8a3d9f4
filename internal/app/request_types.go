package app

// ListQuotesRequest selects a page of pending quotes.
type ListQuotesRequest struct {
	Page  int
	Limit int
	Query string // matched against quote number, customer and sales rep
}

// ConvertQuoteRequest is the input for converting a quote into an order.
type ConvertQuoteRequest struct {
	QuoteID     int
	WarehouseID *int // nil means no selection was made
}

// ListOrdersRequest filters the order list. Status is a wire value; empty
// means every status.
type ListOrdersRequest struct {
	Status string
	Query  string
	Page   int
	Limit  int
}

// CancelOrderRequest is the input for cancelling an order.
type CancelOrderRequest struct {
	OrderID int
	Reason  string
}

// StatusOverrideRequest is the input for the generic status endpoint.
type StatusOverrideRequest struct {
	OrderID int
	Status  string
	Note    string
}

// ExportOrdersRequest filters the orders written to a workbook.
type ExportOrdersRequest struct {
	Status string
	Query  string
}
