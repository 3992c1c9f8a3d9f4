package app

import (
	"context"

	"order-desk/internal/core"
)

// ApplicationService is the single interface the CLI and web adapters call.
// It decouples presentation from the backend accessors. Implementations must
// contain no fmt.Println, no ANSI codes, and no display logic of any kind.
//
// Every call takes the caller's core.Session explicitly; the service holds no
// ambient credentials.
type ApplicationService interface {
	// Whoami returns the actor the session resolves to.
	Whoami(ctx context.Context, sess core.Session) (*ActorResult, error)

	// ListPendingQuotes fetches a page of approved, unconverted quotes with the
	// caller's session and returns that page minus every quote known to be
	// converted, narrowed by the request's free-text query. Concurrent callers
	// each get their own page.
	ListPendingQuotes(ctx context.Context, sess core.Session, req ListQuotesRequest) (*PendingQuotesResult, error)

	// PrunePending drops from a previous ListPendingQuotes result the quotes
	// converted since it was produced.
	PrunePending(prev *PendingQuotesResult) *PendingQuotesResult

	// PendingSnapshot returns the pending-quote collection as last applied.
	PendingSnapshot() core.PendingSnapshot

	// PendingChanged returns a channel closed by the next change to the
	// pending-quote collection.
	PendingChanged() <-chan struct{}

	// ResolveWarehouses returns the warehouses the session's actor may ship from.
	// Admins and financial leaders get every region's warehouses tagged with
	// the region name; other actors get their own region's.
	ResolveWarehouses(ctx context.Context, sess core.Session) (*WarehouseListResult, error)

	// ConvertQuote turns an approved quote into a sales order shipped from the
	// selected warehouse. The selection must be one ResolveWarehouses offers.
	// On success the quote leaves the pending collection.
	ConvertQuote(ctx context.Context, sess core.Session, req ConvertQuoteRequest) (*ConversionResult, error)

	// ListOrders returns orders, optionally in one status, narrowed by a
	// free-text query and paginated.
	ListOrders(ctx context.Context, sess core.Session, req ListOrdersRequest) (*OrderListResult, error)

	// GetOrder returns an order with the actions offered for its status.
	GetOrder(ctx context.Context, sess core.Session, orderID int) (*OrderResult, error)

	// ApplyOrderAction applies a forward lifecycle action. On rejection the
	// returned *core.TransitionError carries the re-fetched order.
	ApplyOrderAction(ctx context.Context, sess core.Session, orderID int, action core.Action) (*OrderResult, error)

	// AdvanceOrder applies the single forward action legal from the order's
	// current server-side status.
	AdvanceOrder(ctx context.Context, sess core.Session, orderID int) (*OrderResult, error)

	// CancelOrder cancels an order. A reason is required.
	CancelOrder(ctx context.Context, sess core.Session, req CancelOrderRequest) (*OrderResult, error)

	// OverrideOrderStatus sets an order's status through the generic status endpoint.
	OverrideOrderStatus(ctx context.Context, sess core.Session, req StatusOverrideRequest) (*OrderResult, error)

	// ExportOrders renders the filtered order list as an XLSX workbook.
	ExportOrders(ctx context.Context, sess core.Session, req ExportOrdersRequest) (*ExportResult, error)

	// HandleQuoteConverted applies a conversion announced by the real-time
	// channel and returns once the collection reflects it.
	HandleQuoteConverted(ctx context.Context, quoteID, orderID int) error
}
