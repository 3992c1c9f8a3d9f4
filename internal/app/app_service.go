package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"order-desk/internal/api"
	"order-desk/internal/auth"
	"order-desk/internal/core"
	"order-desk/internal/export"
)

const (
	defaultPage  = 1
	defaultLimit = 10

	// listFetchLimit is how many orders one list view fetches before the
	// free-text filter and pagination are applied locally.
	listFetchLimit = 100

	// dispatchTimeout bounds the pending-list update after a conversion.
	dispatchTimeout = 5 * time.Second
)

type appService struct {
	client  *api.Client
	pending *core.PendingQuotes
	logger  *zap.Logger
	now     func() time.Time
}

// NewAppService constructs an appService that satisfies ApplicationService.
// The caller runs pending.Run for as long as the service is in use.
func NewAppService(client *api.Client, pending *core.PendingQuotes, logger *zap.Logger) ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &appService{
		client:  client,
		pending: pending,
		logger:  logger,
		now:     time.Now,
	}
}

// Whoami returns the actor the session resolves to.
func (s *appService) Whoami(ctx context.Context, sess core.Session) (*ActorResult, error) {
	actor, err := auth.ActorFromSession(sess)
	if err != nil {
		return nil, err
	}
	return &ActorResult{Actor: actor, Authenticated: sess.Authenticated()}, nil
}

// ListPendingQuotes loads one page of convertible quotes. The page also
// replaces the shared collection, but the response is built from the caller's
// own page with converted ids applied, never read back from shared state.
func (s *appService) ListPendingQuotes(ctx context.Context, sess core.Session, req ListQuotesRequest) (*PendingQuotesResult, error) {
	page, limit := pageOrDefault(req.Page, req.Limit)

	fetched, err := s.client.ListApprovedUnconverted(ctx, sess, page, limit)
	if err != nil {
		return nil, err
	}
	if err := s.pending.Dispatch(ctx, core.QuotesLoaded{Page: *fetched}); err != nil {
		return nil, fmt.Errorf("failed to queue quote page: %w", err)
	}
	// Conversions queued before this call must be applied before filtering.
	if err := s.pending.Sync(ctx); err != nil {
		return nil, fmt.Errorf("failed to apply quote page: %w", err)
	}

	own := s.pending.Filter(*fetched)
	quotes := core.FilterQuotes(own.Items, core.ListFilter{Query: req.Query})
	total := own.Total
	if req.Query != "" {
		total = len(quotes)
	}
	return &PendingQuotesResult{
		Quotes:  quotes,
		Total:   total,
		Page:    page,
		Limit:   limit,
		Version: s.pending.Snapshot().Version,
	}, nil
}

// PrunePending drops quotes converted since prev was produced.
func (s *appService) PrunePending(prev *PendingQuotesResult) *PendingQuotesResult {
	pruned := s.pending.Filter(core.QuotePage{Items: prev.Quotes, Total: prev.Total, Page: prev.Page, Limit: prev.Limit})
	return &PendingQuotesResult{
		Quotes:  pruned.Items,
		Total:   pruned.Total,
		Page:    prev.Page,
		Limit:   prev.Limit,
		Version: s.pending.Snapshot().Version,
	}
}

// PendingSnapshot returns the pending-quote collection as last applied.
func (s *appService) PendingSnapshot() core.PendingSnapshot {
	return s.pending.Snapshot()
}

func (s *appService) PendingChanged() <-chan struct{} {
	return s.pending.Changed()
}

// ResolveWarehouses returns the warehouses the session's actor may ship from.
func (s *appService) ResolveWarehouses(ctx context.Context, sess core.Session) (*WarehouseListResult, error) {
	actor, err := auth.ActorFromSession(sess)
	if err != nil {
		return nil, err
	}

	var regions []core.Region
	if actor.SeesAllRegions() {
		regions, err = s.client.ListRegions(ctx, sess)
		if err != nil {
			return nil, err
		}
	} else {
		region, err := s.client.GetRegion(ctx, sess, actor.RegionID)
		switch {
		case errors.Is(err, core.ErrNotFound):
			// No region on record: nothing to offer.
		case err != nil:
			return nil, err
		default:
			regions = []core.Region{*region}
		}
	}

	return &WarehouseListResult{
		Actor:      actor,
		Warehouses: core.AvailableWarehouses(actor, regions),
	}, nil
}

// ConvertQuote converts an approved quote into a sales order.
func (s *appService) ConvertQuote(ctx context.Context, sess core.Session, req ConvertQuoteRequest) (*ConversionResult, error) {
	if req.WarehouseID == nil {
		return nil, &core.ValidationError{Field: "warehouse_id", Message: "select a warehouse before converting"}
	}

	resolved, err := s.ResolveWarehouses(ctx, sess)
	if err != nil {
		return nil, err
	}
	if len(resolved.Warehouses) == 0 {
		return nil, core.ErrNoWarehouseAvailable
	}
	selected, ok := core.FindWarehouse(resolved.Warehouses, *req.WarehouseID)
	if !ok {
		return nil, &core.ValidationError{
			Field:   "warehouse_id",
			Message: fmt.Sprintf("warehouse %d is not available to you", *req.WarehouseID),
		}
	}

	order, err := s.client.ConvertToOrder(ctx, sess, req.QuoteID, core.ConvertRequest{
		WarehouseID: req.WarehouseID,
		InitiatedBy: resolved.Actor.ID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quote converted",
		zap.Int("quote_id", req.QuoteID),
		zap.Int("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int("warehouse_id", selected.ID),
		zap.Int("initiated_by", resolved.Actor.ID),
	)
	if order.HasInventoryWarning() {
		s.logger.Warn("conversion reported inventory warnings",
			zap.Int("order_id", order.ID),
			zap.Strings("warnings", order.InventoryWarnings),
		)
	}

	// The order exists now; the caller's cancellation must not lose it.
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dispatchTimeout)
	defer cancel()
	ev := core.QuoteConverted{QuoteID: req.QuoteID, OrderID: order.ID, Source: core.SourceLocal}
	if err := s.pending.Dispatch(dctx, ev); err != nil {
		s.logger.Warn("converted quote not removed from pending list",
			zap.Int("quote_id", req.QuoteID),
			zap.Int("order_id", order.ID),
			zap.Error(err),
		)
	}

	return &ConversionResult{QuoteID: req.QuoteID, Order: order, Warehouse: selected}, nil
}

// ListOrders returns a filtered, paginated order list.
func (s *appService) ListOrders(ctx context.Context, sess core.Session, req ListOrdersRequest) (*OrderListResult, error) {
	orders, status, err := s.fetchOrders(ctx, sess, req.Status)
	if err != nil {
		return nil, err
	}

	filtered := core.FilterOrders(orders, core.ListFilter{Query: req.Query})
	page, limit := pageOrDefault(req.Page, req.Limit)
	items, total := core.Paginate(filtered, page, limit)
	return &OrderListResult{
		Orders: items,
		Total:  total,
		Page:   page,
		Limit:  limit,
		Status: status,
	}, nil
}

// fetchOrders loads one server page, through the status endpoint when a
// status is given.
func (s *appService) fetchOrders(ctx context.Context, sess core.Session, rawStatus string) ([]core.SalesOrder, core.OrderStatus, error) {
	if rawStatus == "" {
		p, err := s.client.ListOrders(ctx, sess, 1, listFetchLimit)
		if err != nil {
			return nil, "", err
		}
		return p.Items, "", nil
	}

	status, err := core.ParseStatus(rawStatus)
	if err != nil {
		return nil, "", err
	}
	p, err := s.client.ListOrdersByStatus(ctx, sess, status, 1, listFetchLimit)
	if err != nil {
		return nil, "", err
	}
	return p.Items, status, nil
}

// GetOrder returns an order with its available actions.
func (s *appService) GetOrder(ctx context.Context, sess core.Session, orderID int) (*OrderResult, error) {
	order, err := s.client.GetOrder(ctx, sess, orderID)
	if err != nil {
		return nil, err
	}
	return orderResult(order), nil
}

// ApplyOrderAction applies a forward lifecycle action.
func (s *appService) ApplyOrderAction(ctx context.Context, sess core.Session, orderID int, action core.Action) (*OrderResult, error) {
	if action == core.ActionCancel {
		return nil, &core.ValidationError{Field: "action", Message: "cancelling requires a reason"}
	}
	order, err := s.client.ApplyAction(ctx, sess, orderID, action)
	if err != nil {
		return nil, s.withCurrent(ctx, sess, err)
	}
	s.logger.Info("order advanced",
		zap.Int("order_id", order.ID),
		zap.String("action", string(action)),
		zap.String("status", string(order.Status)),
	)
	return orderResult(order), nil
}

// AdvanceOrder applies the next forward action for the order's current status.
func (s *appService) AdvanceOrder(ctx context.Context, sess core.Session, orderID int) (*OrderResult, error) {
	order, err := s.client.GetOrder(ctx, sess, orderID)
	if err != nil {
		return nil, err
	}
	action, ok := core.NextAction(order.Status)
	if !ok {
		return nil, &core.ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("order %s is %s and has no next step", order.OrderNumber, order.Status.Label()),
		}
	}
	return s.ApplyOrderAction(ctx, sess, orderID, action)
}

// CancelOrder cancels an order with a reason.
func (s *appService) CancelOrder(ctx context.Context, sess core.Session, req CancelOrderRequest) (*OrderResult, error) {
	order, err := s.client.Cancel(ctx, sess, req.OrderID, req.Reason)
	if err != nil {
		return nil, s.withCurrent(ctx, sess, err)
	}
	s.logger.Info("order cancelled", zap.Int("order_id", order.ID), zap.String("reason", order.CancellationReason))
	return orderResult(order), nil
}

// OverrideOrderStatus sets an order's status through the generic endpoint.
func (s *appService) OverrideOrderStatus(ctx context.Context, sess core.Session, req StatusOverrideRequest) (*OrderResult, error) {
	status, err := core.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	order, err := s.client.UpdateStatus(ctx, sess, req.OrderID, status, req.Note)
	if err != nil {
		return nil, s.withCurrent(ctx, sess, err)
	}
	s.logger.Info("order status overridden", zap.Int("order_id", order.ID), zap.String("status", string(order.Status)))
	return orderResult(order), nil
}

// ExportOrders renders the filtered order list as a workbook.
func (s *appService) ExportOrders(ctx context.Context, sess core.Session, req ExportOrdersRequest) (*ExportResult, error) {
	orders, status, err := s.fetchOrders(ctx, sess, req.Status)
	if err != nil {
		return nil, err
	}
	filtered := core.FilterOrders(orders, core.ListFilter{Query: req.Query})

	f, err := export.OrdersWorkbook(filtered)
	if err != nil {
		return nil, fmt.Errorf("failed to build order workbook: %w", err)
	}
	return &ExportResult{
		File:     f,
		Filename: export.Filename(status, s.now()),
		Count:    len(filtered),
	}, nil
}

// HandleQuoteConverted applies a pushed conversion to the pending collection
// and returns once it is applied.
func (s *appService) HandleQuoteConverted(ctx context.Context, quoteID, orderID int) error {
	ev := core.QuoteConverted{QuoteID: quoteID, OrderID: orderID, Source: core.SourcePush}
	if err := s.pending.Dispatch(ctx, ev); err != nil {
		return fmt.Errorf("failed to queue conversion of quote %d: %w", quoteID, err)
	}
	if err := s.pending.Sync(ctx); err != nil {
		return fmt.Errorf("failed to apply conversion of quote %d: %w", quoteID, err)
	}
	return nil
}

// withCurrent attaches the server's copy of the order to a TransitionError.
// A failed re-fetch is logged and the rejection is returned unchanged.
func (s *appService) withCurrent(ctx context.Context, sess core.Session, err error) error {
	var transErr *core.TransitionError
	if !errors.As(err, &transErr) {
		return err
	}
	current, fetchErr := s.client.GetOrder(ctx, sess, transErr.OrderID)
	if fetchErr != nil {
		s.logger.Warn("failed to re-fetch order after rejected transition",
			zap.Int("order_id", transErr.OrderID),
			zap.Error(fetchErr),
		)
		return err
	}
	transErr.Current = current
	return err
}

func orderResult(o *core.SalesOrder) *OrderResult {
	return &OrderResult{Order: o, Actions: core.AvailableActions(o.Status)}
}

func pageOrDefault(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}
