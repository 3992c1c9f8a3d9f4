package api

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"order-desk/internal/core"
)

// ListApprovedUnconverted returns one page of approved quotes still open for
// conversion. The listing endpoint is trusted to return approved quotes only,
// not to exclude converted ones, so those are dropped here and the total is
// reduced accordingly.
func (c *Client) ListApprovedUnconverted(ctx context.Context, sess core.Session, page, pageSize int) (*core.QuotePage, error) {
	var p core.QuotePage
	if err := c.doRequest(ctx, sess, http.MethodGet, "/quotes/approval/status/approved", pageQuery(page, pageSize), nil, &p); err != nil {
		return nil, fmt.Errorf("failed to list approved quotes: %w", err)
	}

	kept := make([]core.Quote, 0, len(p.Items))
	for _, q := range p.Items {
		if !q.Convertible() {
			continue
		}
		kept = append(kept, q)
	}
	if dropped := len(p.Items) - len(kept); dropped > 0 {
		c.logger.Debug("dropped converted quotes from approved listing", zap.Int("count", dropped))
		p.Total = max(p.Total-dropped, len(kept))
	}
	p.Items = kept
	return &p, nil
}

// GetQuote fetches a single quote.
func (c *Client) GetQuote(ctx context.Context, sess core.Session, quoteID int) (*core.Quote, error) {
	var q core.Quote
	if err := c.doRequest(ctx, sess, http.MethodGet, fmt.Sprintf("/quotes/%d", quoteID), nil, nil, &q); err != nil {
		return nil, fmt.Errorf("failed to fetch quote %d: %w", quoteID, err)
	}
	return &q, nil
}

// ConvertToOrder asks the backend to turn an approved quote into a sales order.
// A missing warehouse or initiator fails with *core.ValidationError before any
// request is sent. Any non-2xx response becomes *core.ConversionError.
func (c *Client) ConvertToOrder(ctx context.Context, sess core.Session, quoteID int, req core.ConvertRequest) (*core.SalesOrder, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var order core.SalesOrder
	err := c.doRequest(ctx, sess, http.MethodPost, fmt.Sprintf("/quotes/%d/convert-to-order", quoteID), nil, req, &order)
	if err != nil {
		if isRejection(err) {
			return nil, &core.ConversionError{QuoteID: quoteID, Cause: err}
		}
		return nil, fmt.Errorf("failed to convert quote %d: %w", quoteID, err)
	}
	return &order, nil
}
