package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"order-desk/internal/core"
)

// ActionStatusOverride labels rejections of the generic status endpoint.
const ActionStatusOverride core.Action = "status-override"

// actionPaths maps each forward lifecycle action to its PUT endpoint suffix.
var actionPaths = map[core.Action]string{
	core.ActionMarkDepositReceived:      "deposit-payment",
	core.ActionMarkFinalPaymentReceived: "final-payment",
	core.ActionMarkPreDeliveryComplete:  "pd-complete",
	core.ActionMarkShipped:              "ship",
	core.ActionMarkDelivered:            "deliver",
}

// ListOrders returns one page of all orders.
func (c *Client) ListOrders(ctx context.Context, sess core.Session, page, pageSize int) (*core.OrderPage, error) {
	var p core.OrderPage
	if err := c.doRequest(ctx, sess, http.MethodGet, "/orders", pageQuery(page, pageSize), nil, &p); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return &p, nil
}

// ListOrdersByStatus returns one page of orders in status.
func (c *Client) ListOrdersByStatus(ctx context.Context, sess core.Session, status core.OrderStatus, page, pageSize int) (*core.OrderPage, error) {
	var p core.OrderPage
	if err := c.doRequest(ctx, sess, http.MethodGet, "/orders/status/"+string(status), pageQuery(page, pageSize), nil, &p); err != nil {
		return nil, fmt.Errorf("failed to list %s orders: %w", status, err)
	}
	return &p, nil
}

// GetOrder fetches the authoritative copy of an order.
func (c *Client) GetOrder(ctx context.Context, sess core.Session, orderID int) (*core.SalesOrder, error) {
	var o core.SalesOrder
	if err := c.doRequest(ctx, sess, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), nil, nil, &o); err != nil {
		return nil, fmt.Errorf("failed to fetch order %d: %w", orderID, err)
	}
	return &o, nil
}

// ApplyAction invokes the endpoint of a forward lifecycle action. The backend
// alone decides legality; a rejection becomes *core.TransitionError.
// Cancel needs a reason and goes through Cancel instead.
func (c *Client) ApplyAction(ctx context.Context, sess core.Session, orderID int, action core.Action) (*core.SalesOrder, error) {
	suffix, ok := actionPaths[action]
	if !ok {
		return nil, &core.ValidationError{Field: "action", Message: fmt.Sprintf("%q is not a forward order action", action)}
	}
	return c.transition(ctx, sess, orderID, action, suffix, nil)
}

func (c *Client) MarkDepositReceived(ctx context.Context, sess core.Session, orderID int) (*core.SalesOrder, error) {
	return c.ApplyAction(ctx, sess, orderID, core.ActionMarkDepositReceived)
}

func (c *Client) MarkFinalPaymentReceived(ctx context.Context, sess core.Session, orderID int) (*core.SalesOrder, error) {
	return c.ApplyAction(ctx, sess, orderID, core.ActionMarkFinalPaymentReceived)
}

func (c *Client) MarkPreDeliveryComplete(ctx context.Context, sess core.Session, orderID int) (*core.SalesOrder, error) {
	return c.ApplyAction(ctx, sess, orderID, core.ActionMarkPreDeliveryComplete)
}

func (c *Client) MarkShipped(ctx context.Context, sess core.Session, orderID int) (*core.SalesOrder, error) {
	return c.ApplyAction(ctx, sess, orderID, core.ActionMarkShipped)
}

func (c *Client) MarkDelivered(ctx context.Context, sess core.Session, orderID int) (*core.SalesOrder, error) {
	return c.ApplyAction(ctx, sess, orderID, core.ActionMarkDelivered)
}

// Cancel moves an order to cancelled. A blank reason fails with
// *core.ValidationError and no request is sent.
func (c *Client) Cancel(ctx context.Context, sess core.Session, orderID int, reason string) (*core.SalesOrder, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &core.ValidationError{Field: "reason", Message: "a cancellation reason is required"}
	}
	body := struct {
		Reason string `json:"reason"`
	}{Reason: reason}
	return c.transition(ctx, sess, orderID, core.ActionCancel, "cancel", body)
}

// UpdateStatus calls the generic status override endpoint.
func (c *Client) UpdateStatus(ctx context.Context, sess core.Session, orderID int, status core.OrderStatus, note string) (*core.SalesOrder, error) {
	body := struct {
		Status core.OrderStatus `json:"status"`
		Note   string           `json:"note"`
	}{Status: status, Note: note}
	return c.transition(ctx, sess, orderID, ActionStatusOverride, "status", body)
}

func (c *Client) transition(ctx context.Context, sess core.Session, orderID int, action core.Action, suffix string, body any) (*core.SalesOrder, error) {
	var o core.SalesOrder
	err := c.doRequest(ctx, sess, http.MethodPut, fmt.Sprintf("/orders/%d/%s", orderID, suffix), nil, body, &o)
	if err != nil {
		if isRejection(err) {
			return nil, &core.TransitionError{OrderID: orderID, Action: action, Cause: err}
		}
		return nil, fmt.Errorf("order %d %s failed: %w", orderID, action, err)
	}
	return &o, nil
}
