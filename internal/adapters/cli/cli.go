// Package cli runs one-shot operator commands against the ApplicationService.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"order-desk/internal/app"
	"order-desk/internal/core"
	"order-desk/internal/realtime"
)

// ErrUsage marks a malformed command line.
var ErrUsage = errors.New("usage")

// ListenFunc follows the real-time quote channel until ctx ends.
type ListenFunc func(ctx context.Context, sess core.Session, handle realtime.Handler) error

// Runner executes commands for one session.
type Runner struct {
	Svc     app.ApplicationService
	Session core.Session
	Out     io.Writer
	Listen  ListenFunc // nil when no real-time channel is configured
}

// stepCommands maps the single-step command names to lifecycle actions.
var stepCommands = map[string]core.Action{
	"deposit": core.ActionMarkDepositReceived,
	"final":   core.ActionMarkFinalPaymentReceived,
	"pdi":     core.ActionMarkPreDeliveryComplete,
	"ship":    core.ActionMarkShipped,
	"deliver": core.ActionMarkDelivered,
}

// Run executes a one-shot command. args is os.Args[1:]; the first element is
// the subcommand name.
func (r *Runner) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printHelp(r.Out)
		return nil
	}

	cmd, rest := strings.ToLower(args[0]), args[1:]
	if action, ok := stepCommands[cmd]; ok {
		id, err := argID(rest, 0, cmd+" <orderID>")
		if err != nil {
			return err
		}
		result, err := r.Svc.ApplyOrderAction(ctx, r.Session, id, action)
		if err != nil {
			return err
		}
		printOrderDetail(r.Out, result)
		return nil
	}

	switch cmd {
	case "help", "-h", "--help":
		printHelp(r.Out)
		return nil

	case "whoami":
		result, err := r.Svc.Whoami(ctx, r.Session)
		if err != nil {
			return err
		}
		mode := "fallback identity"
		if result.Authenticated {
			mode = "bearer token"
		}
		fmt.Fprintf(r.Out, "user %d, role %s, region %d (%s)\n",
			result.Actor.ID, result.Actor.Role, result.Actor.RegionID, mode)
		return nil

	case "pending":
		req := app.ListQuotesRequest{}
		if len(rest) > 0 {
			req.Page, _ = strconv.Atoi(rest[0])
		}
		if len(rest) > 1 {
			req.Limit, _ = strconv.Atoi(rest[1])
		}
		result, err := r.Svc.ListPendingQuotes(ctx, r.Session, req)
		if err != nil {
			return err
		}
		printPendingQuotes(r.Out, result)
		return nil

	case "warehouses":
		result, err := r.Svc.ResolveWarehouses(ctx, r.Session)
		if err != nil {
			return err
		}
		printWarehouses(r.Out, result)
		return nil

	case "convert":
		quoteID, err := argID(rest, 0, "convert <quoteID> <warehouseID>")
		if err != nil {
			return err
		}
		warehouseID, err := argID(rest, 1, "convert <quoteID> <warehouseID>")
		if err != nil {
			return err
		}
		result, err := r.Svc.ConvertQuote(ctx, r.Session, app.ConvertQuoteRequest{
			QuoteID:     quoteID,
			WarehouseID: &warehouseID,
		})
		if err != nil {
			return err
		}
		printConversion(r.Out, result)
		return nil

	case "orders":
		req := app.ListOrdersRequest{Limit: 50}
		if len(rest) > 0 && rest[0] != "all" {
			req.Status = rest[0]
		}
		if len(rest) > 1 {
			req.Query = strings.Join(rest[1:], " ")
		}
		result, err := r.Svc.ListOrders(ctx, r.Session, req)
		if err != nil {
			return err
		}
		printOrders(r.Out, result)
		return nil

	case "order":
		id, err := argID(rest, 0, "order <orderID>")
		if err != nil {
			return err
		}
		result, err := r.Svc.GetOrder(ctx, r.Session, id)
		if err != nil {
			return err
		}
		printOrderDetail(r.Out, result)
		return nil

	case "advance":
		id, err := argID(rest, 0, "advance <orderID>")
		if err != nil {
			return err
		}
		result, err := r.Svc.AdvanceOrder(ctx, r.Session, id)
		if err != nil {
			return err
		}
		printOrderDetail(r.Out, result)
		return nil

	case "cancel":
		id, err := argID(rest, 0, "cancel <orderID> <reason...>")
		if err != nil {
			return err
		}
		result, err := r.Svc.CancelOrder(ctx, r.Session, app.CancelOrderRequest{
			OrderID: id,
			Reason:  strings.Join(rest[1:], " "),
		})
		if err != nil {
			return err
		}
		printOrderDetail(r.Out, result)
		return nil

	case "status":
		id, err := argID(rest, 0, "status <orderID> <status> [note...]")
		if err != nil {
			return err
		}
		if len(rest) < 2 {
			return fmt.Errorf("%w: status <orderID> <status> [note...]", ErrUsage)
		}
		result, err := r.Svc.OverrideOrderStatus(ctx, r.Session, app.StatusOverrideRequest{
			OrderID: id,
			Status:  rest[1],
			Note:    strings.Join(rest[2:], " "),
		})
		if err != nil {
			return err
		}
		printOrderDetail(r.Out, result)
		return nil

	case "export":
		if len(rest) < 1 {
			return fmt.Errorf("%w: export <file.xlsx> [status]", ErrUsage)
		}
		req := app.ExportOrdersRequest{}
		if len(rest) > 1 {
			req.Status = rest[1]
		}
		result, err := r.Svc.ExportOrders(ctx, r.Session, req)
		if err != nil {
			return err
		}
		defer result.File.Close()
		if err := result.File.SaveAs(rest[0]); err != nil {
			return fmt.Errorf("failed to save %s: %w", rest[0], err)
		}
		fmt.Fprintf(r.Out, "Exported %d orders to %s\n", result.Count, rest[0])
		return nil

	case "watch":
		return r.watch(ctx)

	default:
		return fmt.Errorf("%w: unknown command %q (try \"help\")", ErrUsage, args[0])
	}
}

// watch follows the quote channel, printing each conversion and the
// remaining pending count, until ctx ends.
func (r *Runner) watch(ctx context.Context) error {
	if r.Listen == nil {
		return errors.New("no real-time channel configured (set WS_URL)")
	}
	if _, err := r.Svc.ListPendingQuotes(ctx, r.Session, app.ListQuotesRequest{}); err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "Watching for conversions; %d quotes pending. Ctrl-C to stop.\n", r.Svc.PendingSnapshot().Total)

	err := r.Listen(ctx, r.Session, func(ctx context.Context, ev realtime.QuoteConverted) error {
		if err := r.Svc.HandleQuoteConverted(ctx, ev.QuoteID, ev.OrderID); err != nil {
			return err
		}
		fmt.Fprintf(r.Out, "quote %d converted (order %d), %d pending\n",
			ev.QuoteID, ev.OrderID, r.Svc.PendingSnapshot().Total)
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// argID parses args[i] as a positive id.
func argID(args []string, i int, usage string) (int, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("%w: %s", ErrUsage, usage)
	}
	id, err := strconv.Atoi(args[i])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s (%q is not an id)", ErrUsage, usage, args[i])
	}
	return id, nil
}
