package cli

import (
	"fmt"
	"io"
	"strings"

	"order-desk/internal/app"
	"order-desk/internal/core"
)

func partyName(p *core.PartyRef) string {
	if p == nil {
		return "-"
	}
	return p.Name
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "~"
}

func printPendingQuotes(w io.Writer, result *app.PendingQuotesResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 76))
	fmt.Fprintf(w, "  APPROVED QUOTES AWAITING CONVERSION  (page %d, %d total)\n", result.Page, result.Total)
	fmt.Fprintln(w, strings.Repeat("=", 76))
	if len(result.Quotes) == 0 {
		fmt.Fprintln(w, "  No quotes awaiting conversion.")
		fmt.Fprintln(w, strings.Repeat("=", 76))
		return
	}
	fmt.Fprintf(w, "  %-6s %-14s %-22s %-16s %12s\n", "ID", "QUOTE NO", "CUSTOMER", "SALES REP", "TOTAL")
	fmt.Fprintln(w, strings.Repeat("-", 76))
	for _, q := range result.Quotes {
		fmt.Fprintf(w, "  %-6d %-14s %-22s %-16s %12s\n",
			q.ID, q.QuoteNumber, truncate(partyName(q.Customer), 22), truncate(partyName(q.SalesRep), 16),
			q.Total.StringFixed(2))
	}
	fmt.Fprintln(w, strings.Repeat("=", 76))
}

func printWarehouses(w io.Writer, result *app.WarehouseListResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "  WAREHOUSES: user %d (%s)\n", result.Actor.ID, result.Actor.Role)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	if len(result.Warehouses) == 0 {
		fmt.Fprintln(w, "  No warehouse available. Conversion is not possible.")
		fmt.Fprintln(w, strings.Repeat("=", 60))
		return
	}
	fmt.Fprintf(w, "  %-6s %-24s %s\n", "ID", "NAME", "REGION")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, wh := range result.Warehouses {
		region := wh.RegionName
		if region == "" {
			region = "-"
		}
		fmt.Fprintf(w, "  %-6d %-24s %s\n", wh.ID, truncate(wh.Name, 24), region)
	}
	fmt.Fprintln(w, strings.Repeat("=", 60))
}

func printConversion(w io.Writer, result *app.ConversionResult) {
	fmt.Fprintf(w, "Quote %d converted to order %s (id %d), shipping from %s.\n",
		result.QuoteID, result.Order.OrderNumber, result.Order.ID, result.Warehouse.Name)
	for _, warning := range result.Order.InventoryWarnings {
		fmt.Fprintf(w, "  inventory warning: %s\n", warning)
	}
}

func printOrders(w io.Writer, result *app.OrderListResult) {
	title := "SALES ORDERS"
	if result.Status != "" {
		title += ": " + result.Status.Label()
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 84))
	fmt.Fprintf(w, "  %s  (page %d, %d matching)\n", title, result.Page, result.Total)
	fmt.Fprintln(w, strings.Repeat("=", 84))
	if len(result.Orders) == 0 {
		fmt.Fprintln(w, "  No orders found.")
		fmt.Fprintln(w, strings.Repeat("=", 84))
		return
	}
	fmt.Fprintf(w, "  %-6s %-14s %-22s %-24s %12s\n", "ID", "ORDER NO", "CUSTOMER", "STATUS", "TOTAL")
	fmt.Fprintln(w, strings.Repeat("-", 84))
	for _, o := range result.Orders {
		fmt.Fprintf(w, "  %-6d %-14s %-22s %-24s %12s\n",
			o.ID, o.OrderNumber, truncate(partyName(o.Customer), 22), o.Status.Label(), o.TotalAmount.StringFixed(2))
	}
	fmt.Fprintln(w, strings.Repeat("=", 84))
}

func printOrderDetail(w io.Writer, result *app.OrderResult) {
	o := result.Order
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "  Order:       %s (id %d)\n", o.OrderNumber, o.ID)
	fmt.Fprintf(w, "  Customer:    %s\n", partyName(o.Customer))
	fmt.Fprintf(w, "  Sales rep:   %s\n", partyName(o.SalesRep))
	fmt.Fprintf(w, "  Status:      %s\n", o.Status.Label())
	if o.CancellationReason != "" {
		fmt.Fprintf(w, "  Reason:      %s\n", o.CancellationReason)
	}
	fmt.Fprintf(w, "  Total:       %s %s\n", o.TotalAmount.StringFixed(2), o.Currency)
	fmt.Fprintf(w, "  Deposit:     %s %s\n", o.DepositAmount.StringFixed(2), o.Currency)
	fmt.Fprintf(w, "  Outstanding: %s %s\n", o.OutstandingBalance().StringFixed(2), o.Currency)
	if o.EstimatedDelivery != nil {
		fmt.Fprintf(w, "  Delivery:    %s\n", o.EstimatedDelivery.Format("2006-01-02"))
	}
	for _, warning := range o.InventoryWarnings {
		fmt.Fprintf(w, "  Warning:     %s\n", warning)
	}
	fmt.Fprintln(w, strings.Repeat("-", 60))
	if len(result.Actions) == 0 {
		fmt.Fprintln(w, "  No further actions.")
	} else {
		labels := make([]string, len(result.Actions))
		for i, a := range result.Actions {
			labels[i] = a.Label()
		}
		fmt.Fprintf(w, "  Next:        %s\n", strings.Join(labels, " | "))
	}
	fmt.Fprintln(w, strings.Repeat("-", 60))
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, `Usage: app <command> [args]

Quotes
  pending [page] [limit]          approved quotes awaiting conversion
  warehouses                      warehouses you may ship from
  convert <quoteID> <warehouseID> convert a quote into a sales order

Orders
  orders [status] [query]         list orders, optionally by status and text
  order <id>                      show an order and its next actions
  advance <id>                    apply the next step for the order's status
  deposit|final|pdi|ship|deliver <id>
  cancel <id> <reason...>         cancel with a reason
  status <id> <status> [note...]  set status through the override endpoint
  export <file.xlsx> [status]     write the order list to a workbook

Other
  whoami                          show the acting user
  watch                           follow quote conversions as they happen`)
}
