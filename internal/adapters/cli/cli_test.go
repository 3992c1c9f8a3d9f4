package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"order-desk/internal/api"
	"order-desk/internal/app"
	"order-desk/internal/core"
	"order-desk/internal/realtime"
	"order-desk/internal/testutil"
)

func newRunner(t *testing.T) (*Runner, *bytes.Buffer, *testutil.Backend) {
	t.Helper()
	b := testutil.NewBackend(t)
	b.SetRegions(core.Region{ID: 1, Name: "Region A", Warehouses: []core.Warehouse{{ID: 3, Name: "W-3", RegionID: 1}}})

	pending := core.NewPendingQuotes(16)
	ctx, cancel := context.WithCancel(context.Background())
	go pending.Run(ctx)
	t.Cleanup(cancel)

	out := &bytes.Buffer{}
	return &Runner{
		Svc:     app.NewAppService(api.NewClient(b.URL(), time.Second, nil), pending, nil),
		Session: core.Session{FallbackUserID: "7", FallbackRegionID: "1"},
		Out:     out,
	}, out, b
}

func TestRun_ConvertAndProgress(t *testing.T) {
	r, out, b := newRunner(t)
	ctx := context.Background()
	b.AddQuote(core.Quote{
		ID:          100,
		QuoteNumber: "Q-100",
		Status:      core.QuoteApproved,
		Total:       decimal.NewFromInt(25000),
		Customer:    &core.PartyRef{ID: 1, Name: "Acme Farms"},
	})

	if err := r.Run(ctx, []string{"pending"}); err != nil {
		t.Fatalf("pending: %v", err)
	}
	if !strings.Contains(out.String(), "Q-100") {
		t.Errorf("pending output lacks Q-100:\n%s", out.String())
	}

	out.Reset()
	if err := r.Run(ctx, []string{"convert", "100", "3"}); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !strings.Contains(out.String(), "SO-500") {
		t.Errorf("convert output lacks SO-500:\n%s", out.String())
	}

	for _, cmd := range []string{"deposit", "final"} {
		if err := r.Run(ctx, []string{cmd, "500"}); err != nil {
			t.Fatalf("%s: %v", cmd, err)
		}
	}

	err := r.Run(ctx, []string{"ship", "500"})
	var transErr *core.TransitionError
	if !errors.As(err, &transErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if msg := core.UserMessage(err); !strings.Contains(msg, "Final payment received") {
		t.Errorf("unexpected message: %s", msg)
	}

	out.Reset()
	if err := r.Run(ctx, []string{"advance", "500"}); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !strings.Contains(out.String(), "Pre-delivery inspection") {
		t.Errorf("advance output lacks new status:\n%s", out.String())
	}
}

func TestRun_Cancel(t *testing.T) {
	r, out, b := newRunner(t)
	b.AddOrder(core.SalesOrder{ID: 9, OrderNumber: "SO-9", Status: core.StatusOrdered})

	err := r.Run(context.Background(), []string{"cancel", "9"})
	var valErr *core.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	if err := r.Run(context.Background(), []string{"cancel", "9", "customer", "requested"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !strings.Contains(out.String(), "customer requested") {
		t.Errorf("cancel output lacks reason:\n%s", out.String())
	}
}

func TestRun_Usage(t *testing.T) {
	r, out, _ := newRunner(t)

	tests := [][]string{
		{"convert"},
		{"convert", "x", "3"},
		{"order"},
		{"status", "1"},
		{"export"},
		{"frobnicate"},
	}
	for _, args := range tests {
		if err := r.Run(context.Background(), args); !errors.Is(err, ErrUsage) {
			t.Errorf("%v: expected ErrUsage, got %v", args, err)
		}
	}

	out.Reset()
	if err := r.Run(context.Background(), nil); err != nil {
		t.Fatalf("help: %v", err)
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Error("expected help text")
	}
}

func TestRun_Export(t *testing.T) {
	r, out, b := newRunner(t)
	b.AddOrder(core.SalesOrder{ID: 1, OrderNumber: "SO-1", Status: core.StatusShipped})
	path := filepath.Join(t.TempDir(), "orders.xlsx")

	if err := r.Run(context.Background(), []string{"export", path, "shipped"}); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out.String(), "Exported 1 orders") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestRun_Watch(t *testing.T) {
	r, out, b := newRunner(t)
	b.AddQuote(core.Quote{ID: 100, QuoteNumber: "Q-100", Status: core.QuoteApproved})

	r.Listen = func(ctx context.Context, _ core.Session, handle realtime.Handler) error {
		if err := handle(ctx, realtime.QuoteConverted{QuoteID: 100, OrderID: 500}); err != nil {
			return err
		}
		return context.Canceled
	}

	if err := r.Run(context.Background(), []string{"watch"}); err != nil {
		t.Fatalf("watch: %v", err)
	}
	if !strings.Contains(out.String(), "1 quotes pending") {
		t.Errorf("expected the starting count: %s", out.String())
	}
	if !strings.Contains(out.String(), "quote 100 converted (order 500), 0 pending") {
		t.Errorf("unexpected output: %s", out.String())
	}

	r.Listen = nil
	if err := r.Run(context.Background(), []string{"watch"}); err == nil {
		t.Error("expected an error without a real-time channel")
	}
}
