package core_test

import (
	"context"
	"testing"
	"time"

	"order-desk/internal/core"
)

func startPending(t *testing.T) (*core.PendingQuotes, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	p := core.NewPendingQuotes(8)
	go p.Run(ctx)
	return p, ctx
}

func approved(id int, number string) core.Quote {
	return core.Quote{ID: id, QuoteNumber: number, Status: core.QuoteApproved}
}

func TestPendingQuotes_LoadDropsConverted(t *testing.T) {
	p, ctx := startPending(t)

	converted := approved(102, "Q-102")
	converted.ConvertedToOrder = true

	page := core.QuotePage{Items: []core.Quote{approved(100, "Q-100"), approved(101, "Q-101"), converted}, Total: 3}
	if err := p.Dispatch(ctx, core.QuotesLoaded{Page: page}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if err := p.Sync(ctx); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	snap := p.Snapshot()
	if len(snap.Quotes) != 2 || snap.Contains(102) {
		t.Errorf("converted quote must be filtered, got %v", snap.Quotes)
	}
	if snap.Total != 2 {
		t.Errorf("expected total 2, got %d", snap.Total)
	}
	if snap.Version != 1 {
		t.Errorf("expected version 1, got %d", snap.Version)
	}
}

func TestPendingQuotes_ConversionRemovesQuote(t *testing.T) {
	p, ctx := startPending(t)

	page := core.QuotePage{Items: []core.Quote{approved(100, "Q-100"), approved(101, "Q-101")}, Total: 12}
	_ = p.Dispatch(ctx, core.QuotesLoaded{Page: page})
	_ = p.Dispatch(ctx, core.QuoteConverted{QuoteID: 100, OrderID: 500, Source: core.SourceLocal})
	// A push for the same quote arriving later is a no-op on the list.
	_ = p.Dispatch(ctx, core.QuoteConverted{QuoteID: 100, Source: core.SourcePush})
	if err := p.Sync(ctx); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	snap := p.Snapshot()
	if snap.Contains(100) {
		t.Error("Q-100 must be removed after conversion")
	}
	if !snap.Contains(101) {
		t.Error("Q-101 must remain pending")
	}
	if snap.Total != 11 {
		t.Errorf("expected total 11, got %d", snap.Total)
	}
	if snap.Version != 3 {
		t.Errorf("expected version 3, got %d", snap.Version)
	}
}

func TestPendingQuotes_StaleLoadAfterPushDoesNotReoffer(t *testing.T) {
	p, ctx := startPending(t)

	_ = p.Dispatch(ctx, core.QuoteConverted{QuoteID: 100, Source: core.SourcePush})
	// Page fetched before the conversion landed, still listing Q-100 as unconverted.
	stale := core.QuotePage{Items: []core.Quote{approved(100, "Q-100"), approved(101, "Q-101")}, Total: 2}
	_ = p.Dispatch(ctx, core.QuotesLoaded{Page: stale})
	if err := p.Sync(ctx); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	snap := p.Snapshot()
	if snap.Contains(100) {
		t.Error("a converted quote must never be re-offered")
	}
	if len(snap.Quotes) != 1 || snap.Total != 1 {
		t.Errorf("expected only Q-101, got %v (total %d)", snap.Quotes, snap.Total)
	}
}

func TestPendingQuotes_SnapshotIsCopy(t *testing.T) {
	p, ctx := startPending(t)
	_ = p.Dispatch(ctx, core.QuotesLoaded{Page: core.QuotePage{Items: []core.Quote{approved(1, "Q-1")}, Total: 1}})
	_ = p.Sync(ctx)

	snap := p.Snapshot()
	snap.Quotes[0].QuoteNumber = "mutated"
	if p.Snapshot().Quotes[0].QuoteNumber != "Q-1" {
		t.Error("snapshot mutation leaked into the collection")
	}
}

func TestPendingQuotes_DispatchHonoursContext(t *testing.T) {
	p := core.NewPendingQuotes(1)
	ctx, cancel := context.WithCancel(context.Background())
	if err := p.Dispatch(ctx, core.QuoteConverted{QuoteID: 1}); err != nil {
		t.Fatalf("first dispatch should fit the buffer: %v", err)
	}
	cancel()
	if err := p.Dispatch(ctx, core.QuoteConverted{QuoteID: 2}); err == nil {
		t.Error("expected context error when the queue is full and nobody drains it")
	}
}

func TestPendingQuotes_ChangedClosesOnMutation(t *testing.T) {
	p, ctx := startPending(t)

	changed := p.Changed()
	select {
	case <-changed:
		t.Fatal("Changed closed before any mutation")
	default:
	}

	if err := p.Dispatch(ctx, core.QuoteConverted{QuoteID: 1, Source: core.SourcePush}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("Changed not closed after mutation")
	}

	if p.Changed() == changed {
		t.Error("Changed must hand out a fresh channel after a mutation")
	}
}

func TestPendingQuotes_FilterLeavesCollectionAlone(t *testing.T) {
	p, ctx := startPending(t)

	if err := p.Dispatch(ctx, core.QuotesLoaded{Page: core.QuotePage{Items: []core.Quote{approved(100, "Q-100")}, Total: 1}}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if err := p.Dispatch(ctx, core.QuoteConverted{QuoteID: 201, Source: core.SourceLocal}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if err := p.Sync(ctx); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	before := p.Snapshot()

	page := p.Filter(core.QuotePage{Items: []core.Quote{approved(200, "Q-200"), approved(201, "Q-201")}, Total: 12, Page: 2, Limit: 2})
	if len(page.Items) != 1 || page.Items[0].ID != 200 {
		t.Fatalf("converted quote must be dropped, got %v", page.Items)
	}
	if page.Total != 11 || page.Page != 2 || page.Limit != 2 {
		t.Errorf("unexpected paging: total=%d page=%d limit=%d", page.Total, page.Page, page.Limit)
	}

	after := p.Snapshot()
	if after.Version != before.Version || !after.Contains(100) || after.Contains(200) {
		t.Errorf("Filter must not mutate the collection: before=%+v after=%+v", before, after)
	}
}
