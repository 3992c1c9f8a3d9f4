package core

import (
	"context"
	"sync"
)

// ConversionSource tells where a QuoteConverted event came from.
type ConversionSource string

const (
	SourceLocal ConversionSource = "local" // this process converted the quote
	SourcePush  ConversionSource = "push"  // the real-time channel announced it
)

// DefaultTombstoneLimit bounds how many converted ids a collection remembers.
// A tombstone only has to outlive page fetches that were in flight when the
// conversion happened; older ids come back from the backend already flagged
// as converted.
const DefaultTombstoneLimit = 4096

// PendingEvent is a mutation of the pending-quote collection.
type PendingEvent interface {
	pendingEvent()
}

// QuotesLoaded replaces the collection with a freshly fetched page.
type QuotesLoaded struct {
	Page QuotePage
}

// QuoteConverted removes a quote from the collection for good.
type QuoteConverted struct {
	QuoteID int
	OrderID int
	Source  ConversionSource
}

type syncBarrier struct {
	done chan struct{}
}

func (QuotesLoaded) pendingEvent()   {}
func (QuoteConverted) pendingEvent() {}
func (syncBarrier) pendingEvent()    {}

// PendingSnapshot is a read-only copy of the collection.
// Version increases by one for every applied mutation.
type PendingSnapshot struct {
	Quotes  []Quote
	Total   int
	Version uint64
}

// Contains reports whether the snapshot still offers quoteID.
func (s PendingSnapshot) Contains(quoteID int) bool {
	for _, q := range s.Quotes {
		if q.ID == quoteID {
			return true
		}
	}
	return false
}

// PendingQuotes is the locally cached list of approved, unconverted quotes.
// Every mutation (page loads, local conversions, push notifications) goes
// through one queue drained by Run, so the last event applied wins and the
// outcome depends only on queue order. The most recent converted ids are
// remembered, so a page fetched before a conversion but applied after it
// cannot re-offer the quote.
type PendingQuotes struct {
	events chan PendingEvent

	mu        sync.RWMutex
	quotes    []Quote
	total     int
	converted map[int]bool
	tombOrder []int // converted ids, oldest first
	tombLimit int
	version   uint64
	changed   chan struct{}
}

// NewPendingQuotes creates an empty collection whose queue holds buffer events.
func NewPendingQuotes(buffer int) *PendingQuotes {
	if buffer < 1 {
		buffer = 1
	}
	return &PendingQuotes{
		events:    make(chan PendingEvent, buffer),
		converted: make(map[int]bool),
		tombLimit: DefaultTombstoneLimit,
		changed:   make(chan struct{}),
	}
}

// Dispatch enqueues ev. It blocks while the queue is full.
func (p *PendingQuotes) Dispatch(ctx context.Context, ev PendingEvent) error {
	select {
	case p.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run applies queued events in order until ctx ends.
func (p *PendingQuotes) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-p.events:
			p.apply(ev)
		}
	}
}

// Sync waits until every event dispatched before the call has been applied.
func (p *PendingQuotes) Sync(ctx context.Context) error {
	b := syncBarrier{done: make(chan struct{})}
	if err := p.Dispatch(ctx, b); err != nil {
		return err
	}
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot copies the current state.
func (p *PendingQuotes) Snapshot() PendingSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	quotes := make([]Quote, len(p.quotes))
	copy(quotes, p.quotes)
	return PendingSnapshot{Quotes: quotes, Total: p.total, Version: p.version}
}

// Filter drops from page the quotes that are not convertible or that this
// collection has seen converted. It reads only the converted ids, so callers
// that each hold their own page never see another caller's listing.
func (p *PendingQuotes) Filter(page QuotePage) QuotePage {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.filterLocked(page)
}

func (p *PendingQuotes) filterLocked(page QuotePage) QuotePage {
	kept := make([]Quote, 0, len(page.Items))
	for _, q := range page.Items {
		if !q.Convertible() || p.converted[q.ID] {
			continue
		}
		kept = append(kept, q)
	}
	page.Total = max(page.Total-(len(page.Items)-len(kept)), len(kept))
	page.Items = kept
	return page
}

// Changed returns a channel that is closed by the next applied mutation.
// Callers re-fetch it after every wake-up.
func (p *PendingQuotes) Changed() <-chan struct{} {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.changed
}

func (p *PendingQuotes) apply(ev PendingEvent) {
	if b, ok := ev.(syncBarrier); ok {
		close(b.done)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch e := ev.(type) {
	case QuotesLoaded:
		filtered := p.filterLocked(e.Page)
		p.quotes = filtered.Items
		p.total = filtered.Total
	case QuoteConverted:
		p.tombstone(e.QuoteID)
		for i, q := range p.quotes {
			if q.ID == e.QuoteID {
				p.quotes = append(p.quotes[:i:i], p.quotes[i+1:]...)
				p.total = max(p.total-1, len(p.quotes))
				break
			}
		}
	default:
		return
	}
	p.version++
	close(p.changed)
	p.changed = make(chan struct{})
}

// tombstone records id as converted, evicting the oldest ids past tombLimit.
func (p *PendingQuotes) tombstone(id int) {
	if p.converted[id] {
		return
	}
	p.converted[id] = true
	p.tombOrder = append(p.tombOrder, id)
	if over := len(p.tombOrder) - p.tombLimit; over > 0 {
		for _, old := range p.tombOrder[:over] {
			delete(p.converted, old)
		}
		p.tombOrder = append(p.tombOrder[:0:0], p.tombOrder[over:]...)
	}
}
