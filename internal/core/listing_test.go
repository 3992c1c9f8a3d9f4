package core_test

import (
	"testing"

	"order-desk/internal/core"
)

func sampleOrders() []core.SalesOrder {
	return []core.SalesOrder{
		{ID: 1, OrderNumber: "SO-001", Status: core.StatusOrdered, Customer: &core.PartyRef{Name: "Acme Farms"}, SalesRep: &core.PartyRef{Name: "Lee"}},
		{ID: 2, OrderNumber: "SO-002", Status: core.StatusShipped, Customer: &core.PartyRef{Name: "Beta Dairy"}, SalesRep: &core.PartyRef{Name: "Kim"}},
		{ID: 3, OrderNumber: "SO-003", Status: core.StatusOrdered, Customer: &core.PartyRef{Name: "Gamma Agri"}, SalesRep: &core.PartyRef{Name: "Kim"}},
		{ID: 4, OrderNumber: "SO-004", Status: core.StatusOrdered},
	}
}

func TestFilterOrders(t *testing.T) {
	tests := []struct {
		name   string
		filter core.ListFilter
		want   []int
	}{
		{"no filter", core.ListFilter{}, []int{1, 2, 3, 4}},
		{"status only", core.ListFilter{Status: "ordered"}, []int{1, 3, 4}},
		{"order number", core.ListFilter{Query: "so-002"}, []int{2}},
		{"customer", core.ListFilter{Query: "acme"}, []int{1}},
		{"sales rep and status", core.ListFilter{Query: "kim", Status: "ordered"}, []int{3}},
		{"no match", core.ListFilter{Query: "zeta"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.FilterOrders(sampleOrders(), tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d orders, got %d", len(tt.want), len(got))
			}
			for i, o := range got {
				if o.ID != tt.want[i] {
					t.Errorf("position %d: expected order %d, got %d", i, tt.want[i], o.ID)
				}
			}
		})
	}
}

func TestFilterQuotes(t *testing.T) {
	quotes := []core.Quote{
		{ID: 100, QuoteNumber: "Q-100", Status: core.QuoteApproved, Customer: &core.PartyRef{Name: "Acme"}},
		{ID: 101, QuoteNumber: "Q-101", Status: core.QuotePending},
	}
	got := core.FilterQuotes(quotes, core.ListFilter{Query: "q-10", Status: "approved"})
	if len(got) != 1 || got[0].ID != 100 {
		t.Errorf("expected only Q-100, got %v", got)
	}
}

func TestPaginate_SlicesFilteredCollection(t *testing.T) {
	filtered := core.FilterOrders(sampleOrders(), core.ListFilter{Status: "ordered"})

	page, total := core.Paginate(filtered, 2, 2)
	if total != 3 {
		t.Errorf("total must count the filtered collection: got %d, want 3", total)
	}
	if len(page) != 1 || page[0].ID != 4 {
		t.Errorf("expected page 2 to hold order 4, got %v", page)
	}

	page, _ = core.Paginate(filtered, 5, 2)
	if len(page) != 0 {
		t.Errorf("expected empty page past the end, got %d items", len(page))
	}

	page, _ = core.Paginate(filtered, 0, 0)
	if len(page) != 3 {
		t.Errorf("non-positive page size returns everything, got %d", len(page))
	}
}
