package core

import "strings"

// ListFilter is the free-text and status filter applied by list views.
type ListFilter struct {
	Query  string
	Status string
}

func (f ListFilter) matchesText(fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func refName(p *PartyRef) string {
	if p == nil {
		return ""
	}
	return p.Name
}

// FilterOrders keeps the orders whose number, customer or sales rep contains
// the query and whose status equals the status filter, preserving order.
func FilterOrders(orders []SalesOrder, f ListFilter) []SalesOrder {
	out := make([]SalesOrder, 0, len(orders))
	for _, o := range orders {
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		if !f.matchesText(o.OrderNumber, refName(o.Customer), refName(o.SalesRep)) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// FilterQuotes is FilterOrders for quotes.
func FilterQuotes(quotes []Quote, f ListFilter) []Quote {
	out := make([]Quote, 0, len(quotes))
	for _, q := range quotes {
		if f.Status != "" && string(q.Status) != f.Status {
			continue
		}
		if !f.matchesText(q.QuoteNumber, refName(q.Customer), refName(q.SalesRep)) {
			continue
		}
		out = append(out, q)
	}
	return out
}

// Paginate slices items for a 1-based page and returns the slice together with
// the size of the whole collection. Pages past the end are empty.
func Paginate[T any](items []T, page, pageSize int) ([]T, int) {
	total := len(items)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return items, total
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []T{}, total
	}
	end := min(start+pageSize, total)
	return items[start:end], total
}
