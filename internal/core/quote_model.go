package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteStatus is an unordered approval classification, not a lifecycle.
type QuoteStatus string

const (
	QuotePending  QuoteStatus = "pending"
	QuoteApproved QuoteStatus = "approved"
	QuoteRejected QuoteStatus = "rejected"
)

// Quote is a priced proposal to a customer.
// Once ConvertedToOrder is true the quote is never offered for conversion again.
type Quote struct {
	ID               int             `json:"id"`
	QuoteNumber      string          `json:"quoteNumber"`
	StoreID          int             `json:"storeId"`
	CustomerID       int             `json:"customerId"`
	SalesRepID       int             `json:"salesRepId"`
	QuoteDate        string          `json:"quoteDate"` // YYYY-MM-DD
	Currency         string          `json:"currency"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	GST              decimal.Decimal `json:"gst"`
	Total            decimal.Decimal `json:"total"`
	DepositRequired  bool            `json:"depositRequired"`
	DepositAmount    decimal.Decimal `json:"depositAmount"`
	Remarks          string          `json:"remarks,omitempty"`
	WarrantyNotes    string          `json:"warrantyNotes,omitempty"`
	Status           QuoteStatus     `json:"status"`
	ConvertedToOrder bool            `json:"convertedToOrder"`
	ConvertedAt      *time.Time      `json:"convertedAt,omitempty"`
	ConvertedBy      *int            `json:"convertedBy,omitempty"`
	ConvertedOrderID *int            `json:"convertedOrderId,omitempty"`
	Items            []QuoteItem     `json:"items"`
	Store            *PartyRef       `json:"store,omitempty"`
	Customer         *PartyRef       `json:"customer,omitempty"`
	SalesRep         *PartyRef       `json:"salesRep,omitempty"`
}

// Convertible reports whether the quote may still be offered for conversion.
func (q *Quote) Convertible() bool {
	return q.Status == QuoteApproved && !q.ConvertedToOrder
}

// QuoteItem is one line of a quote.
type QuoteItem struct {
	ID          int             `json:"id"`
	ProductID   int             `json:"productId"`
	WarehouseID *int            `json:"warehouseId,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Description string          `json:"description,omitempty"`
	Specs       string          `json:"specs,omitempty"`
}

// LineTotal is quantity × unit price.
func (i QuoteItem) LineTotal() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// QuotePage is one page of a remote quote listing.
type QuotePage struct {
	Items []Quote `json:"items"`
	Total int     `json:"total"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
}

// ConvertRequest carries the inputs of a quote-to-order conversion.
// A nil WarehouseID means the actor has not selected a warehouse yet.
type ConvertRequest struct {
	WarehouseID *int `json:"warehouseId"`
	InitiatedBy int  `json:"initiatedBy"`
}

// Validate checks the local preconditions of a conversion.
func (r ConvertRequest) Validate() error {
	if r.WarehouseID == nil {
		return &ValidationError{Field: "warehouse_id", Message: "a warehouse must be selected before conversion"}
	}
	if *r.WarehouseID <= 0 {
		return &ValidationError{Field: "warehouse_id", Message: "warehouse id must be positive"}
	}
	if r.InitiatedBy <= 0 {
		return &ValidationError{Field: "initiated_by", Message: "initiating user is required"}
	}
	return nil
}
