package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a sales order.
// Status progresses through the state machine:
//
//	ordered → deposit_received → final_payment_received → pre_delivery_inspection → shipped → delivered
//	Any non-terminal status → cancelled
//
// draft precedes ordered on the backend but no lifecycle action reaches it.
type OrderStatus string

const (
	StatusDraft                 OrderStatus = "draft"
	StatusOrdered               OrderStatus = "ordered"
	StatusDepositReceived       OrderStatus = "deposit_received"
	StatusFinalPaymentReceived  OrderStatus = "final_payment_received"
	StatusPreDeliveryInspection OrderStatus = "pre_delivery_inspection"
	StatusShipped               OrderStatus = "shipped"
	StatusDelivered             OrderStatus = "delivered"
	StatusCancelled             OrderStatus = "cancelled"
)

// Priority is the backend's delivery priority classification.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// SalesOrder is the binding, status-tracked entity created from a converted quote.
// The server owns every field; clients replace their copy wholesale with each response.
type SalesOrder struct {
	ID                 int             `json:"id"`
	OrderNumber        string          `json:"orderNumber"`
	QuoteID            *int            `json:"quoteId,omitempty"`
	StoreID            int             `json:"storeId"`
	CustomerID         int             `json:"customerId"`
	SalesRepID         int             `json:"salesRepId"`
	Status             OrderStatus     `json:"status"`
	ShippingAddress    string          `json:"shippingAddress"`
	Currency           string          `json:"currency"`
	DepositAmount      decimal.Decimal `json:"depositAmount"`
	DepositProofURL    string          `json:"depositProofUrl,omitempty"`
	Note               string          `json:"note,omitempty"`
	MachineModel       string          `json:"machineModel,omitempty"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	DepositDue         decimal.Decimal `json:"depositDue"`
	FinalPaymentDue    decimal.Decimal `json:"finalPaymentDue"`
	Priority           Priority        `json:"priority,omitempty"`
	RegionID           *int            `json:"regionId,omitempty"`
	WarehouseID        *int            `json:"warehouseId,omitempty"`
	EstimatedDelivery  *time.Time      `json:"estimatedDeliveryDate,omitempty"`
	CancellationReason string          `json:"cancellationReason,omitempty"`
	InventoryWarnings  []string        `json:"inventoryWarnings,omitempty"` // shortfalls detected during conversion
	Customer           *PartyRef       `json:"customer,omitempty"`
	SalesRep           *PartyRef       `json:"salesRep,omitempty"`
	Store              *PartyRef       `json:"store,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// OutstandingBalance is the part of the total not yet covered by the deposit.
func (o *SalesOrder) OutstandingBalance() decimal.Decimal {
	return o.TotalAmount.Sub(o.DepositAmount)
}

// HasInventoryWarning reports whether the server flagged stock shortfalls.
func (o *SalesOrder) HasInventoryWarning() bool {
	return len(o.InventoryWarnings) > 0
}

// PartyRef is a denormalized display reference to a store, customer or sales rep.
type PartyRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// OrderPage is one page of a remote order listing.
type OrderPage struct {
	Items []SalesOrder `json:"items"`
	Total int          `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}
