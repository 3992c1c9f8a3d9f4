package core

import "fmt"

// Action is a lifecycle operation the backend applies to an order.
type Action string

const (
	ActionMarkDepositReceived      Action = "deposit-received"
	ActionMarkFinalPaymentReceived Action = "final-payment-received"
	ActionMarkPreDeliveryComplete  Action = "pre-delivery-complete"
	ActionMarkShipped              Action = "ship"
	ActionMarkDelivered            Action = "deliver"
	ActionCancel                   Action = "cancel"
)

// transition is one forward edge of the order state machine.
type transition struct {
	from   OrderStatus
	action Action
	to     OrderStatus
	label  string
}

// forwardChain is the canonical legality table: each non-terminal status
// has exactly one forward action. Everything else is derived from it.
var forwardChain = []transition{
	{StatusOrdered, ActionMarkDepositReceived, StatusDepositReceived, "Mark deposit received"},
	{StatusDepositReceived, ActionMarkFinalPaymentReceived, StatusFinalPaymentReceived, "Mark final payment received"},
	{StatusFinalPaymentReceived, ActionMarkPreDeliveryComplete, StatusPreDeliveryInspection, "Complete pre-delivery inspection"},
	{StatusPreDeliveryInspection, ActionMarkShipped, StatusShipped, "Mark shipped"},
	{StatusShipped, ActionMarkDelivered, StatusDelivered, "Mark delivered"},
}

var (
	nextByStatus  = make(map[OrderStatus]transition, len(forwardChain))
	edgeByAction  = make(map[Action]transition, len(forwardChain))
	knownStatuses = map[OrderStatus]bool{StatusDraft: true, StatusCancelled: true, StatusDelivered: true}
)

func init() {
	for _, t := range forwardChain {
		nextByStatus[t.from] = t
		edgeByAction[t.action] = t
		knownStatuses[t.from] = true
		knownStatuses[t.to] = true
	}
}

// LifecycleStatuses lists the seven statuses an order can hold once ordered.
func LifecycleStatuses() []OrderStatus {
	return []OrderStatus{
		StatusOrdered,
		StatusDepositReceived,
		StatusFinalPaymentReceived,
		StatusPreDeliveryInspection,
		StatusShipped,
		StatusDelivered,
		StatusCancelled,
	}
}

// ParseStatus converts a wire value into a known OrderStatus.
func ParseStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if !knownStatuses[st] {
		return "", &ValidationError{Field: "status", Message: fmt.Sprintf("unknown order status %q", s)}
	}
	return st, nil
}

// ParseAction converts a wire value into a known Action.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if a == ActionCancel {
		return a, nil
	}
	if _, ok := edgeByAction[a]; !ok {
		return "", &ValidationError{Field: "action", Message: fmt.Sprintf("unknown order action %q", s)}
	}
	return a, nil
}

// IsTerminal reports whether no action is offered from s.
func IsTerminal(s OrderStatus) bool {
	return s == StatusDelivered || s == StatusCancelled
}

// NextAction returns the single forward action legal from s.
// draft is a pre-submission state and has none.
func NextAction(s OrderStatus) (Action, bool) {
	t, ok := nextByStatus[s]
	if !ok {
		return "", false
	}
	return t.action, true
}

// CanCancel reports whether the cancel side-exit is offered from s.
func CanCancel(s OrderStatus) bool {
	return knownStatuses[s] && !IsTerminal(s)
}

// AvailableActions lists the actions offered for an order in status s:
// the forward action first, then cancel.
func AvailableActions(s OrderStatus) []Action {
	var out []Action
	if a, ok := NextAction(s); ok {
		out = append(out, a)
	}
	if CanCancel(s) {
		out = append(out, ActionCancel)
	}
	return out
}

// Requires returns the status an order must hold for the backend to accept a.
// Cancel has no single precondition and returns false.
func (a Action) Requires() (OrderStatus, bool) {
	t, ok := edgeByAction[a]
	return t.from, ok
}

// Target returns the status an order holds after a succeeds.
func (a Action) Target() (OrderStatus, bool) {
	if a == ActionCancel {
		return StatusCancelled, true
	}
	t, ok := edgeByAction[a]
	return t.to, ok
}

// Label is the human-readable name of the action.
func (a Action) Label() string {
	if a == ActionCancel {
		return "Cancel order"
	}
	if t, ok := edgeByAction[a]; ok {
		return t.label
	}
	return string(a)
}

var statusLabels = map[OrderStatus]string{
	StatusDraft:                 "Draft",
	StatusOrdered:               "Ordered",
	StatusDepositReceived:       "Deposit received",
	StatusFinalPaymentReceived:  "Final payment received",
	StatusPreDeliveryInspection: "Pre-delivery inspection",
	StatusShipped:               "Shipped",
	StatusDelivered:             "Delivered",
	StatusCancelled:             "Cancelled",
}

// Label is the display name of the status. Unknown values render as-is.
func (s OrderStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}
