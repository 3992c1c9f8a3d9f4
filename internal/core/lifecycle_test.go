package core_test

import (
	"testing"

	"order-desk/internal/core"
)

func TestLifecycle_ActionsPerStatus(t *testing.T) {
	tests := []struct {
		status     core.OrderStatus
		forward    core.Action
		hasForward bool
		canCancel  bool
	}{
		{core.StatusOrdered, core.ActionMarkDepositReceived, true, true},
		{core.StatusDepositReceived, core.ActionMarkFinalPaymentReceived, true, true},
		{core.StatusFinalPaymentReceived, core.ActionMarkPreDeliveryComplete, true, true},
		{core.StatusPreDeliveryInspection, core.ActionMarkShipped, true, true},
		{core.StatusShipped, core.ActionMarkDelivered, true, true},
		{core.StatusDelivered, "", false, false},
		{core.StatusCancelled, "", false, false},
	}

	if len(tests) != len(core.LifecycleStatuses()) {
		t.Fatalf("table covers %d statuses, lifecycle has %d", len(tests), len(core.LifecycleStatuses()))
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got, ok := core.NextAction(tt.status)
			if ok != tt.hasForward || got != tt.forward {
				t.Errorf("NextAction(%s) = (%q, %v), want (%q, %v)", tt.status, got, ok, tt.forward, tt.hasForward)
			}
			if c := core.CanCancel(tt.status); c != tt.canCancel {
				t.Errorf("CanCancel(%s) = %v, want %v", tt.status, c, tt.canCancel)
			}

			actions := core.AvailableActions(tt.status)
			forwardCount := 0
			for _, a := range actions {
				if a != core.ActionCancel {
					forwardCount++
				}
			}
			if tt.hasForward && forwardCount != 1 {
				t.Errorf("expected exactly one forward action for %s, got %v", tt.status, actions)
			}
			if core.IsTerminal(tt.status) && len(actions) != 0 {
				t.Errorf("terminal status %s must offer no actions, got %v", tt.status, actions)
			}
		})
	}
}

func TestLifecycle_ChainIsForwardOnly(t *testing.T) {
	status := core.StatusOrdered
	visited := map[core.OrderStatus]bool{status: true}
	for !core.IsTerminal(status) {
		a, ok := core.NextAction(status)
		if !ok {
			t.Fatalf("non-terminal status %s has no forward action", status)
		}
		from, _ := a.Requires()
		if from != status {
			t.Fatalf("action %s requires %s, reached from %s", a, from, status)
		}
		next, _ := a.Target()
		if visited[next] {
			t.Fatalf("chain revisits %s", next)
		}
		visited[next] = true
		status = next
	}
	if status != core.StatusDelivered {
		t.Errorf("forward chain ends at %s, want delivered", status)
	}
	if len(visited) != 6 {
		t.Errorf("forward chain visits %d statuses, want 6", len(visited))
	}
}

func TestLifecycle_CancelTarget(t *testing.T) {
	target, ok := core.ActionCancel.Target()
	if !ok || target != core.StatusCancelled {
		t.Errorf("cancel target = (%s, %v), want cancelled", target, ok)
	}
	if _, ok := core.ActionCancel.Requires(); ok {
		t.Error("cancel must not report a single precondition")
	}
}

func TestLifecycle_DraftHasNoForwardAction(t *testing.T) {
	if _, ok := core.NextAction(core.StatusDraft); ok {
		t.Error("draft must not expose a lifecycle action")
	}
}

func TestParseStatusAndAction(t *testing.T) {
	if _, err := core.ParseStatus("shipped"); err != nil {
		t.Errorf("ParseStatus(shipped): %v", err)
	}
	if _, err := core.ParseStatus("lost_in_transit"); err == nil {
		t.Error("expected error for unknown status")
	}
	if a, err := core.ParseAction("ship"); err != nil || a != core.ActionMarkShipped {
		t.Errorf("ParseAction(ship) = (%s, %v)", a, err)
	}
	if a, err := core.ParseAction("cancel"); err != nil || a != core.ActionCancel {
		t.Errorf("ParseAction(cancel) = (%s, %v)", a, err)
	}
	if _, err := core.ParseAction("refund"); err == nil {
		t.Error("expected error for unknown action")
	}
}
