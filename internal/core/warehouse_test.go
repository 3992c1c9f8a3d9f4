package core_test

import (
	"testing"

	"order-desk/internal/core"
)

func twoRegions() []core.Region {
	return []core.Region{
		{ID: 1, Name: "Region A", Warehouses: []core.Warehouse{
			{ID: 1, Name: "W-1", RegionID: 1},
			{ID: 3, Name: "W-3", RegionID: 1},
		}},
		{ID: 2, Name: "Region B", Warehouses: []core.Warehouse{
			{ID: 5, Name: "W-5", RegionID: 2},
			{ID: 6, Name: "W-6", RegionID: 2},
		}},
	}
}

func TestAvailableWarehouses_AdminSeesAllRegions(t *testing.T) {
	for _, role := range []string{core.RoleAdmin, core.RoleFinancialLeader} {
		got := core.AvailableWarehouses(core.Actor{ID: 1, Role: role, RegionID: 1}, twoRegions())
		if len(got) != 4 {
			t.Fatalf("%s: expected 4 warehouses, got %d", role, len(got))
		}
		for _, o := range got {
			if o.RegionName == "" {
				t.Errorf("%s: warehouse %s has no region tag", role, o.Name)
			}
		}
		if got[2].RegionName != "Region B" {
			t.Errorf("%s: expected third warehouse tagged Region B, got %q", role, got[2].RegionName)
		}
	}
}

func TestAvailableWarehouses_RegionalUserSeesOwnRegion(t *testing.T) {
	got := core.AvailableWarehouses(core.Actor{ID: 7, Role: core.RoleRegionalUser, RegionID: 1}, twoRegions())
	if len(got) != 2 {
		t.Fatalf("expected 2 warehouses, got %d", len(got))
	}
	for _, o := range got {
		if o.RegionID != 1 {
			t.Errorf("warehouse %s from region %d leaked into region A scope", o.Name, o.RegionID)
		}
		if o.RegionName != "" {
			t.Errorf("regional user options must be untagged, got %q", o.RegionName)
		}
	}
	if _, ok := core.FindWarehouse(got, 3); !ok {
		t.Error("expected W-3 in region A scope")
	}
	if _, ok := core.FindWarehouse(got, 5); ok {
		t.Error("W-5 must not be selectable from region A")
	}
}

func TestAvailableWarehouses_EmptyScope(t *testing.T) {
	got := core.AvailableWarehouses(core.Actor{ID: 7, Role: core.RoleRegionalUser, RegionID: 9}, twoRegions())
	if len(got) != 0 {
		t.Errorf("expected empty scope, got %v", got)
	}
}
