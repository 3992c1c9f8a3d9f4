package core

// Warehouse is a shipping location. Read-only reference data.
type Warehouse struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	RegionID int    `json:"regionId,omitempty"`
}

// Region groups warehouses; non-admin actors are scoped to one region.
type Region struct {
	ID         int         `json:"id"`
	Name       string      `json:"name"`
	Warehouses []Warehouse `json:"warehouses"`
}

// WarehouseOption is a warehouse offered for selection. RegionName is only
// set when the actor can see more than one region.
type WarehouseOption struct {
	Warehouse
	RegionName string `json:"regionName,omitempty"`
}

// AvailableWarehouses resolves the warehouses actor may ship from.
// Admins and financial leaders see every region's warehouses flattened and
// tagged with the region name; other actors see their own region's warehouses
// untagged. An empty result means conversion must not proceed.
func AvailableWarehouses(actor Actor, regions []Region) []WarehouseOption {
	var out []WarehouseOption
	if actor.SeesAllRegions() {
		for _, r := range regions {
			for _, w := range r.Warehouses {
				out = append(out, WarehouseOption{Warehouse: w, RegionName: r.Name})
			}
		}
		return out
	}
	for _, r := range regions {
		if r.ID != actor.RegionID {
			continue
		}
		for _, w := range r.Warehouses {
			out = append(out, WarehouseOption{Warehouse: w})
		}
	}
	return out
}

// FindWarehouse returns the option with the given id.
func FindWarehouse(options []WarehouseOption, id int) (WarehouseOption, bool) {
	for _, o := range options {
		if o.ID == id {
			return o, true
		}
	}
	return WarehouseOption{}, false
}
