package contracts

import "github.com/JonMunkholm/tabkit/internal/core"

// InventoryTrackingKey is the contract checked when validation is enabled
// and no other contract is selected.
const InventoryTrackingKey = "inventory_tracking"

func init() {
	registerInventoryTracking()
}

func registerInventoryTracking() {
	core.RegisterBuiltin(core.Contract{
		Key:   InventoryTrackingKey,
		Label: "Inventory tracking",
		Columns: []string{
			"Store - 3 Letter Code",
			"Item Name",
			"Item PLU/UPC",
			"Availability",
			"Current Inventory",
			"Sales Floor Capacity",
			"Andon Cord",
			"Tracking Start Date",
			"Tracking End Date",
		},
	})
}
