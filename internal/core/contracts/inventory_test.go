package contracts

import (
	"errors"
	"testing"

	"github.com/JonMunkholm/tabkit/internal/core"
)

const inventoryHeader = "Store - 3 Letter Code,Item Name,Item PLU/UPC,Availability,Current Inventory,Sales Floor Capacity,Andon Cord,Tracking Start Date,Tracking End Date"

func TestInventoryTracking(t *testing.T) {
	c, ok := core.DefaultContracts().Get(InventoryTrackingKey)
	if !ok {
		t.Fatalf("%s not registered", InventoryTrackingKey)
	}

	if len(c.Columns) != 9 {
		t.Errorf("columns = %d, want 9", len(c.Columns))
	}
	if c.HeaderLine() != inventoryHeader {
		t.Errorf("HeaderLine() = %q, want %q", c.HeaderLine(), inventoryHeader)
	}
}

func TestInventoryTracking_Gate(t *testing.T) {
	c, _ := core.DefaultContracts().Get(InventoryTrackingKey)
	check := c.Predicate()

	good := []byte(inventoryHeader + "\nSEA,Widget,0001,In Stock,5,10,No,2024-01-01,2024-02-01\n")
	tbl, err := core.Decode(good, core.SourceDelimited)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := check(tbl.Header); err != nil {
		t.Errorf("valid inventory header rejected: %v", err)
	}

	bad := []byte("Store,Item\nSEA,Widget\n")
	tbl, err = core.Decode(bad, core.SourceDelimited)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := check(tbl.Header); !errors.Is(err, core.ErrHeaderMismatch) {
		t.Errorf("error = %v, want ErrHeaderMismatch", err)
	}
}
