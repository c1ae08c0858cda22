package app

import (
	"context"
	"fmt"
	"strings"

	"property-management-backend/internal/model"
	"property-management-backend/internal/parse"
	"property-management-backend/internal/store"
)

// ResolveAddressRef finds the address named by ref and, when ref names a
// floor, that floor's id.
func (c *Context) ResolveAddressRef(ctx context.Context, ref parse.AddressRef) (*model.Address, *int64, error) {
	candidates, err := c.Store.Addresses().Filter(ctx, store.AddressFilter{Block: ref.Block, Number: ref.Number})
	if err != nil {
		return nil, nil, err
	}

	var address *model.Address
	for i := range candidates {
		// Filter matches substrings; "1" must not pick "12".
		if strings.EqualFold(candidates[i].Number, ref.Number) {
			address = &candidates[i]
			break
		}
	}
	if address == nil {
		return nil, nil, fmt.Errorf("address %s: %w", ref, store.ErrNotFound)
	}
	if ref.Floor == 0 {
		return address, nil, nil
	}

	floors, err := c.Store.Addresses().ListFloors(ctx, address.ID)
	if err != nil {
		return nil, nil, err
	}
	for i := range floors {
		if floors[i].FloorNumber == ref.Floor {
			return address, &floors[i].ID, nil
		}
	}
	return nil, nil, fmt.Errorf("floor %s: %w", ref, store.ErrNotFound)
}
