package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"property-management-backend/internal/model"
)

func TestAddressStore_CountAggregates(t *testing.T) {
	ctx := context.Background()
	s, _ := newSQLiteStore(t)

	inputs := []AddressInput{
		{Category: model.CategoryResidential, Number: "1", Row: "1", Block: model.BlockA, TotalFloors: 2},
		{Category: model.CategoryResidential, Number: "2", Row: "1", Block: model.BlockA, TotalFloors: 2},
		{Category: model.CategoryAdministrative, Number: "3", Row: "2", Block: model.BlockC, TotalFloors: 1},
	}
	n, err := s.Addresses().CreateBatch(ctx, inputs, true)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	byCategory, err := s.Addresses().CountByCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"Residential": 2, "Administrative": 1}, byCategory)

	byBlock, err := s.Addresses().CountByBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"A": 2, "C": 1}, byBlock)

	total, err := s.Addresses().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestAddressStore_CreateValidation(t *testing.T) {
	testCases := []struct {
		name  string
		input AddressInput
	}{
		{name: "Unknown category", input: AddressInput{Category: "X", Number: "1", Row: "1", Block: model.BlockA, TotalFloors: 1}},
		{name: "Unknown block", input: AddressInput{Category: model.CategoryResidential, Number: "1", Row: "1", Block: "F", TotalFloors: 1}},
		{name: "No floors", input: AddressInput{Category: model.CategoryResidential, Number: "1", Row: "1", Block: model.BlockA, TotalFloors: 0}},
		{name: "Empty number", input: AddressInput{Category: model.CategoryResidential, Row: "1", Block: model.BlockA, TotalFloors: 1}},
	}

	s, _ := newSQLiteStore(t)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Addresses().Create(context.Background(), tc.input)
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}
}

func TestAddressStore_Filter(t *testing.T) {
	ctx := context.Background()
	s, _ := newSQLiteStore(t)
	mustAddress(t, s, "12", model.BlockB, 5)
	mustAddress(t, s, "112", model.BlockC, 5)
	_, err := s.Addresses().Create(ctx, AddressInput{Category: model.CategoryPublicBuilding, Number: "HALL", Row: "9", Block: model.BlockB, TotalFloors: 1})
	require.NoError(t, err)

	testCases := []struct {
		name     string
		filter   AddressFilter
		expected []string
	}{
		{name: "Number substring", filter: AddressFilter{Number: "12"}, expected: []string{"12", "112"}},
		{name: "Block", filter: AddressFilter{Block: model.BlockB}, expected: []string{"12", "HALL"}},
		{name: "Category and block", filter: AddressFilter{Category: model.CategoryPublicBuilding, Block: model.BlockB}, expected: []string{"HALL"}},
		{name: "Case-insensitive", filter: AddressFilter{Number: "hal"}, expected: []string{"HALL"}},
		{name: "Wildcards are literal", filter: AddressFilter{Number: "%"}, expected: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.Addresses().Filter(ctx, tc.filter)
			require.NoError(t, err)
			numbers := []string{}
			for _, a := range got {
				numbers = append(numbers, a.Number)
			}
			assert.Equal(t, tc.expected, numbers)
		})
	}
}

func TestAddressStore_Floors(t *testing.T) {
	ctx := context.Background()
	s, _ := newSQLiteStore(t)
	a := mustAddress(t, s, "12", model.BlockB, 3)

	shop, err := s.Addresses().AddFloor(ctx, a.ID, FloorInput{FloorNumber: 1, IsShop: true, IsCommercial: true, ShopCount: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, shop.ShopCount)

	flat, err := s.Addresses().AddFloor(ctx, a.ID, FloorInput{FloorNumber: 2, IsTenant: true, ShopCount: 5})
	require.NoError(t, err)
	assert.Equal(t, 0, flat.ShopCount, "shop count is dropped on non-shop floors")

	_, err = s.Addresses().AddFloor(ctx, a.ID, FloorInput{FloorNumber: 4})
	assert.True(t, IsValidation(err), "floor above total_floors")
	_, err = s.Addresses().AddFloor(ctx, a.ID, FloorInput{FloorNumber: 0})
	assert.True(t, IsValidation(err), "floor below 1")
	_, err = s.Addresses().AddFloor(ctx, a.ID, FloorInput{FloorNumber: 2})
	assert.True(t, IsValidation(err), "duplicate floor number")
	_, err = s.Addresses().AddFloor(ctx, 999, FloorInput{FloorNumber: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := s.Addresses().UpdateFloor(ctx, flat.ID, FloorInput{FloorNumber: 3, IsVacant: true})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.FloorNumber)
	assert.True(t, updated.IsVacant)
	assert.False(t, updated.IsTenant)

	_, err = s.Addresses().UpdateFloor(ctx, flat.ID, FloorInput{FloorNumber: 1})
	assert.True(t, IsValidation(err), "moving onto an existing floor number")

	_, err = s.Addresses().UpdateShopCount(ctx, shop.ID, 6)
	require.NoError(t, err)
	_, err = s.Addresses().UpdateShopCount(ctx, flat.ID, 1)
	assert.True(t, IsValidation(err))

	floors, err := s.Addresses().ListFloors(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, floors, 2)
	assert.Equal(t, 1, floors[0].FloorNumber)
	assert.Equal(t, 6, floors[0].ShopCount)

	got, err := s.Addresses().Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, got.Floors, 2)

	_, err = s.Addresses().Update(ctx, a.ID, AddressInput{Category: model.CategoryResidential, Number: "12", Row: "1", Block: model.BlockB, TotalFloors: 2})
	assert.True(t, IsValidation(err), "floor 3 exists")
	_, err = s.Addresses().Update(ctx, a.ID, AddressInput{Category: model.CategoryResidential, Number: "12A", Row: "1", Block: model.BlockB, TotalFloors: 3})
	require.NoError(t, err)
}

func TestAddressStore_DeleteFloorClearsResidents(t *testing.T) {
	ctx := context.Background()
	s, _ := newSQLiteStore(t)
	a := mustAddress(t, s, "12", model.BlockB, 5)
	f := mustFloor(t, s, a.ID, 2)
	r := mustResident(t, s, "Asha")
	_, err := s.Residents().Allot(ctx, r.ID, a.ID, &f.ID)
	require.NoError(t, err)

	_, err = s.Addresses().DeleteFloor(ctx, f.ID)
	require.NoError(t, err)

	got, err := s.Residents().Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FloorID)
	assert.Equal(t, []int64{a.ID}, addressIDs(got))

	_, err = s.Addresses().GetFloor(ctx, f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddressStore_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	s, db := newSQLiteStore(t)
	a := mustAddress(t, s, "12", model.BlockB, 5)
	keep := mustAddress(t, s, "14", model.BlockB, 5)
	f := mustFloor(t, s, a.ID, 2)
	r := mustResident(t, s, "Asha")
	_, err := s.Residents().Allot(ctx, r.ID, a.ID, &f.ID)
	require.NoError(t, err)
	_, err = s.Residents().Allot(ctx, r.ID, keep.ID, nil)
	require.NoError(t, err)

	_, err = s.Addresses().Delete(ctx, a.ID)
	require.NoError(t, err)

	got, err := s.Residents().Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FloorID)
	assert.Equal(t, []int64{keep.ID}, addressIDs(got))

	var floors int64
	require.NoError(t, db.Model(&model.Floor{}).Where("address_id = ?", a.ID).Count(&floors).Error)
	assert.Zero(t, floors)
	_, err = s.Addresses().Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddressStore_DeleteRefusedWhenReferenced(t *testing.T) {
	ctx := context.Background()
	s, _ := newSQLiteStore(t)
	a := mustAddress(t, s, "12", model.BlockB, 5)
	r := mustResident(t, s, "Asha")
	_, err := s.Complaints().Create(ctx, ComplaintInput{ResidentID: r.ID, AddressID: a.ID, Title: "Leak", Description: "Kitchen tap"})
	require.NoError(t, err)

	_, err = s.Addresses().Delete(ctx, a.ID)
	assert.True(t, IsValidation(err))

	_, err = s.Addresses().Get(ctx, a.ID)
	assert.NoError(t, err)
}

func TestAddressStore_CreateBatch(t *testing.T) {
	ctx := context.Background()
	good := func(n string) AddressInput {
		return AddressInput{Category: model.CategoryResidential, Number: n, Row: "1", Block: model.BlockA, TotalFloors: 1}
	}

	t.Run("Invalid input writes nothing", func(t *testing.T) {
		s, _ := newSQLiteStore(t)
		bad := good("2")
		bad.Block = "Q"
		n, err := s.Addresses().CreateBatch(ctx, []AddressInput{good("1"), bad, good("3")}, false)
		assert.True(t, IsValidation(err))
		assert.Zero(t, n)
		count, err := s.Addresses().Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	// failOn makes inserting the address numbered "boom" fail at the database.
	failOn := func(t *testing.T, db *gorm.DB) {
		require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail", func(tx *gorm.DB) {
			if a, ok := tx.Statement.Dest.(*model.Address); ok && a.Number == "boom" {
				_ = tx.AddError(errors.New("disk full"))
			}
		}))
	}

	t.Run("Atomic batch rolls back", func(t *testing.T) {
		s, db := newSQLiteStore(t)
		failOn(t, db)
		n, err := s.Addresses().CreateBatch(ctx, []AddressInput{good("1"), good("boom"), good("3")}, true)
		var se *StorageError
		assert.ErrorAs(t, err, &se)
		assert.Zero(t, n)
		count, err := s.Addresses().Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("Row by row keeps earlier rows", func(t *testing.T) {
		s, db := newSQLiteStore(t)
		failOn(t, db)
		n, err := s.Addresses().CreateBatch(ctx, []AddressInput{good("1"), good("boom"), good("3")}, false)
		assert.Error(t, err)
		assert.Equal(t, 1, n)
		count, err := s.Addresses().Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
