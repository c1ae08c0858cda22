package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-management-backend/internal/model"
)

func addressIDs(r *model.Resident) []int64 {
	ids := make([]int64, 0, len(r.Addresses))
	for _, a := range r.Addresses {
		ids = append(ids, a.ID)
	}
	return ids
}

func TestAllot_AddressOnlyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newSQLiteStore(t)
	a := mustAddress(t, s, "12", model.BlockB, 5)
	r := mustResident(t, s, "Asha")

	res, err := s.Residents().Allot(ctx, r.ID, a.ID, nil)
	require.NoError(t, err)
	assert.True(t, res.AddressAttached)
	assert.False(t, res.FloorAssigned)
	assert.Nil(t, res.FloorID)

	res, err = s.Residents().Allot(ctx, r.ID, a.ID, nil)
	require.NoError(t, err)
	assert.False(t, res.AddressAttached)

	got, err := s.Residents().Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID}, addressIDs(got))
}

func TestAllot_FloorOfAddressThenRemove(t *testing.T) {
	ctx := context.Background()
	s, _ := newSQLiteStore(t)
	a := mustAddress(t, s, "12", model.BlockB, 5)
	f := mustFloor(t, s, a.ID, 3)
	r := mustResident(t, s, "Asha")

	res, err := s.Residents().Allot(ctx, r.ID, a.ID, &f.ID)
	require.NoError(t, err)
	assert.True(t, res.FloorAssigned)
	assert.False(t, res.FloorRejected)
	require.NotNil(t, res.FloorID)
	assert.Equal(t, f.ID, *res.FloorID)

	got, err := s.Residents().Get(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FloorID)
	assert.Equal(t, f.ID, *got.FloorID)

	require.NoError(t, s.Residents().Remove(ctx, r.ID, a.ID))

	got, err = s.Residents().Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FloorID)
	assert.Empty(t, got.Addresses)
}

func TestAllot_ForeignFloorIsRejected(t *testing.T) {
	ctx := context.Background()
	s, _ := newSQLiteStore(t)
	a := mustAddress(t, s, "12", model.BlockB, 5)
	other := mustAddress(t, s, "14", model.BlockB, 5)
	home := mustFloor(t, s, a.ID, 1)
	foreign := mustFloor(t, s, other.ID, 2)
	r := mustResident(t, s, "Asha")

	_, err := s.Residents().Allot(ctx, r.ID, a.ID, &home.ID)
	require.NoError(t, err)

	res, err := s.Residents().Allot(ctx, r.ID, a.ID, &foreign.ID)
	require.NoError(t, err)
	assert.True(t, res.FloorRejected)
	assert.False(t, res.FloorAssigned)
	require.NotNil(t, res.FloorID)
	assert.Equal(t, home.ID, *res.FloorID)

	// A floor that does not exist at all is rejected the same way.
	fresh := mustResident(t, s, "Ravi")
	res, err = s.Residents().Allot(ctx, fresh.ID, other.ID, ptr(int64(9999)))
	require.NoError(t, err)
	assert.True(t, res.AddressAttached)
	assert.True(t, res.FloorRejected)
	assert.Nil(t, res.FloorID)

	got, err := s.Residents().Get(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{other.ID}, addressIDs(got))
	assert.Nil(t, got.FloorID)
}

func TestAllot_SecondAddressOverwritesFloor(t *testing.T) {
	ctx := context.Background()
	s, _ := newSQLiteStore(t)
	a := mustAddress(t, s, "12", model.BlockB, 5)
	b := mustAddress(t, s, "30", model.BlockC, 2)
	fa := mustFloor(t, s, a.ID, 1)
	fb := mustFloor(t, s, b.ID, 2)
	r := mustResident(t, s, "Asha")

	_, err := s.Residents().Allot(ctx, r.ID, a.ID, &fa.ID)
	require.NoError(t, err)
	_, err = s.Residents().Allot(ctx, r.ID, b.ID, &fb.ID)
	require.NoError(t, err)

	got, err := s.Residents().Get(ctx, r.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{a.ID, b.ID}, addressIDs(got))
	require.NotNil(t, got.FloorID)
	assert.Equal(t, fb.ID, *got.FloorID)

	// Removing the address the floor does not belong to keeps the floor.
	require.NoError(t, s.Residents().Remove(ctx, r.ID, a.ID))
	got, err = s.Residents().Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, addressIDs(got))
	require.NotNil(t, got.FloorID)
	assert.Equal(t, fb.ID, *got.FloorID)
}

func TestAllot_FloorAppliedWhenAddressAlreadyHeld(t *testing.T) {
	ctx := context.Background()
	s, _ := newSQLiteStore(t)
	a := mustAddress(t, s, "12", model.BlockB, 5)
	f := mustFloor(t, s, a.ID, 4)
	r := mustResident(t, s, "Asha")

	_, err := s.Residents().Allot(ctx, r.ID, a.ID, nil)
	require.NoError(t, err)
	res, err := s.Residents().Allot(ctx, r.ID, a.ID, &f.ID)
	require.NoError(t, err)
	assert.False(t, res.AddressAttached)
	assert.True(t, res.FloorAssigned)
}

func TestAllot_NotFound(t *testing.T) {
	ctx := context.Background()
	s, _ := newSQLiteStore(t)
	a := mustAddress(t, s, "12", model.BlockB, 5)
	r := mustResident(t, s, "Asha")

	_, err := s.Residents().Allot(ctx, 999, a.ID, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Residents().Allot(ctx, r.ID, 999, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemove_NotAllottedMutatesNothing(t *testing.T) {
	ctx := context.Background()
	s, _ := newSQLiteStore(t)
	a := mustAddress(t, s, "12", model.BlockB, 5)
	b := mustAddress(t, s, "13", model.BlockB, 5)
	f := mustFloor(t, s, a.ID, 2)
	r := mustResident(t, s, "Asha")

	_, err := s.Residents().Allot(ctx, r.ID, a.ID, &f.ID)
	require.NoError(t, err)

	err = s.Residents().Remove(ctx, r.ID, b.ID)
	assert.ErrorIs(t, err, ErrNotAllotted)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.Residents().Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID}, addressIDs(got))
	require.NotNil(t, got.FloorID)
	assert.Equal(t, f.ID, *got.FloorID)

	assert.ErrorIs(t, s.Residents().Remove(ctx, 999, a.ID), ErrNotFound)
}

// Asha moves into floor 3 of 12/B and later leaves.
func TestAllotmentScenario(t *testing.T) {
	ctx := context.Background()
	s, _ := newSQLiteStore(t)

	a := mustAddress(t, s, "12", model.BlockB, 5)
	floor, err := s.Addresses().AddFloor(ctx, a.ID, FloorInput{FloorNumber: 3, IsOwner: true})
	require.NoError(t, err)
	asha := mustResident(t, s, "Asha")

	_, err = s.Residents().Allot(ctx, asha.ID, a.ID, &floor.ID)
	require.NoError(t, err)

	onFloor, err := s.Residents().ByFloor(ctx, floor.ID)
	require.NoError(t, err)
	require.Len(t, onFloor, 1)
	assert.Equal(t, "Asha", onFloor[0].Name)

	atAddress, err := s.Residents().ByAddress(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, atAddress, 1)

	rows, err := s.Residents().Allotments(ctx, AllotmentFilter{Block: model.BlockB})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, AllotmentRow{
		ResidentID: asha.ID, ResidentName: "Asha",
		AddressID: a.ID, AddressNumber: "12", Block: model.BlockB,
		FloorID: floor.ID, FloorNumber: 3,
	}, rows[0])

	require.NoError(t, s.Residents().Remove(ctx, asha.ID, a.ID))

	got, err := s.Residents().Get(ctx, asha.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FloorID)

	onFloor, err = s.Residents().ByFloor(ctx, floor.ID)
	require.NoError(t, err)
	assert.Empty(t, onFloor)
	atAddress, err = s.Residents().ByAddress(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, atAddress)
}

func TestByAddress_ActiveOnly(t *testing.T) {
	ctx := context.Background()
	s, _ := newSQLiteStore(t)
	a := mustAddress(t, s, "12", model.BlockB, 5)
	f := mustFloor(t, s, a.ID, 1)
	stay := mustResident(t, s, "Asha")
	leave := mustResident(t, s, "Ravi")

	for _, r := range []*model.Resident{stay, leave} {
		_, err := s.Residents().Allot(ctx, r.ID, a.ID, &f.ID)
		require.NoError(t, err)
	}
	_, err := s.Residents().Deactivate(ctx, leave.ID)
	require.NoError(t, err)

	got, err := s.Residents().ByAddress(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, stay.ID, got[0].ID)

	got, err = s.Residents().ByFloor(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, stay.ID, got[0].ID)

	rows, err := s.Residents().Allotments(ctx, AllotmentFilter{AddressNumber: "1"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
