package parse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"property-management-backend/internal/model"
)

func TestParseAddressRef(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  AddressRef
		expectErr bool
	}{
		{
			name:     "Block and number",
			raw:      "B-12",
			expected: AddressRef{Block: model.BlockB, Number: "12"},
		},
		{
			name:     "Lower case with space",
			raw:      "c 7a",
			expected: AddressRef{Block: model.BlockC, Number: "7A"},
		},
		{
			name:     "Floor suffix",
			raw:      "B-12/3F",
			expected: AddressRef{Block: model.BlockB, Number: "12", Floor: 3},
		},
		{
			name:     "Spelled out",
			raw:      "Block  D#40 floor 2",
			expected: AddressRef{Block: model.BlockD, Number: "40", Floor: 2},
		},
		{
			name:     "Bare floor number",
			raw:      "A-1/4",
			expected: AddressRef{Block: model.BlockA, Number: "1", Floor: 4},
		},
		{
			name:      "Unknown block",
			raw:       "Z-12",
			expectErr: true,
		},
		{
			name:      "No number",
			raw:       "B",
			expectErr: true,
		},
		{
			name:      "Ground floor is not a floor",
			raw:       "B-12/0F",
			expectErr: true,
		},
		{
			name:      "Garbage floor",
			raw:       "B-12/roof",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAddressRef(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestParseAddressRef_UnknownBlockIsInvalidValue(t *testing.T) {
	_, err := ParseAddressRef("Q-1")
	assert.True(t, errors.Is(err, model.ErrInvalidValue))
}

func TestAddressRef_String(t *testing.T) {
	assert.Equal(t, "B-12", AddressRef{Block: model.BlockB, Number: "12"}.String())
	assert.Equal(t, "B-12/3F", AddressRef{Block: model.BlockB, Number: "12", Floor: 3}.String())
}
