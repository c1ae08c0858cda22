package importer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-management-backend/internal/model"
	"property-management-backend/internal/store"
)

func TestReadCSV(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expected  []store.AddressInput
		wantLines []int
	}{
		{
			name:  "Valid rows",
			input: "category,number,row,block,total_floors\nR,12,1,B,5\nAssisted Living,7A,2,c,3\n",
			expected: []store.AddressInput{
				{Category: model.CategoryResidential, Number: "12", Row: "1", Block: model.BlockB, TotalFloors: 5},
				{Category: model.CategoryAssistedLiving, Number: "7A", Row: "2", Block: model.BlockC, TotalFloors: 3},
			},
		},
		{
			name:  "Columns in any order and blank lines",
			input: "block,total_floors,number,row,category\nA,2,1,1,PB\n,,,,\n",
			expected: []store.AddressInput{
				{Category: model.CategoryPublicBuilding, Number: "1", Row: "1", Block: model.BlockA, TotalFloors: 2},
			},
		},
		{
			name:      "Bad rows are all reported",
			input:     "category,number,row,block,total_floors\nX,1,1,A,1\nR,2,1,A,two\nR,3,1,Z,1\nR,4,1,A,0\n",
			wantLines: []int{2, 3, 4, 5},
		},
		{
			name:      "Missing column",
			input:     "category,number,row,block\nR,1,1,A\n",
			wantLines: []int{1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReadCSV(strings.NewReader(tc.input))
			if tc.wantLines != nil {
				require.Error(t, err)
				assert.Nil(t, got)
				assert.Equal(t, tc.wantLines, rowLines(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestReadCSV_InvalidEnumIsInvalidValue(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("category,number,row,block,total_floors\nQ,1,1,A,1\n"))
	assert.ErrorIs(t, err, model.ErrInvalidValue)
}

func TestXLSXRoundTrip(t *testing.T) {
	addresses := []model.Address{
		{Category: model.CategoryResidential, Number: "12", Row: "1", Block: model.BlockB, TotalFloors: 5},
		{Category: model.CategoryAdministrative, Number: "A-1", Row: "3", Block: model.BlockE, TotalFloors: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportXLSX(&buf, addresses))

	got, err := ReadXLSX(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, store.AddressInput{
		Category: model.CategoryResidential, Number: "12", Row: "1", Block: model.BlockB, TotalFloors: 5,
	}, got[0])
	assert.Equal(t, model.CategoryAdministrative, got[1].Category)
	assert.Equal(t, "A-1", got[1].Number)
}

func TestReadFile_Unsupported(t *testing.T) {
	_, err := ReadFile("addresses.json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

// rowLines collects the line numbers of every RowError joined into err.
func rowLines(err error) []int {
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}
	var lines []int
	for _, e := range errs {
		var re *RowError
		if errors.As(e, &re) {
			lines = append(lines, re.Line)
		}
	}
	return lines
}
