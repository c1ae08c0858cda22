package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"property-management-backend/internal/store"
)

// ReadCSV parses a comma separated address file with a header row.
func ReadCSV(r io.Reader) ([]store.AddressInput, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, &RowError{Line: pe.Line, Err: pe.Err}
		}
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, &RowError{Line: 1, Err: errors.New("empty file")}
	}
	return parseRows(records[0], records[1:])
}
