// Package importer reads address batches from CSV or XLSX files and writes
// address listings back out as workbooks.
package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"property-management-backend/internal/model"
	"property-management-backend/internal/store"
)

// Columns is the header every import file must carry, in any order.
var Columns = []string{"category", "number", "row", "block", "total_floors"}

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// RowError reports a problem with one line of an import file. Line is
// 1-based and counts the header.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// ReadFile picks the reader by file extension.
func ReadFile(path string) ([]store.AddressInput, error) {
	if err := checkExt(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(path, f)
}

// Read parses r as CSV or XLSX according to the extension of name.
func Read(name string, r io.Reader) ([]store.AddressInput, error) {
	if err := checkExt(name); err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return ReadCSV(r)
	}
	return ReadXLSX(r)
}

func checkExt(name string) error {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv", ".xlsx":
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// headerIndex maps each required column to its position.
func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, c := range Columns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &RowError{Line: 1, Err: fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))}
	}
	return idx, nil
}

// parseRows turns data rows into inputs. Every bad row is reported; nothing
// is returned unless all rows parse.
func parseRows(header []string, rows [][]string) ([]store.AddressInput, error) {
	idx, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	var (
		inputs []store.AddressInput
		errs   []error
	)
	for i, row := range rows {
		line := i + 2
		if blank(row) {
			continue
		}
		in, err := parseRow(idx, row)
		if err != nil {
			errs = append(errs, &RowError{Line: line, Err: err})
			continue
		}
		inputs = append(inputs, in)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return inputs, nil
}

func parseRow(idx map[string]int, row []string) (store.AddressInput, error) {
	cell := func(name string) string {
		if i := idx[name]; i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	var in store.AddressInput
	category, err := model.ParseCategory(cell("category"))
	if err != nil {
		return in, err
	}
	block, err := model.ParseBlock(cell("block"))
	if err != nil {
		return in, err
	}
	floors, err := strconv.Atoi(cell("total_floors"))
	if err != nil {
		return in, fmt.Errorf("total_floors %q is not an integer", cell("total_floors"))
	}
	if floors < 1 {
		return in, fmt.Errorf("total_floors must be at least 1, got %d", floors)
	}
	in = store.AddressInput{
		Category:    category,
		Number:      cell("number"),
		Row:         cell("row"),
		Block:       block,
		TotalFloors: floors,
	}
	if in.Number == "" {
		return in, errors.New("number is empty")
	}
	if in.Row == "" {
		return in, errors.New("row is empty")
	}
	return in, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
