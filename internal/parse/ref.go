// Package parse reads the short address references operators type, such as
// "B-12" or "B-12/3F".
package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"property-management-backend/internal/model"
)

var (
	refRe   = regexp.MustCompile(`(?i)^(?:block\s*)?([A-Z])\s*[-#\s]\s*([0-9A-Z]+)(?:\s*[/\s]\s*(.+))?$`)
	floorRe = regexp.MustCompile(`(?i)^(?:floor\s*)?(\d+)\s*F?$`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// AddressRef identifies an address by block and number, and optionally one of
// its floors. Floor is 0 when the reference names no floor.
type AddressRef struct {
	Block  model.Block
	Number string
	Floor  int
}

func (r AddressRef) String() string {
	if r.Floor == 0 {
		return fmt.Sprintf("%s-%s", r.Block, r.Number)
	}
	return fmt.Sprintf("%s-%s/%dF", r.Block, r.Number, r.Floor)
}

// ParseAddressRef accepts "B-12", "b 12", "Block B-12A/3F" and "B#12 floor 2".
func ParseAddressRef(raw string) (AddressRef, error) {
	s := strings.TrimSpace(spaceRe.ReplaceAllString(raw, " "))

	m := refRe.FindStringSubmatch(s)
	if m == nil {
		return AddressRef{}, fmt.Errorf("unable to parse address reference: %q", raw)
	}

	block, err := model.ParseBlock(m[1])
	if err != nil {
		return AddressRef{}, err
	}
	ref := AddressRef{Block: block, Number: strings.ToUpper(m[2])}

	if m[3] != "" {
		fm := floorRe.FindStringSubmatch(strings.TrimSpace(m[3]))
		if fm == nil {
			return AddressRef{}, fmt.Errorf("unable to parse floor from reference: %q", raw)
		}
		floor, err := strconv.Atoi(fm[1])
		if err != nil || floor < 1 {
			return AddressRef{}, fmt.Errorf("unable to parse floor from reference: %q", raw)
		}
		ref.Floor = floor
	}
	return ref, nil
}
