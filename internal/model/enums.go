package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidValue is returned when a code does not name a known enum member.
var ErrInvalidValue = errors.New("invalid value")

// Category classifies what an address is used for.
type Category string

const (
	CategoryResidential    Category = "R"
	CategoryAdministrative Category = "A"
	CategoryAssistedLiving Category = "AS"
	CategoryPublicBuilding Category = "PB"
)

var categoryLabels = map[Category]string{
	CategoryResidential:    "Residential",
	CategoryAdministrative: "Administrative",
	CategoryAssistedLiving: "Assisted Living",
	CategoryPublicBuilding: "Public Building",
}

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{CategoryResidential, CategoryAdministrative, CategoryAssistedLiving, CategoryPublicBuilding}
}

// Label returns the human-readable name of the category.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// ParseCategory accepts a category code ("R", "AS") or label ("Assisted Living").
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for c, label := range categoryLabels {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, label) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrInvalidValue, s)
}

// Block is a named section of the property.
type Block string

const (
	BlockA Block = "A"
	BlockB Block = "B"
	BlockC Block = "C"
	BlockD Block = "D"
	BlockE Block = "E"
)

// Blocks lists every block in display order.
func Blocks() []Block {
	return []Block{BlockA, BlockB, BlockC, BlockD, BlockE}
}

// Label returns the block name.
func (b Block) Label() string { return string(b) }

// Valid reports whether b is a known block.
func (b Block) Valid() bool {
	switch b {
	case BlockA, BlockB, BlockC, BlockD, BlockE:
		return true
	}
	return false
}

// ParseBlock accepts "A" through "E", case-insensitively.
func ParseBlock(s string) (Block, error) {
	b := Block(strings.ToUpper(strings.TrimSpace(s)))
	if !b.Valid() {
		return "", fmt.Errorf("%w: unknown block %q", ErrInvalidValue, s)
	}
	return b, nil
}

// ChargeType distinguishes recurring from one-off charges.
type ChargeType string

const (
	ChargeMonthly    ChargeType = "MONTHLY"
	ChargeOccasional ChargeType = "OCCASIONAL"
)

// Label returns the human-readable name of the charge type.
func (t ChargeType) Label() string {
	switch t {
	case ChargeMonthly:
		return "Monthly"
	case ChargeOccasional:
		return "Occasional"
	}
	return string(t)
}

// Valid reports whether t is a known charge type code.
func (t ChargeType) Valid() bool {
	return t == ChargeMonthly || t == ChargeOccasional
}

// ParseChargeType accepts a code or label, case-insensitively.
func ParseChargeType(s string) (ChargeType, error) {
	s = strings.TrimSpace(s)
	for _, t := range []ChargeType{ChargeMonthly, ChargeOccasional} {
		if strings.EqualFold(s, string(t)) || strings.EqualFold(s, t.Label()) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown charge type %q", ErrInvalidValue, s)
}

// ComplaintStatus is the lifecycle stage of a complaint. Transitions between
// statuses are unconstrained.
type ComplaintStatus string

const (
	ComplaintPending    ComplaintStatus = "PENDING"
	ComplaintInProgress ComplaintStatus = "IN_PROGRESS"
	ComplaintResolved   ComplaintStatus = "RESOLVED"
	ComplaintClosed     ComplaintStatus = "CLOSED"
)

var complaintLabels = map[ComplaintStatus]string{
	ComplaintPending:    "Pending",
	ComplaintInProgress: "In Progress",
	ComplaintResolved:   "Resolved",
	ComplaintClosed:     "Closed",
}

// Label returns the human-readable name of the status.
func (s ComplaintStatus) Label() string {
	if l, ok := complaintLabels[s]; ok {
		return l
	}
	return string(s)
}

// Valid reports whether s is a known status code.
func (s ComplaintStatus) Valid() bool {
	_, ok := complaintLabels[s]
	return ok
}

// Open reports whether the complaint still needs attention.
func (s ComplaintStatus) Open() bool {
	return s == ComplaintPending || s == ComplaintInProgress
}

// ParseComplaintStatus accepts a code ("IN_PROGRESS") or label ("In Progress").
func ParseComplaintStatus(s string) (ComplaintStatus, error) {
	s = strings.TrimSpace(s)
	for st, label := range complaintLabels {
		if strings.EqualFold(s, string(st)) || strings.EqualFold(s, label) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown complaint status %q", ErrInvalidValue, s)
}
