package model

import (
	"cmp"
	"slices"
)

// COAHeading is a chart-of-accounts section header. Level only drives
// display indentation.
type COAHeading struct {
	ID     int
	Number string
	Text   string
	Level  int
}

// Compare orders headings by number, then level.
func (h COAHeading) Compare(o COAHeading) int {
	if c := cmp.Compare(h.Number, o.Number); c != 0 {
		return c
	}
	return cmp.Compare(h.Level, o.Level)
}

func (h COAHeading) Equal(o COAHeading) bool {
	return h == o
}

// Copy returns a copy with the identity cleared.
func (h COAHeading) Copy() COAHeading {
	h.ID = 0
	return h
}

// Validate checks the invariants enforced when the heading is saved.
func (h COAHeading) Validate() error {
	if h.Level < 0 {
		return invalid("heading", "level", "must not be negative (%d)", h.Level)
	}
	return nil
}

// SortHeadings sorts headings in place by number and level.
func SortHeadings(headings []COAHeading) {
	slices.SortStableFunc(headings, COAHeading.Compare)
}
