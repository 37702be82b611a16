package model

import "time"

// DocumentType groups documents under a numbering range. Ranges of different
// types are expected not to overlap; that is the caller's concern.
type DocumentType struct {
	ID          int
	Number      int // sequence number, display order
	Name        string
	NumberStart int
	NumberEnd   int
}

// IsInRange reports whether n belongs to the type's numbering range.
func (t DocumentType) IsInRange(n int) bool {
	return n >= t.NumberStart && n <= t.NumberEnd
}

func (t DocumentType) Equal(o DocumentType) bool {
	return t == o
}

// Copy returns a copy with the identity cleared.
func (t DocumentType) Copy() DocumentType {
	t.ID = 0
	return t
}

// Validate checks the invariants enforced when the type is saved.
func (t DocumentType) Validate() error {
	if t.NumberStart > t.NumberEnd {
		return invalid("documentType", "numberStart", "%d is greater than numberEnd %d", t.NumberStart, t.NumberEnd)
	}
	return nil
}

// NextDocumentNumber returns the next free number inside [start, end] given
// the current maximum used number in that range (0 when the range is empty).
// ok is false when the range is exhausted.
func NextDocumentNumber(start, end, currentMax int) (next int, ok bool) {
	next = max(start, currentMax+1)
	return next, next <= end
}

// Document is a journal voucher grouping entries. It belongs to exactly one
// period.
type Document struct {
	ID       int
	Number   int // unique within the period
	PeriodID int
	Date     time.Time
}

func (d Document) Equal(o Document) bool {
	return d.ID == o.ID &&
		d.Number == o.Number &&
		d.PeriodID == o.PeriodID &&
		DateOf(d.Date).Equal(DateOf(o.Date))
}

// Copy returns a copy with the identity cleared.
func (d Document) Copy() Document {
	d.ID = 0
	return d
}

// ValidateIn checks that the document may be stored within p.
func (d Document) ValidateIn(p Period) error {
	if d.PeriodID != p.ID {
		return invalid("document", "periodId", "document belongs to period %d, not %d", d.PeriodID, p.ID)
	}
	if !p.ContainsDate(d.Date) {
		return invalid("document", "date", "%s is outside period %s..%s",
			FormatDate(d.Date), FormatDate(p.StartDate), FormatDate(p.EndDate))
	}
	return CheckUnlocked(p)
}

// CheckUnlocked fails when p is locked against edits.
func CheckUnlocked(p Period) error {
	if p.Locked {
		return invalid("period", "locked", "period %s..%s is locked",
			FormatDate(p.StartDate), FormatDate(p.EndDate))
	}
	return nil
}
