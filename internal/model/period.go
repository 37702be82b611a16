package model

import "time"

const dateFormat = "2006-01-02"

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates t to its calendar day in UTC, keeping the wall-clock date.
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return Date(y, m, d)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateFormat, s, time.UTC)
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateFormat)
}

// Period is a fiscal period bounding valid document dates.
type Period struct {
	ID        int
	StartDate time.Time
	EndDate   time.Time
	Locked    bool
}

// ContainsDate reports whether d falls within [StartDate, EndDate], by calendar day.
func (p Period) ContainsDate(d time.Time) bool {
	d = DateOf(d)
	return !d.Before(DateOf(p.StartDate)) && !d.After(DateOf(p.EndDate))
}

func (p Period) Equal(o Period) bool {
	return p.ID == o.ID &&
		DateOf(p.StartDate).Equal(DateOf(o.StartDate)) &&
		DateOf(p.EndDate).Equal(DateOf(o.EndDate)) &&
		p.Locked == o.Locked
}

// Copy returns a copy with the identity cleared.
func (p Period) Copy() Period {
	p.ID = 0
	return p
}

// Validate checks the invariants enforced when the period is saved.
func (p Period) Validate() error {
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return invalid("period", "", "start and end dates are required")
	}
	if DateOf(p.StartDate).After(DateOf(p.EndDate)) {
		return invalid("period", "startDate", "%s is after end date %s",
			FormatDate(p.StartDate), FormatDate(p.EndDate))
	}
	return nil
}
