package utils

import (
	"fmt"
	"time"
)

// CycleID returns the weekly cycle identifier for t, e.g. "2026-W36".
// Matches and pairing eligibility are scoped to these identifiers.
func CycleID(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// PreviousCycleID returns the identifier of the week before t.
func PreviousCycleID(t time.Time) string {
	return CycleID(t.UTC().AddDate(0, 0, -7))
}
