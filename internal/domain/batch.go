package domain

import (
	"fmt"
	"time"
)

// DateRange frames one reconciliation run. Both bounds are inclusive and
// interpreted as calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Validate checks the range before a run starts. An invalid range is a
// configuration fault: the run must fail before any matching.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return ErrEmptyDateRange
	}
	if r.End.Before(r.Start) {
		return ErrInvalidDateRange
	}
	return nil
}

// Days returns the number of calendar days covered, inclusive.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// NewBatchID builds the unique per-run batch identifier, MATCH_<yyyyMMdd>_<HHmmss>.
// The date part comes from the range start, the time part from the wall clock,
// matching how downstream systems key reconciliation runs.
func NewBatchID(rangeStart, now time.Time) string {
	return fmt.Sprintf("MATCH_%s_%s", rangeStart.Format("20060102"), now.Format("150405"))
}
