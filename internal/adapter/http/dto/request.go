package dto

import (
	"fmt"
	"time"

	"github.com/iho/gorecon/internal/domain"
)

// dateLayout is the wire format for run date ranges.
const dateLayout = "2006-01-02"

// TriggerRunRequest represents a request to start a reconciliation run.
type TriggerRunRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// ToDateRange parses the request dates into a domain range. Format errors
// surface here; range ordering is validated by the run itself.
func (r *TriggerRunRequest) ToDateRange() (domain.DateRange, error) {
	start, err := time.Parse(dateLayout, r.StartDate)
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("invalid start_date %q: expected YYYY-MM-DD", r.StartDate)
	}
	end, err := time.Parse(dateLayout, r.EndDate)
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("invalid end_date %q: expected YYYY-MM-DD", r.EndDate)
	}

	return domain.DateRange{Start: start, End: end}, nil
}
