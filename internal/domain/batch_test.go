package domain

import (
	"testing"
	"time"
)

func TestDateRange_Validate(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2024, 12, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name    string
		r       DateRange
		wantErr error
	}{
		{
			name: "valid range",
			r:    DateRange{Start: day(1), End: day(7)},
		},
		{
			name: "single day",
			r:    DateRange{Start: day(3), End: day(3)},
		},
		{
			name:    "zero start",
			r:       DateRange{End: day(7)},
			wantErr: ErrEmptyDateRange,
		},
		{
			name:    "zero end",
			r:       DateRange{Start: day(1)},
			wantErr: ErrEmptyDateRange,
		},
		{
			name:    "inverted",
			r:       DateRange{Start: day(7), End: day(1)},
			wantErr: ErrInvalidDateRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDateRange_Days(t *testing.T) {
	r := DateRange{
		Start: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 12, 7, 0, 0, 0, 0, time.UTC),
	}
	if got := r.Days(); got != 7 {
		t.Errorf("Days() = %d, want 7", got)
	}
}

func TestNewBatchID(t *testing.T) {
	start := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 12, 8, 14, 30, 5, 0, time.UTC)

	got := NewBatchID(start, now)
	want := "MATCH_20241201_143005"
	if got != want {
		t.Errorf("NewBatchID() = %q, want %q", got, want)
	}
}
