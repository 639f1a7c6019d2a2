package commission

import (
	"errors"
	"testing"
	"time"
)

func TestValidatePeriod(t *testing.T) {
	if err := ValidatePeriod(1, 2026); err != nil {
		t.Fatalf("January 2026 should be valid: %v", err)
	}
	if err := ValidatePeriod(12, 2026); err != nil {
		t.Fatalf("December 2026 should be valid: %v", err)
	}

	for _, bad := range [][2]int{{0, 2026}, {13, 2026}, {6, 1999}, {6, 2101}} {
		err := ValidatePeriod(bad[0], bad[1])
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("period %d/%d should fail with ValidationError, got %v", bad[0], bad[1], err)
		}
	}
}

func TestMonthsAvailable(t *testing.T) {
	cases := []struct {
		name  string
		hire  time.Time
		month int
		year  int
		want  int
	}{
		{"hired this month", time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), 6, 2026, 1},
		{"hired three months ago", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 5, 2026, 3},
		{"hired across a year boundary", time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), 2, 2026, 4},
		{"long tenure clamps to twelve", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 6, 2026, 12},
		{"hire date in the future clamps to one", time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), 6, 2026, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := monthsAvailable(tc.hire, tc.month, tc.year); got != tc.want {
				t.Fatalf("monthsAvailable = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestTrailingAverage(t *testing.T) {
	if got := TrailingAverage(dec("1200.00"), 12).StringFixed(2); got != "100.00" {
		t.Fatalf("trailing average = %s, want 100.00", got)
	}
	if got := TrailingAverage(dec("900.00"), 3).StringFixed(2); got != "300.00" {
		t.Fatalf("trailing average = %s, want 300.00", got)
	}
	// new hire with one partial month divides by one, never by zero
	if got := TrailingAverage(dec("500.00"), 0).StringFixed(2); got != "500.00" {
		t.Fatalf("trailing average = %s, want 500.00", got)
	}
}

func TestApplySourceTotals(t *testing.T) {
	breakdown := &RevenueBreakdown{}
	rows := []sourceTotal{
		{Source: "iqvia", Total: "1000.00"},
		{Source: "wikenship", Total: "250.00"},
		{Source: "gestline", Total: "100.00"},
		{Source: "direct_sales", Total: "50.00"},
	}
	if err := applySourceTotals(breakdown, rows); err != nil {
		t.Fatalf("applySourceTotals error: %v", err)
	}
	if got := breakdown.IqviaSales.StringFixed(2); got != "1000.00" {
		t.Fatalf("iqvia sales = %s, want 1000.00", got)
	}
	// gestline and direct_sales are one revenue stream
	if got := breakdown.DirectSales.StringFixed(2); got != "150.00" {
		t.Fatalf("direct sales = %s, want 150.00", got)
	}
	if got := breakdown.TotalSales.StringFixed(2); got != "1400.00" {
		t.Fatalf("total sales = %s, want 1400.00", got)
	}
}

// A corrupt amount column must fail the calculation, not silently understate
// sales.
func TestApplySourceTotals_MalformedAggregate(t *testing.T) {
	breakdown := &RevenueBreakdown{}
	rows := []sourceTotal{
		{Source: "iqvia", Total: "1000.00"},
		{Source: "wikenship", Total: "not-a-number"},
	}
	err := applySourceTotals(breakdown, rows)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for malformed aggregate, got %v", err)
	}
}

func TestParseAggregate(t *testing.T) {
	// empty means the query matched no rows
	total, err := parseAggregate("", "total_amount")
	if err != nil || !total.IsZero() {
		t.Fatalf("empty aggregate should be zero, got %s, %v", total, err)
	}
	if _, err := parseAggregate("12,5", "total_amount"); err == nil {
		t.Fatalf("expected error for malformed aggregate")
	}
}

func TestPeriodBounds(t *testing.T) {
	start, end := periodBounds(2, 2024)
	if !start.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected window start: %v", start)
	}
	// leap February: the half-open window ends on March 1st
	if !end.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected window end: %v", end)
	}

	start, end = periodBounds(12, 2026)
	if !end.Equal(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("December window must roll into the next year, got %v", end)
	}
	if end.Sub(start).Hours() != 31*24 {
		t.Fatalf("December window should span 31 days")
	}
}
