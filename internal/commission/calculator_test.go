package commission

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func defaultPolicy(t *testing.T) Policy {
	t.Helper()
	policy, err := NewPolicy("100.00", "5", 0, "0.00", "0")
	if err != nil {
		t.Fatalf("NewPolicy error: %v", err)
	}
	return policy
}

func freelancerRules(rate, cutOff string) *RuleSet {
	return &RuleSet{
		Kind:           RuleFreelancer,
		FixedSalary:    dec("2000.00"),
		CommissionRate: dec(rate),
		CutOffAmount:   dec(cutOff),
	}
}

func TestNewPolicy_RejectsMalformedAmounts(t *testing.T) {
	if _, err := NewPolicy("abc", "5", 0, "0.00", "0"); err == nil {
		t.Fatalf("expected error for malformed bonus amount")
	}
	if _, err := NewPolicy("100.00", "5", 0, "0.00", "many"); err == nil {
		t.Fatalf("expected error for malformed deduction rate")
	}
}

func TestCalculate_FreelancerWithCutOff(t *testing.T) {
	in := Input{
		Rules: freelancerRules("15", "5000.00"),
		Breakdown: RevenueBreakdown{
			IqviaSales:     dec("8000.00"),
			WikenshipSales: dec("2000.00"),
			DirectSales:    decimal.Zero,
			TotalSales:     dec("10000.00"),
		},
	}
	res, err := Calculate(in, defaultPolicy(t))
	if err != nil {
		t.Fatalf("Calculate error: %v", err)
	}

	if got := res.IqviaCommission.StringFixed(2); got != "1200.00" {
		t.Fatalf("iqvia commission = %s, want 1200.00", got)
	}
	if got := res.WikenshipCommission.StringFixed(2); got != "300.00" {
		t.Fatalf("wikenship commission = %s, want 300.00", got)
	}
	if got := res.CutOffReduction.StringFixed(2); got != "750.00" {
		t.Fatalf("cut-off reduction = %s, want 750.00", got)
	}
	if got := res.TotalGross.StringFixed(2); got != "2750.00" {
		t.Fatalf("total gross = %s, want 2750.00", got)
	}
	if got := res.TotalNet.StringFixed(2); got != "2750.00" {
		t.Fatalf("total net = %s, want 2750.00 with zero deduction", got)
	}
}

// Sales exactly at the cut-off earn nothing; a cent above earns on the cent.
func TestCalculate_CutOffBoundary(t *testing.T) {
	policy := defaultPolicy(t)

	atThreshold := Input{
		Rules: freelancerRules("15", "10000.00"),
		Breakdown: RevenueBreakdown{
			IqviaSales: dec("10000.00"),
			TotalSales: dec("10000.00"),
		},
	}
	res, err := Calculate(atThreshold, policy)
	if err != nil {
		t.Fatalf("Calculate error: %v", err)
	}
	if !res.PostCutOffCommission().IsZero() {
		t.Fatalf("sales at cut-off should earn zero commission, got %s", res.PostCutOffCommission())
	}

	justAbove := Input{
		Rules: freelancerRules("15", "10000.00"),
		Breakdown: RevenueBreakdown{
			IqviaSales: dec("10000.01"),
			TotalSales: dec("10000.01"),
		},
	}
	res, err = Calculate(justAbove, policy)
	if err != nil {
		t.Fatalf("Calculate error: %v", err)
	}
	want := dec("0.01").Mul(dec("15")).Div(oneHundred)
	if !res.PostCutOffCommission().Equal(want) {
		t.Fatalf("post-cutoff commission = %s, want %s", res.PostCutOffCommission(), want)
	}
}

func TestCalculate_GrossFloorsAtZero(t *testing.T) {
	in := Input{
		Rules: freelancerRules("15", "0"),
		Breakdown: RevenueBreakdown{
			TotalSales: decimal.Zero,
		},
		Adjustments: AdjustmentTotals{Malus: dec("99999.00")},
	}
	res, err := Calculate(in, defaultPolicy(t))
	if err != nil {
		t.Fatalf("Calculate error: %v", err)
	}
	if !res.TotalGross.IsZero() {
		t.Fatalf("total gross = %s, want 0 when penalties exceed earnings", res.TotalGross)
	}
	if !res.TotalNet.IsZero() {
		t.Fatalf("total net = %s, want 0", res.TotalNet)
	}
}

func TestCalculate_EmployeeEarnsFixedOnly(t *testing.T) {
	in := Input{
		Rules: &RuleSet{Kind: RuleEmployee, FixedSalary: dec("2500.00")},
		Breakdown: RevenueBreakdown{
			IqviaSales: dec("50000.00"),
			TotalSales: dec("50000.00"),
		},
		PrevMonthSales: dec("1000.00"),
		Orders: []OrderInput{
			{ID: 1, Amount: dec("50000.00"), Source: "iqvia"},
		},
	}
	res, err := Calculate(in, defaultPolicy(t))
	if err != nil {
		t.Fatalf("Calculate error: %v", err)
	}
	if !res.IqviaCommission.IsZero() || !res.WikenshipCommission.IsZero() || !res.DirectSalesCommission.IsZero() {
		t.Fatalf("employee must earn no commission: %s/%s/%s",
			res.IqviaCommission, res.WikenshipCommission, res.DirectSalesCommission)
	}
	if !res.PerformanceBonus.IsZero() {
		t.Fatalf("employee must not receive the growth bonus, got %s", res.PerformanceBonus)
	}
	if len(res.Logs) != 0 {
		t.Fatalf("employee compensation must carry no commission logs, got %d", len(res.Logs))
	}
	if got := res.TotalGross.StringFixed(2); got != "2500.00" {
		t.Fatalf("total gross = %s, want 2500.00", got)
	}
}

func TestCalculate_GrowthBonus(t *testing.T) {
	policy := defaultPolicy(t)

	cases := []struct {
		name      string
		prev      string
		current   string
		wantBonus string
	}{
		{"exactly at threshold", "1000.00", "1050.00", "100.00"},
		{"above threshold", "1000.00", "1200.00", "100.00"},
		{"below threshold", "1000.00", "1049.99", "0.00"},
		{"no previous month", "0", "1050.00", "0.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := Input{
				Rules: freelancerRules("15", "0"),
				Breakdown: RevenueBreakdown{
					IqviaSales: dec(tc.current),
					TotalSales: dec(tc.current),
				},
				PrevMonthSales: dec(tc.prev),
			}
			res, err := Calculate(in, policy)
			if err != nil {
				t.Fatalf("Calculate error: %v", err)
			}
			if got := res.PerformanceBonus.StringFixed(2); got != tc.wantBonus {
				t.Fatalf("performance bonus = %s, want %s", got, tc.wantBonus)
			}
		})
	}
}

func TestCalculate_VisitPenalty(t *testing.T) {
	policy, err := NewPolicy("100.00", "5", 10, "150.00", "0")
	if err != nil {
		t.Fatalf("NewPolicy error: %v", err)
	}

	in := Input{
		Rules:     freelancerRules("15", "0"),
		Breakdown: RevenueBreakdown{MonthlyVisits: 6},
	}
	res, err := Calculate(in, policy)
	if err != nil {
		t.Fatalf("Calculate error: %v", err)
	}
	if got := res.VisitPenalty.StringFixed(2); got != "150.00" {
		t.Fatalf("visit penalty = %s, want 150.00", got)
	}

	in.Breakdown.MonthlyVisits = 10
	res, err = Calculate(in, policy)
	if err != nil {
		t.Fatalf("Calculate error: %v", err)
	}
	if !res.VisitPenalty.IsZero() {
		t.Fatalf("visit penalty = %s, want 0 at the minimum", res.VisitPenalty)
	}
}

func TestCalculate_CapoAreaTeamCommission(t *testing.T) {
	in := Input{
		Rules: &RuleSet{
			Kind:             RuleCapoArea,
			FixedSalary:      dec("2000.00"),
			CommissionRate:   dec("15"),
			CutOffAmount:     dec("5000.00"),
			TeamOverrideRate: dec("10"),
		},
		Breakdown: RevenueBreakdown{
			IqviaSales: dec("8000.00"),
			TotalSales: dec("8000.00"),
		},
		TeamCommissionBase: dec("1200.00"),
	}
	res, err := Calculate(in, defaultPolicy(t))
	if err != nil {
		t.Fatalf("Calculate error: %v", err)
	}
	if got := res.TeamCommission.StringFixed(2); got != "120.00" {
		t.Fatalf("team commission = %s, want 120.00", got)
	}
	// own sales still follow the freelancer branch
	if got := res.IqviaCommission.StringFixed(2); got != "1200.00" {
		t.Fatalf("iqvia commission = %s, want 1200.00", got)
	}
	if got := res.CutOffReduction.StringFixed(2); got != "750.00" {
		t.Fatalf("cut-off reduction = %s, want 750.00", got)
	}
}

func TestCalculate_NetDeduction(t *testing.T) {
	policy, err := NewPolicy("100.00", "5", 0, "0.00", "20")
	if err != nil {
		t.Fatalf("NewPolicy error: %v", err)
	}
	in := Input{
		Rules:     &RuleSet{Kind: RuleEmployee, FixedSalary: dec("1000.00")},
		Breakdown: RevenueBreakdown{},
	}
	res, err := Calculate(in, policy)
	if err != nil {
		t.Fatalf("Calculate error: %v", err)
	}
	if got := res.TotalNet.StringFixed(2); got != "800.00" {
		t.Fatalf("total net = %s, want 800.00 at 20%% deduction", got)
	}
}

// Recalculating from the same inputs must reproduce the result exactly.
func TestCalculate_Deterministic(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	in := Input{
		Rules: freelancerRules("12.5", "3000.00"),
		Breakdown: RevenueBreakdown{
			IqviaSales:     dec("4000.00"),
			WikenshipSales: dec("1500.00"),
			DirectSales:    dec("700.00"),
			TotalSales:     dec("6200.00"),
			MonthlyVisits:  8,
		},
		PrevMonthSales: dec("5500.00"),
		Orders: []OrderInput{
			{ID: 3, Date: day, Amount: dec("4000.00"), Source: "iqvia"},
			{ID: 7, Date: day.AddDate(0, 0, 5), Amount: dec("1500.00"), Source: "wikenship"},
			{ID: 9, Date: day.AddDate(0, 0, 9), Amount: dec("700.00"), Source: "direct_sales"},
		},
		Adjustments: AdjustmentTotals{Bonus: dec("50.00"), Malus: dec("25.00")},
	}
	policy := defaultPolicy(t)

	first, err := Calculate(in, policy)
	if err != nil {
		t.Fatalf("Calculate error: %v", err)
	}
	second, err := Calculate(in, policy)
	if err != nil {
		t.Fatalf("Calculate error: %v", err)
	}

	if !first.TotalGross.Equal(second.TotalGross) || !first.TotalNet.Equal(second.TotalNet) {
		t.Fatalf("totals differ between runs: %s/%s vs %s/%s",
			first.TotalGross, first.TotalNet, second.TotalGross, second.TotalNet)
	}
	if len(first.Logs) != len(second.Logs) {
		t.Fatalf("log counts differ: %d vs %d", len(first.Logs), len(second.Logs))
	}
	for i := range first.Logs {
		if first.Logs[i].OrderID != second.Logs[i].OrderID ||
			!first.Logs[i].CommissionAmount.Equal(second.Logs[i].CommissionAmount) ||
			!first.Logs[i].CutOffAmount.Equal(second.Logs[i].CutOffAmount) {
			t.Fatalf("log %d differs between runs", i)
		}
	}
}

// The audit logs must reconcile against the commission columns: the log
// commissions sum to the pre-cutoff total and the log cut-off slices sum to
// the reduction.
func TestCalculate_LogsReconcile(t *testing.T) {
	day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	in := Input{
		Rules: freelancerRules("15", "5000.00"),
		Breakdown: RevenueBreakdown{
			IqviaSales:     dec("8000.00"),
			WikenshipSales: dec("2000.00"),
			TotalSales:     dec("10000.00"),
		},
		Orders: []OrderInput{
			{ID: 1, Date: day, Amount: dec("3000.00"), Source: "iqvia"},
			{ID: 2, Date: day.AddDate(0, 0, 3), Amount: dec("5000.00"), Source: "iqvia"},
			{ID: 3, Date: day.AddDate(0, 0, 12), Amount: dec("2000.00"), Source: "wikenship"},
		},
	}
	res, err := Calculate(in, defaultPolicy(t))
	if err != nil {
		t.Fatalf("Calculate error: %v", err)
	}

	logCommission := decimal.Zero
	logCutOff := decimal.Zero
	for _, entry := range res.Logs {
		logCommission = logCommission.Add(entry.CommissionAmount)
		logCutOff = logCutOff.Add(entry.CutOffAmount)
	}

	preCutOff := res.IqviaCommission.Add(res.WikenshipCommission).Add(res.DirectSalesCommission)
	if !logCommission.Equal(preCutOff) {
		t.Fatalf("log commissions sum to %s, commission columns sum to %s", logCommission, preCutOff)
	}
	if !logCutOff.Equal(res.CutOffReduction) {
		t.Fatalf("log cut-off sums to %s, reduction is %s", logCutOff, res.CutOffReduction)
	}
}

func TestCalculate_NilRules(t *testing.T) {
	if _, err := Calculate(Input{}, defaultPolicy(t)); err == nil {
		t.Fatalf("expected error for missing rule set")
	}
}
