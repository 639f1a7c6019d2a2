package commission

import (
	"github.com/shopspring/decimal"
)

// Policy carries the business-configured bonus/penalty/deduction rules. The
// growth bonus and visit penalty are policy, not engine constants.
type Policy struct {
	// Flat bonus granted when month-over-month sales growth reaches
	// GrowthBonusThreshold percent.
	PerformanceBonusAmount decimal.Decimal
	GrowthBonusThreshold   decimal.Decimal
	// Penalty applied when monthly visits fall below MinMonthlyVisits.
	// MinMonthlyVisits == 0 disables the rule.
	MinMonthlyVisits   int
	VisitPenaltyAmount decimal.Decimal
	// Flat percentage taken off totalGross to produce totalNet. Statutory
	// detail lives outside this system.
	NetDeductionRate decimal.Decimal
}

func NewPolicy(bonusAmount, growthThreshold string, minVisits int, penaltyAmount, deductionRate string) (Policy, error) {
	bonus, err := decimal.NewFromString(bonusAmount)
	if err != nil {
		return Policy{}, &ValidationError{Field: "performance_bonus_amount", Reason: "not a valid amount: " + bonusAmount}
	}
	growth, err := decimal.NewFromString(growthThreshold)
	if err != nil {
		return Policy{}, &ValidationError{Field: "growth_bonus_threshold", Reason: "not a valid percentage: " + growthThreshold}
	}
	penalty, err := decimal.NewFromString(penaltyAmount)
	if err != nil {
		return Policy{}, &ValidationError{Field: "visit_penalty_amount", Reason: "not a valid amount: " + penaltyAmount}
	}
	deduction, err := decimal.NewFromString(deductionRate)
	if err != nil {
		return Policy{}, &ValidationError{Field: "net_deduction_rate", Reason: "not a valid percentage: " + deductionRate}
	}
	return Policy{
		PerformanceBonusAmount: bonus,
		GrowthBonusThreshold:   growth,
		MinMonthlyVisits:       minVisits,
		VisitPenaltyAmount:     penalty,
		NetDeductionRate:       deduction,
	}, nil
}

// AdjustmentTotals aggregates the admin-entered BonusMalus rows for a
// period: positive amounts feed the bonus side, negative amounts the
// penalty side.
type AdjustmentTotals struct {
	Bonus decimal.Decimal
	Malus decimal.Decimal
}

// Input is everything one compensation needs, already loaded. Keeping the
// calculator free of storage makes recalculation trivially deterministic.
type Input struct {
	Rules     *RuleSet
	Breakdown RevenueBreakdown
	Orders    []OrderInput
	// Total sales of the previous calendar month, growth-bonus basis.
	PrevMonthSales decimal.Decimal
	Adjustments    AdjustmentTotals
	// Sum of post-cutoff commissions earned by supervised informatori this
	// period. Zero unless Rules.Kind is RuleCapoArea.
	TeamCommissionBase decimal.Decimal
}

type Result struct {
	FixedSalary           decimal.Decimal
	IqviaCommission       decimal.Decimal
	WikenshipCommission   decimal.Decimal
	DirectSalesCommission decimal.Decimal
	PerformanceBonus      decimal.Decimal
	VisitPenalty          decimal.Decimal
	CutOffReduction       decimal.Decimal
	TeamCommission        decimal.Decimal
	TotalGross            decimal.Decimal
	TotalNet              decimal.Decimal
	Logs                  []LogEntry
}

// Calculate produces one compensation from the selected rule set. Per-source
// commissions are kept pre-cutoff with the reduction carried separately, so
// totalGross = fixed + commissions + bonus + team - penalty - reduction and
// the audit logs reconcile against the commission columns.
func Calculate(in Input, policy Policy) (*Result, error) {
	if in.Rules == nil {
		return nil, &ValidationError{Field: "rules", Reason: "no rule set selected"}
	}

	res := &Result{
		FixedSalary:           in.Rules.FixedSalary,
		IqviaCommission:       decimal.Zero,
		WikenshipCommission:   decimal.Zero,
		DirectSalesCommission: decimal.Zero,
		PerformanceBonus:      in.Adjustments.Bonus,
		VisitPenalty:          in.Adjustments.Malus,
		CutOffReduction:       decimal.Zero,
		TeamCommission:        decimal.Zero,
	}

	if in.Rules.Commissionable() {
		rate := in.Rules.CommissionRate
		res.IqviaCommission = in.Breakdown.IqviaSales.Mul(rate).Div(oneHundred)
		res.WikenshipCommission = in.Breakdown.WikenshipSales.Mul(rate).Div(oneHundred)
		res.DirectSalesCommission = in.Breakdown.DirectSales.Mul(rate).Div(oneHundred)

		// Sales at or below the cut-off earn nothing; only the excess is
		// commissionable. The reduction is cutOff x rate capped at the
		// pre-cutoff commission total, recorded explicitly rather than
		// silently omitted.
		commissionableSales := in.Breakdown.IqviaSales.
			Add(in.Breakdown.WikenshipSales).
			Add(in.Breakdown.DirectSales)
		res.CutOffReduction = decimal.Min(in.Rules.CutOffAmount, commissionableSales).Mul(rate).Div(oneHundred)

		if in.PrevMonthSales.GreaterThan(decimal.Zero) {
			growth := in.Breakdown.TotalSales.Sub(in.PrevMonthSales).
				Div(in.PrevMonthSales).Mul(oneHundred)
			if growth.GreaterThanOrEqual(policy.GrowthBonusThreshold) {
				res.PerformanceBonus = res.PerformanceBonus.Add(policy.PerformanceBonusAmount)
			}
		}

		if policy.MinMonthlyVisits > 0 && in.Breakdown.MonthlyVisits < policy.MinMonthlyVisits {
			res.VisitPenalty = res.VisitPenalty.Add(policy.VisitPenaltyAmount)
		}

		res.Logs = BuildLogs(in.Orders, rate, in.Rules.CutOffAmount)
	}

	if in.Rules.Kind == RuleCapoArea {
		res.TeamCommission = in.TeamCommissionBase.Mul(in.Rules.TeamOverrideRate).Div(oneHundred)
	}

	gross := res.FixedSalary.
		Add(res.IqviaCommission).
		Add(res.WikenshipCommission).
		Add(res.DirectSalesCommission).
		Add(res.PerformanceBonus).
		Add(res.TeamCommission).
		Sub(res.VisitPenalty).
		Sub(res.CutOffReduction)
	if gross.LessThan(decimal.Zero) {
		gross = decimal.Zero
	}
	res.TotalGross = gross
	res.TotalNet = gross.Mul(oneHundred.Sub(policy.NetDeductionRate)).Div(oneHundred)

	return res, nil
}

// PostCutOffCommission is the commission actually paid on sales for one
// computed result, the team-override base for a supervising capo_area.
func (r *Result) PostCutOffCommission() decimal.Decimal {
	earned := r.IqviaCommission.
		Add(r.WikenshipCommission).
		Add(r.DirectSalesCommission).
		Sub(r.CutOffReduction)
	if earned.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return earned
}
