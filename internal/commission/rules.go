package commission

import (
	"github.com/shopspring/decimal"

	"wikenfarma-system/internal/database/models"
)

type RuleKind int

const (
	// RuleEmployee pays the fixed salary only. No commission of any kind is
	// computed regardless of sales volume; sales figures feed the read-only
	// performance dashboard.
	RuleEmployee RuleKind = iota
	// RuleFreelancer pays fixed salary plus a per-source percentage on
	// IQVIA, WIKENSHIP and direct sales, subject to the monthly cut-off.
	RuleFreelancer
	// RuleCapoArea is RuleFreelancer plus an override percentage on the
	// commissions earned by supervised informatori in the same area.
	RuleCapoArea
)

// RuleSet is the tagged compensation variant selected once per calculation.
// Handlers and the calculator both branch on Kind, never on raw profile
// fields, so display and pay logic cannot drift apart.
type RuleSet struct {
	Kind             RuleKind
	FixedSalary      decimal.Decimal
	CommissionRate   decimal.Decimal
	CutOffAmount     decimal.Decimal
	TeamOverrideRate decimal.Decimal
}

func (r *RuleSet) Commissionable() bool {
	return r.Kind == RuleFreelancer || r.Kind == RuleCapoArea
}

// SelectRuleSet maps an informatore profile to its rule set. Unknown
// employment-type/role combinations and freelancer profiles missing their
// commission configuration are rejected; there is no silent default rule.
func SelectRuleSet(inf *models.Informatore) (*RuleSet, error) {
	if inf.Role != models.RoleInformatore && inf.Role != models.RoleCapoArea {
		return nil, &ValidationError{
			Field:  "role",
			Reason: "unknown role " + inf.Role + " for employment type " + inf.EmploymentType,
		}
	}

	fixedSalary, err := decimal.NewFromString(inf.FixedSalary)
	if err != nil {
		return nil, &ValidationError{Field: "fixed_salary", Reason: "not a valid amount: " + inf.FixedSalary}
	}

	switch inf.EmploymentType {
	case models.EmploymentEmployee:
		return &RuleSet{Kind: RuleEmployee, FixedSalary: fixedSalary}, nil

	case models.EmploymentFreelancer:
		if inf.CommissionRate == nil {
			return nil, &ValidationError{Field: "commission_rate", Reason: "freelancer profile has no commission percentage"}
		}
		rate, err := decimal.NewFromString(*inf.CommissionRate)
		if err != nil {
			return nil, &ValidationError{Field: "commission_rate", Reason: "not a valid percentage: " + *inf.CommissionRate}
		}

		// A nil cut-off means commission from the first euro.
		cutOff := decimal.Zero
		if inf.CutOffAmount != nil {
			cutOff, err = decimal.NewFromString(*inf.CutOffAmount)
			if err != nil {
				return nil, &ValidationError{Field: "cut_off_amount", Reason: "not a valid amount: " + *inf.CutOffAmount}
			}
		}

		rules := &RuleSet{
			Kind:           RuleFreelancer,
			FixedSalary:    fixedSalary,
			CommissionRate: rate,
			CutOffAmount:   cutOff,
		}

		if inf.Role == models.RoleCapoArea {
			if inf.TeamOverrideRate == nil {
				return nil, &ValidationError{Field: "team_override_rate", Reason: "capo_area profile has no team override percentage"}
			}
			override, err := decimal.NewFromString(*inf.TeamOverrideRate)
			if err != nil {
				return nil, &ValidationError{Field: "team_override_rate", Reason: "not a valid percentage: " + *inf.TeamOverrideRate}
			}
			rules.Kind = RuleCapoArea
			rules.TeamOverrideRate = override
		}
		return rules, nil

	default:
		return nil, &ValidationError{
			Field:  "employment_type",
			Reason: "unknown employment type " + inf.EmploymentType + " for role " + inf.Role,
		}
	}
}
