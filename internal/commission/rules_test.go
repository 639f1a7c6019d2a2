package commission

import (
	"errors"
	"testing"

	"wikenfarma-system/internal/database/models"
)

func strPtr(s string) *string {
	return &s
}

func freelancerProfile() *models.Informatore {
	return &models.Informatore{
		ID:             1,
		FirstName:      "Anna",
		LastName:       "Rossi",
		EmploymentType: models.EmploymentFreelancer,
		Role:           models.RoleInformatore,
		Area:           "Nord",
		FixedSalary:    "2000.00",
		CommissionRate: strPtr("15"),
		CutOffAmount:   strPtr("5000.00"),
	}
}

func TestSelectRuleSet_Employee(t *testing.T) {
	inf := &models.Informatore{
		EmploymentType: models.EmploymentEmployee,
		Role:           models.RoleInformatore,
		FixedSalary:    "2500.00",
	}
	rules, err := SelectRuleSet(inf)
	if err != nil {
		t.Fatalf("SelectRuleSet error: %v", err)
	}
	if rules.Kind != RuleEmployee {
		t.Fatalf("expected RuleEmployee, got %v", rules.Kind)
	}
	if rules.Commissionable() {
		t.Fatalf("employee rule set must not be commissionable")
	}
}

func TestSelectRuleSet_Freelancer(t *testing.T) {
	rules, err := SelectRuleSet(freelancerProfile())
	if err != nil {
		t.Fatalf("SelectRuleSet error: %v", err)
	}
	if rules.Kind != RuleFreelancer {
		t.Fatalf("expected RuleFreelancer, got %v", rules.Kind)
	}
	if rules.CommissionRate.String() != "15" {
		t.Fatalf("unexpected commission rate: %s", rules.CommissionRate)
	}
	if rules.CutOffAmount.String() != "5000" {
		t.Fatalf("unexpected cut-off: %s", rules.CutOffAmount)
	}
}

func TestSelectRuleSet_FreelancerWithoutRate(t *testing.T) {
	inf := freelancerProfile()
	inf.CommissionRate = nil
	_, err := SelectRuleSet(inf)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "commission_rate" {
		t.Fatalf("error should identify the missing field, got %q", verr.Field)
	}
}

func TestSelectRuleSet_NilCutOffMeansZero(t *testing.T) {
	inf := freelancerProfile()
	inf.CutOffAmount = nil
	rules, err := SelectRuleSet(inf)
	if err != nil {
		t.Fatalf("SelectRuleSet error: %v", err)
	}
	if !rules.CutOffAmount.IsZero() {
		t.Fatalf("nil cut-off should select zero, got %s", rules.CutOffAmount)
	}
}

func TestSelectRuleSet_CapoArea(t *testing.T) {
	inf := freelancerProfile()
	inf.Role = models.RoleCapoArea
	inf.TeamOverrideRate = strPtr("10")
	rules, err := SelectRuleSet(inf)
	if err != nil {
		t.Fatalf("SelectRuleSet error: %v", err)
	}
	if rules.Kind != RuleCapoArea {
		t.Fatalf("expected RuleCapoArea, got %v", rules.Kind)
	}
	if rules.TeamOverrideRate.String() != "10" {
		t.Fatalf("unexpected override rate: %s", rules.TeamOverrideRate)
	}
}

func TestSelectRuleSet_CapoAreaWithoutOverrideRate(t *testing.T) {
	inf := freelancerProfile()
	inf.Role = models.RoleCapoArea
	_, err := SelectRuleSet(inf)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "team_override_rate" {
		t.Fatalf("error should identify the missing field, got %q", verr.Field)
	}
}

func TestSelectRuleSet_UnknownCombinations(t *testing.T) {
	cases := []struct {
		name           string
		employmentType string
		role           string
	}{
		{"unknown employment type", "contractor", models.RoleInformatore},
		{"unknown role", models.EmploymentFreelancer, "supervisor"},
		{"both unknown", "intern", "boss"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inf := freelancerProfile()
			inf.EmploymentType = tc.employmentType
			inf.Role = tc.role
			_, err := SelectRuleSet(inf)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError for %s/%s, got %v", tc.employmentType, tc.role, err)
			}
		})
	}
}
