package commission

import (
	"errors"
	"testing"

	"wikenfarma-system/internal/database/models"
)

func TestValidateTransition_AllowedChain(t *testing.T) {
	chain := [][2]string{
		{models.StatusDraft, models.StatusCalculated},
		{models.StatusCalculated, models.StatusApproved},
		{models.StatusApproved, models.StatusPaid},
	}
	for _, step := range chain {
		if err := ValidateTransition(step[0], step[1]); err != nil {
			t.Fatalf("transition %s -> %s should be allowed: %v", step[0], step[1], err)
		}
	}
}

func TestValidateTransition_RejectionPaths(t *testing.T) {
	if err := ValidateTransition(models.StatusCalculated, models.StatusDraft); err != nil {
		t.Fatalf("calculated -> draft (rejection) should be allowed: %v", err)
	}
	if err := ValidateTransition(models.StatusApproved, models.StatusDraft); err != nil {
		t.Fatalf("approved -> draft (rejection) should be allowed: %v", err)
	}
}

func TestValidateTransition_SkippingStatesFails(t *testing.T) {
	cases := [][2]string{
		{models.StatusCalculated, models.StatusPaid},
		{models.StatusDraft, models.StatusApproved},
		{models.StatusDraft, models.StatusPaid},
	}
	for _, step := range cases {
		err := ValidateTransition(step[0], step[1])
		var serr *StateError
		if !errors.As(err, &serr) {
			t.Fatalf("transition %s -> %s should fail with StateError, got %v", step[0], step[1], err)
		}
		if serr.Current != step[0] || serr.Attempted != step[1] {
			t.Fatalf("StateError should carry the states: %+v", serr)
		}
	}
}

func TestValidateTransition_PaidIsTerminal(t *testing.T) {
	for _, next := range []string{
		models.StatusDraft, models.StatusCalculated, models.StatusApproved, models.StatusPaid,
	} {
		if err := ValidateTransition(models.StatusPaid, next); err == nil {
			t.Fatalf("paid -> %s should be rejected", next)
		}
	}
}

func TestValidateTransition_UnknownState(t *testing.T) {
	if err := ValidateTransition("archived", models.StatusCalculated); err == nil {
		t.Fatalf("unknown current state should be rejected")
	}
}

func TestRecalculable(t *testing.T) {
	if err := Recalculable(models.StatusDraft, false); err != nil {
		t.Fatalf("draft should be recalculable: %v", err)
	}
	if err := Recalculable(models.StatusCalculated, false); err != nil {
		t.Fatalf("calculated should be recalculable: %v", err)
	}

	err := Recalculable(models.StatusApproved, false)
	var serr *StateError
	if !errors.As(err, &serr) {
		t.Fatalf("approved without force should fail with StateError, got %v", err)
	}
	if err := Recalculable(models.StatusApproved, true); err != nil {
		t.Fatalf("approved with force should be recalculable: %v", err)
	}

	if err := Recalculable(models.StatusPaid, true); err == nil {
		t.Fatalf("paid must never be recalculated, even with force")
	}
}
