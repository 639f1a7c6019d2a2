package commission

import "wikenfarma-system/internal/database/models"

// lifecycleTransitions is the full compensation state machine:
// draft -> calculated -> approved -> paid, with rejection dropping an
// approved or calculated record back to draft. Paid is terminal; corrections
// go through an explicit reversal workflow outside this engine.
var lifecycleTransitions = map[string][]string{
	models.StatusDraft:      {models.StatusCalculated},
	models.StatusCalculated: {models.StatusApproved, models.StatusDraft},
	models.StatusApproved:   {models.StatusPaid, models.StatusDraft},
	models.StatusPaid:       {},
}

// ValidateTransition rejects any move the state machine does not allow,
// surfacing the current state to the caller.
func ValidateTransition(current, next string) error {
	allowed, ok := lifecycleTransitions[current]
	if !ok {
		return &StateError{Current: current, Attempted: next}
	}
	for _, s := range allowed {
		if s == next {
			return nil
		}
	}
	return &StateError{Current: current, Attempted: next}
}

// Recalculable reports whether a compensation in the given status may be
// overwritten without an explicit admin override. Approved records require
// force because recalculation invalidates the approval; paid records are
// never recalculated in place.
func Recalculable(status string, force bool) error {
	switch status {
	case models.StatusDraft, models.StatusCalculated:
		return nil
	case models.StatusApproved:
		if force {
			return nil
		}
		return &StateError{Current: status, Attempted: models.StatusCalculated}
	default:
		return &StateError{Current: status, Attempted: models.StatusCalculated}
	}
}
