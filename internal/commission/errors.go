package commission

import "fmt"

// ValidationError reports missing or inconsistent configuration: a malformed
// period, an unknown employment-type/role combination, or a freelancer
// profile without the fields the rules need. Calculation never proceeds with
// a substitute value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// ConflictError reports a concurrent calculation holding the period lock.
type ConflictError struct {
	InformatoreID int64
	Month         int
	Year          int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("compensation for informatore %d period %04d-%02d is locked by a concurrent calculation",
		e.InformatoreID, e.Year, e.Month)
}

// StateError reports a lifecycle transition attempted from the wrong status.
type StateError struct {
	Current   string
	Attempted string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot move compensation from %q to %q", e.Current, e.Attempted)
}

// NotFoundError reports an absent record. For dashboards an uncalculated
// period is expected, not exceptional.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}
