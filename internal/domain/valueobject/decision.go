package valueobject

import "fmt"

// Decision is the final underwriting outcome for an application.
type Decision struct {
	value string
}

var (
	DecisionApproved              = Decision{value: "APPROVED"}
	DecisionApprovedPendingReview = Decision{value: "APPROVED_PENDING_REVIEW"}
	DecisionManualReview          = Decision{value: "MANUAL_REVIEW"}
	DecisionRejected              = Decision{value: "REJECTED"}
)

// DecisionFromString reconstructs a Decision from its string representation.
func DecisionFromString(s string) (Decision, error) {
	switch s {
	case "APPROVED":
		return DecisionApproved, nil
	case "APPROVED_PENDING_REVIEW":
		return DecisionApprovedPendingReview, nil
	case "MANUAL_REVIEW":
		return DecisionManualReview, nil
	case "REJECTED":
		return DecisionRejected, nil
	default:
		return Decision{}, fmt.Errorf("invalid decision: %s", s)
	}
}

// String returns the string representation.
func (d Decision) String() string {
	return d.value
}

// RequiresHumanReview reports whether an underwriter must look at the
// application before funds are released.
func (d Decision) RequiresHumanReview() bool {
	return d == DecisionManualReview || d == DecisionApprovedPendingReview
}

// IsZero returns true if the Decision has not been set.
func (d Decision) IsZero() bool {
	return d.value == ""
}

// Equal checks equality with another Decision.
func (d Decision) Equal(other Decision) bool {
	return d.value == other.value
}

// MarshalText implements encoding.TextMarshaler.
func (d Decision) MarshalText() ([]byte, error) {
	return []byte(d.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Decision) UnmarshalText(b []byte) error {
	parsed, err := DecisionFromString(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
