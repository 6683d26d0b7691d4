package valueobject

import "fmt"

// RiskLevel is an immutable value object classifying an IRS score.
type RiskLevel struct {
	value string
}

var (
	RiskLevelLow      = RiskLevel{value: "LOW"}
	RiskLevelMedium   = RiskLevel{value: "MEDIUM"}
	RiskLevelHigh     = RiskLevel{value: "HIGH"}
	RiskLevelCritical = RiskLevel{value: "CRITICAL"}
)

// IRS score thresholds for each risk band (inclusive lower bounds).
const (
	LowRiskMinScore    = 85
	MediumRiskMinScore = 70
	HighRiskMinScore   = 60
)

// RiskLevelFromString reconstructs a RiskLevel from its string representation.
func RiskLevelFromString(s string) (RiskLevel, error) {
	switch s {
	case "LOW":
		return RiskLevelLow, nil
	case "MEDIUM":
		return RiskLevelMedium, nil
	case "HIGH":
		return RiskLevelHigh, nil
	case "CRITICAL":
		return RiskLevelCritical, nil
	default:
		return RiskLevel{}, fmt.Errorf("invalid risk level: %s", s)
	}
}

// RiskLevelFromScore classifies an IRS final score. A negative score can only
// come from a broken caller and is reported as an error rather than clamped.
func RiskLevelFromScore(score int) (RiskLevel, error) {
	switch {
	case score < 0:
		return RiskLevel{}, fmt.Errorf("risk level: score cannot be negative: %d", score)
	case score >= LowRiskMinScore:
		return RiskLevelLow, nil
	case score >= MediumRiskMinScore:
		return RiskLevelMedium, nil
	case score >= HighRiskMinScore:
		return RiskLevelHigh, nil
	default:
		return RiskLevelCritical, nil
	}
}

// String returns the string representation.
func (r RiskLevel) String() string {
	return r.value
}

// Rank orders risk levels from worst (0, CRITICAL) to best (3, LOW).
func (r RiskLevel) Rank() int {
	switch r.value {
	case "LOW":
		return 3
	case "MEDIUM":
		return 2
	case "HIGH":
		return 1
	default:
		return 0
	}
}

// IsZero returns true if the RiskLevel has not been set.
func (r RiskLevel) IsZero() bool {
	return r.value == ""
}

// Equal checks equality with another RiskLevel.
func (r RiskLevel) Equal(other RiskLevel) bool {
	return r.value == other.value
}

// MarshalText implements encoding.TextMarshaler.
func (r RiskLevel) MarshalText() ([]byte, error) {
	return []byte(r.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RiskLevel) UnmarshalText(b []byte) error {
	parsed, err := RiskLevelFromString(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
