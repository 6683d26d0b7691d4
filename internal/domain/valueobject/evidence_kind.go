package valueobject

import "fmt"

// EvidenceKind tags a behavioural risk flag raised by bank-statement analysis
// so downstream scoring can match on the kind instead of on display text.
type EvidenceKind struct {
	value string
}

var (
	EvidenceFastWithdrawal      = EvidenceKind{value: "FAST_WITHDRAWAL"}
	EvidenceInformalLender      = EvidenceKind{value: "INFORMAL_LENDER"}
	EvidenceNSFOverdraft        = EvidenceKind{value: "NSF_OVERDRAFT"}
	EvidenceSalaryInconsistency = EvidenceKind{value: "SALARY_INCONSISTENCY"}
	EvidenceHiddenAccounts      = EvidenceKind{value: "MULTIPLE_HIDDEN_ACCOUNTS"}
)

// EvidenceKindFromString reconstructs an EvidenceKind from its string representation.
func EvidenceKindFromString(s string) (EvidenceKind, error) {
	switch s {
	case "FAST_WITHDRAWAL":
		return EvidenceFastWithdrawal, nil
	case "INFORMAL_LENDER":
		return EvidenceInformalLender, nil
	case "NSF_OVERDRAFT":
		return EvidenceNSFOverdraft, nil
	case "SALARY_INCONSISTENCY":
		return EvidenceSalaryInconsistency, nil
	case "MULTIPLE_HIDDEN_ACCOUNTS":
		return EvidenceHiddenAccounts, nil
	default:
		return EvidenceKind{}, fmt.Errorf("invalid evidence kind: %s", s)
	}
}

// String returns the string representation.
func (k EvidenceKind) String() string {
	return k.value
}

// IsZero returns true if the EvidenceKind has not been set.
func (k EvidenceKind) IsZero() bool {
	return k.value == ""
}

// Equal checks equality with another EvidenceKind.
func (k EvidenceKind) Equal(other EvidenceKind) bool {
	return k.value == other.value
}

// MarshalText implements encoding.TextMarshaler.
func (k EvidenceKind) MarshalText() ([]byte, error) {
	return []byte(k.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EvidenceKind) UnmarshalText(b []byte) error {
	parsed, err := EvidenceKindFromString(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
