package valueobject

import "fmt"

// Variable is one of the five weighted IRS scoring dimensions.
type Variable struct {
	value      string
	allocation int
}

var (
	VariableCreditHistory   = Variable{value: "credit_history", allocation: 25}
	VariablePaymentCapacity = Variable{value: "payment_capacity", allocation: 25}
	VariableStability       = Variable{value: "stability", allocation: 15}
	VariableCollateral      = Variable{value: "collateral", allocation: 15}
	VariablePaymentMorality = Variable{value: "payment_morality", allocation: 20}
)

// Variables lists every scoring dimension in evaluation order (A through E).
func Variables() []Variable {
	return []Variable{
		VariableCreditHistory,
		VariablePaymentCapacity,
		VariableStability,
		VariableCollateral,
		VariablePaymentMorality,
	}
}

// VariableFromString reconstructs a Variable from its string representation.
func VariableFromString(s string) (Variable, error) {
	for _, v := range Variables() {
		if v.value == s {
			return v, nil
		}
	}
	return Variable{}, fmt.Errorf("invalid scoring variable: %s", s)
}

// String returns the string representation.
func (v Variable) String() string {
	return v.value
}

// Allocation returns the maximum points this variable contributes to the
// base score of 100.
func (v Variable) Allocation() int {
	return v.allocation
}

// IsZero returns true if the Variable has not been set.
func (v Variable) IsZero() bool {
	return v.value == ""
}

// Equal checks equality with another Variable.
func (v Variable) Equal(other Variable) bool {
	return v.value == other.value
}

// MarshalText implements encoding.TextMarshaler.
func (v Variable) MarshalText() ([]byte, error) {
	return []byte(v.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variable) UnmarshalText(b []byte) error {
	parsed, err := VariableFromString(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
