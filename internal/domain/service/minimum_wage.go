package service

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CompanySize is the employer size band that sets the private-sector
// minimum wage.
type CompanySize string

const (
	CompanySizeLarge  CompanySize = "large"
	CompanySizeMedium CompanySize = "medium"
	CompanySizeSmall  CompanySize = "small"
	CompanySizeMicro  CompanySize = "micro"
)

// Monthly private-sector minimum wages in DOP by company size.
var minimumWages = map[CompanySize]decimal.Decimal{
	CompanySizeLarge:  decimal.NewFromInt(23000),
	CompanySizeMedium: decimal.NewFromInt(20500),
	CompanySizeSmall:  decimal.NewFromInt(18500),
	CompanySizeMicro:  decimal.NewFromInt(16000),
}

// ClassifyCompanySize maps an employee headcount to a size band. An unknown
// headcount is treated as a micro company.
func ClassifyCompanySize(employees *int) CompanySize {
	switch {
	case employees == nil:
		return CompanySizeMicro
	case *employees >= 500:
		return CompanySizeLarge
	case *employees >= 51:
		return CompanySizeMedium
	case *employees >= 11:
		return CompanySizeSmall
	default:
		return CompanySizeMicro
	}
}

// ParseCompanySize validates a size band name.
func ParseCompanySize(s string) (CompanySize, error) {
	size := CompanySize(s)
	if _, ok := minimumWages[size]; !ok {
		return "", fmt.Errorf("invalid company size: %q", s)
	}
	return size, nil
}

// MinimumWage returns the monthly minimum wage for a size band.
func MinimumWage(size CompanySize) (decimal.Decimal, error) {
	wage, ok := minimumWages[size]
	if !ok {
		return decimal.Zero, fmt.Errorf("no minimum wage for company size %q", size)
	}
	return wage, nil
}
