package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/riskcore/internal/domain/service"
)

func TestClassifyCompanySize(t *testing.T) {
	n := func(i int) *int { return &i }

	tests := []struct {
		employees *int
		want      service.CompanySize
	}{
		{nil, service.CompanySizeMicro},
		{n(5), service.CompanySizeMicro},
		{n(11), service.CompanySizeSmall},
		{n(50), service.CompanySizeSmall},
		{n(51), service.CompanySizeMedium},
		{n(499), service.CompanySizeMedium},
		{n(500), service.CompanySizeLarge},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, service.ClassifyCompanySize(tt.employees))
	}
}

func TestMinimumWage(t *testing.T) {
	size, err := service.ParseCompanySize("medium")
	require.NoError(t, err)

	wage, err := service.MinimumWage(size)
	require.NoError(t, err)
	assert.True(t, wage.Equal(dec("20500")))

	_, err = service.ParseCompanySize("huge")
	assert.Error(t, err)

	_, err = service.MinimumWage(service.CompanySize("huge"))
	assert.Error(t, err)
}
