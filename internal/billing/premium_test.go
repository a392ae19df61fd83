package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perilwatch/internal/types"
)

func TestMonthlyPremium(t *testing.T) {
	tests := []struct {
		name           string
		coverage       types.CoverageType
		crop           string
		farmSize       float64
		coverageAmount float64
		want           float64
	}{
		{
			name:           "flood corn midsize farm",
			coverage:       types.CoverageFlood,
			crop:           "corn",
			farmSize:       50,
			coverageAmount: 10000,
			// 10000*0.02/12 = 16.67 base, size factor 0.5 adds 5%.
			want: 17.50,
		},
		{
			name:           "drought wheat size factor capped at 2",
			coverage:       types.CoverageDrought,
			crop:           "wheat",
			farmSize:       300,
			coverageAmount: 24000,
			want:           48.00,
		},
		{
			name:           "multi peril sums the single peril rates",
			coverage:       types.CoverageMultiPeril,
			crop:           "rice",
			farmSize:       100,
			coverageAmount: 12000,
			want:           92.40,
		},
		{
			name:           "unknown crop prices at multiplier 1",
			coverage:       types.CoverageFlood,
			crop:           "quinoa",
			farmSize:       50,
			coverageAmount: 10000,
			want:           17.50,
		},
		{
			name:           "rounds to cents",
			coverage:       types.CoverageFlood,
			crop:           "corn",
			farmSize:       0,
			coverageAmount: 1000,
			want:           1.67,
		},
	}

	q := NewQuoter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := q.MonthlyPremium(tt.coverage, tt.crop, tt.farmSize, tt.coverageAmount)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestMonthlyPremium_RejectsNonPositiveCoverage(t *testing.T) {
	q := NewQuoter()

	_, err := q.MonthlyPremium(types.CoverageFlood, "corn", 50, 0)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeValidationInvalidAmount, appErr.Code)
}
