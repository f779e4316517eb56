package prep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImputeSalariesWithConstant(t *testing.T) {
	salaries := map[int64]float64{1: 0, 2: 9000, 3: 0}

	out, report, err := ImputeSalaries(salaries, nil, false)
	require.NoError(t, err)

	assert.Equal(t, map[int64]float64{1: 1, 2: 9000, 3: 1}, out)
	assert.Equal(t, SalaryReport{Total: 3, Zero: 2}, report)
}

func TestImputeSalariesWithDistrictAverage(t *testing.T) {
	salaries := map[int64]float64{1: 0, 2: 9000}
	districtAvg := map[int64]float64{1: 8500.5, 2: 9999}

	out, report, err := ImputeSalaries(salaries, districtAvg, true)
	require.NoError(t, err)

	assert.Equal(t, 8500.5, out[1], "zero salary takes the district average")
	assert.Equal(t, 9000.0, out[2], "non-zero salary passes through")
	assert.Equal(t, SalaryReport{Total: 2, Zero: 1}, report)
}

func TestImputeSalariesMissingAverage(t *testing.T) {
	salaries := map[int64]float64{1: 0}

	_, _, err := ImputeSalaries(salaries, map[int64]float64{}, true)
	assert.ErrorIs(t, err, ErrLookup)
}

func TestImputeSalariesDoesNotMutateInput(t *testing.T) {
	salaries := map[int64]float64{1: 0}

	_, _, err := ImputeSalaries(salaries, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 0.0, salaries[1])
}
