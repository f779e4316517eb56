package prep

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtavares/berka/relation"
	"github.com/mtavares/berka/table"
)

func testLoans() []relation.Loan {
	return []relation.Loan{
		{ID: 100, AccountID: 1, Date: "1997-05-12", Amount: 5000, Duration: 24, Payments: 208, Status: 1},
		{ID: 101, AccountID: 2, Date: "1996-01-03", Amount: 9000, Duration: 12, Payments: 750, Status: -1},
	}
}

func testDerived() relation.Derived {
	return relation.Derived{
		EffortRates:  map[int64]float64{100: 0.2, 101: 0.4},
		SavingsRates: map[int64]float64{100: 0.1, 101: 0.3},
		CrimeRates:   map[int64]float64{1: 0.05, 2: 0.07},
		Expenses:     map[int64]float64{1: 1200},
		Profiles: map[int64]relation.Profile{
			10: {Gender: "M", AgeGroup: "20-29", Age: 25},
			11: {Gender: "F", AgeGroup: "40-49", Age: 44},
		},
	}
}

func TestCombineAttachesFeatures(t *testing.T) {
	dispositions := []relation.Disposition{
		{ID: 1, ClientID: 10, AccountID: 1},
		{ID: 2, ClientID: 11, AccountID: 2},
	}

	rec, report, err := Combine(testLoans(), dispositions, testDerived())
	require.NoError(t, err)
	defer rec.Release()

	assert.Equal(t, int64(2), rec.NumRows(), "one row per input loan")
	assert.Equal(t, int64(14), rec.NumCols(), "loan columns plus seven derived")
	assert.Equal(t, JoinReport{Loans: 2}, report)

	genders, err := table.StringColumn(rec, table.ColGender)
	require.NoError(t, err)
	assert.Equal(t, "M", genders.Value(0))
	assert.Equal(t, "F", genders.Value(1))

	efforts, err := table.Float64Column(rec, table.ColEffortRate)
	require.NoError(t, err)
	assert.Equal(t, 0.2, efforts.Value(0))
	assert.Equal(t, 0.4, efforts.Value(1))

	expenses, err := table.Float64Column(rec, table.ColExpenses)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, expenses.Value(0))
	assert.Equal(t, 0.0, expenses.Value(1), "missing expenses default to zero")
}

func TestCombineLastDispositionWins(t *testing.T) {
	// Two dispositions reference account 1; the later row resolves.
	dispositions := []relation.Disposition{
		{ID: 1, ClientID: 10, AccountID: 1},
		{ID: 2, ClientID: 11, AccountID: 1},
		{ID: 3, ClientID: 11, AccountID: 2},
	}

	rec, _, err := Combine(testLoans(), dispositions, testDerived())
	require.NoError(t, err)
	defer rec.Release()

	genders, err := table.StringColumn(rec, table.ColGender)
	require.NoError(t, err)
	assert.Equal(t, "F", genders.Value(0), "client 11 wins over client 10")
}

func TestCombineResolutionGap(t *testing.T) {
	// No disposition references account 2.
	dispositions := []relation.Disposition{
		{ID: 1, ClientID: 10, AccountID: 1},
	}

	rec, report, err := Combine(testLoans(), dispositions, testDerived())
	require.NoError(t, err)
	defer rec.Release()

	assert.Equal(t, int64(2), rec.NumRows(), "the gap row is kept, not dropped")
	assert.Equal(t, 1, report.ResolutionGaps)
	assert.Equal(t, []int64{2}, report.GapAccounts)

	genders, err := table.StringColumn(rec, table.ColGender)
	require.NoError(t, err)
	assert.True(t, genders.IsNull(1))
	ages, err := table.Int64Column(rec, table.ColAge)
	require.NoError(t, err)
	assert.True(t, ages.IsNull(1))
}

func TestCombineMissingRates(t *testing.T) {
	dispositions := []relation.Disposition{
		{ID: 1, ClientID: 10, AccountID: 1},
		{ID: 2, ClientID: 11, AccountID: 2},
	}

	derived := testDerived()
	delete(derived.EffortRates, 101)
	_, _, err := Combine(testLoans(), dispositions, derived)
	assert.ErrorIs(t, err, ErrLookup)

	derived = testDerived()
	delete(derived.CrimeRates, 2)
	_, _, err = Combine(testLoans(), dispositions, derived)
	assert.ErrorIs(t, err, ErrLookup)
}

func TestCombineSchemaMatches(t *testing.T) {
	rec, _, err := Combine(nil, nil, testDerived())
	require.NoError(t, err)
	defer rec.Release()

	assert.Equal(t, int64(0), rec.NumRows())
	assert.True(t, rec.Schema().Equal(table.Combined))
}

// combineCleaned builds the joined record and drops identifiers, the state
// the filter and encode stages see.
func combineCleaned(t *testing.T) arrow.Record {
	t.Helper()

	dispositions := []relation.Disposition{
		{ID: 1, ClientID: 10, AccountID: 1},
		{ID: 2, ClientID: 11, AccountID: 2},
	}
	combined, _, err := Combine(testLoans(), dispositions, testDerived())
	require.NoError(t, err)
	defer combined.Release()

	cleaned, err := DropIdentifiers(combined)
	require.NoError(t, err)
	return cleaned
}

func requireNoField(t *testing.T, rec arrow.Record, name string) {
	t.Helper()
	assert.Empty(t, rec.Schema().FieldIndices(name), "column %q should be gone", name)
}

func int64Values(t *testing.T, rec arrow.Record, name string) []int64 {
	t.Helper()
	col, err := table.Int64Column(rec, name)
	require.NoError(t, err)
	out := make([]int64, col.Len())
	for i := range out {
		out[i] = col.Value(i)
	}
	return out
}
