package berka

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtavares/berka/pipeline"
	"github.com/mtavares/berka/relation"
	"github.com/mtavares/berka/table"
)

// TestPrepare walks a small but complete batch through every stage: two
// accounts in one district, each owned by one client, carrying three loans
// between them.
func TestPrepare(t *testing.T) {
	tables := relation.Tables{
		Accounts: []relation.Account{
			{ID: 1, DistrictID: 30, Date: "930101"},
			{ID: 2, DistrictID: 30, Date: "950615"},
		},
		Clients: []relation.Client{
			{ID: 10, BirthNumber: 705512, DistrictID: 30},
			{ID: 11, BirthNumber: 560229, DistrictID: 30},
		},
		Dispositions: []relation.Disposition{
			{ID: 1, ClientID: 10, AccountID: 1, Type: "OWNER"},
			{ID: 2, ClientID: 11, AccountID: 2, Type: "OWNER"},
		},
		Districts: []relation.District{
			{Code: 30, Name: "Pisek", Region: "south Bohemia", CrimeRate: 0.05},
		},
		Loans: []relation.Loan{
			{ID: 100, AccountID: 1, Date: "1997-05-12", Amount: 5000, Duration: 24, Payments: 208, Status: 1},
			{ID: 101, AccountID: 2, Date: "1996-01-03", Amount: 9000, Duration: 12, Payments: 750, Status: -1},
			{ID: 102, AccountID: 1, Date: "1998-11-30", Amount: 7000, Duration: 36, Payments: 194, Status: 1},
		},
	}
	derived := relation.Derived{
		EffortRates:         map[int64]float64{100: 0.2, 101: 0.4, 102: 0.3},
		SavingsRates:        map[int64]float64{100: 0.1, 101: 0.3, 102: 0.2},
		CrimeRates:          map[int64]float64{1: 0.05, 2: 0.05},
		Expenses:            map[int64]float64{1: 1200, 2: 2100},
		Salaries:            map[int64]float64{1: 9000, 2: 0},
		DistrictAvgSalaries: map[int64]float64{1: 8754, 2: 8754},
		Profiles: map[int64]relation.Profile{
			10: {Gender: "F", AgeGroup: "20-29", Age: 28},
			11: {Gender: "M", AgeGroup: "40-49", Age: 42},
		},
	}

	result, err := Prepare(tables, derived, pipeline.Config{})
	require.NoError(t, err)
	defer result.Dataset.Release()

	assert.Equal(t, int64(3), result.Dataset.NumRows(), "typical loans all survive the outlier filter")

	for _, f := range result.Dataset.Schema().Fields() {
		numeric := f.Type.ID() == arrow.INT64 || f.Type.ID() == arrow.FLOAT64
		assert.True(t, numeric, "column %q is not numeric: %s", f.Name, f.Type)
	}
	for _, name := range []string{table.ColLoanID, table.ColAccountID, table.ColDate, "year"} {
		assert.Empty(t, result.Dataset.Schema().FieldIndices(name), "column %q must not survive", name)
	}
	for _, name := range []string{
		table.ColAmount, table.ColDuration, table.ColPayments, table.ColStatus,
		table.ColAge, table.ColEffortRate, table.ColSavingsRate, table.ColDistCrime,
		table.ColExpenses, table.ColGender, table.ColAgeGroup, table.ColMonth, table.ColDay,
	} {
		assert.Len(t, result.Dataset.Schema().FieldIndices(name), 1, "column %q missing", name)
	}

	assert.Equal(t, 1.0, result.Salaries[2], "zero salary imputed with the constant")
	assert.Equal(t, 3, result.Report.Validation.Loans.Rows)
	assert.Zero(t, result.Report.Join.ResolutionGaps)
}
