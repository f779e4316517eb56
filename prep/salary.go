// Package prep implements the core preparation stages: salary imputation,
// feature joining, identifier cleanup, outlier filtering and encoding. Each
// stage is pure and returns a report struct instead of logging; the caller
// decides what to surface.
package prep

import "fmt"

// SalaryReport counts the zero-salary observations found during imputation.
type SalaryReport struct {
	Total int
	Zero  int
}

// ImputeSalaries returns a copy of salaries with every zero observation
// replaced: by the account's district average when substituteWithAvg is
// set, by the constant 1 otherwise. Non-zero salaries pass through
// unchanged. A zero salary whose district average is unknown is a lookup
// failure, not a silent pass-through.
func ImputeSalaries(salaries, districtAvg map[int64]float64, substituteWithAvg bool) (map[int64]float64, SalaryReport, error) {
	out := make(map[int64]float64, len(salaries))
	report := SalaryReport{Total: len(salaries)}

	for accountID, salary := range salaries {
		if salary != 0 {
			out[accountID] = salary
			continue
		}
		report.Zero++
		if !substituteWithAvg {
			out[accountID] = 1
			continue
		}
		avg, ok := districtAvg[accountID]
		if !ok {
			return nil, report, fmt.Errorf("%w: district average salary for account %d", ErrLookup, accountID)
		}
		out[accountID] = avg
	}
	return out, report, nil
}
