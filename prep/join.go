package prep

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/mtavares/berka/index"
	"github.com/mtavares/berka/relation"
	"github.com/mtavares/berka/table"
)

// JoinReport records the loans whose account resolved no client. Those
// loans keep their row with null demographics instead of being dropped.
type JoinReport struct {
	Loans          int
	ResolutionGaps int
	GapAccounts    []int64
}

// Combine builds one wide feature row per loan: the loan columns plus
// gender, age group, age, effort rate, savings rate, district crime rate
// and expenses. Dispositions are resolved through a bitmap index on account
// id; when several dispositions reference the same account the one at the
// highest input position wins, matching the historical scan order.
//
// Effort rate, savings rate and crime rate must cover every loan; expenses
// default to zero for accounts absent from the map.
func Combine(loans []relation.Loan, dispositions []relation.Disposition, derived relation.Derived) (arrow.Record, JoinReport, error) {
	byAccount := index.NewKeyed()
	for pos, disp := range dispositions {
		byAccount.Add(disp.AccountID, uint32(pos))
	}

	b := array.NewRecordBuilder(table.Pool, table.Combined)
	defer b.Release()

	loanIDs := b.Field(0).(*array.Int64Builder)
	accountIDs := b.Field(1).(*array.Int64Builder)
	dates := b.Field(2).(*array.StringBuilder)
	amounts := b.Field(3).(*array.Float64Builder)
	durations := b.Field(4).(*array.Int64Builder)
	payments := b.Field(5).(*array.Float64Builder)
	statuses := b.Field(6).(*array.Int64Builder)
	genders := b.Field(7).(*array.StringBuilder)
	ageGroups := b.Field(8).(*array.StringBuilder)
	ages := b.Field(9).(*array.Int64Builder)
	effortRates := b.Field(10).(*array.Float64Builder)
	savingsRates := b.Field(11).(*array.Float64Builder)
	crimeRates := b.Field(12).(*array.Float64Builder)
	expenses := b.Field(13).(*array.Float64Builder)

	report := JoinReport{Loans: len(loans)}
	for _, loan := range loans {
		effort, ok := derived.EffortRates[loan.ID]
		if !ok {
			return nil, report, fmt.Errorf("%w: effort rate for loan %d", ErrLookup, loan.ID)
		}
		savings, ok := derived.SavingsRates[loan.ID]
		if !ok {
			return nil, report, fmt.Errorf("%w: savings rate for loan %d", ErrLookup, loan.ID)
		}
		crime, ok := derived.CrimeRates[loan.AccountID]
		if !ok {
			return nil, report, fmt.Errorf("%w: crime rate for account %d", ErrLookup, loan.AccountID)
		}
		// Accounts absent from the expenses map spend nothing.
		expense := derived.Expenses[loan.AccountID]

		loanIDs.Append(loan.ID)
		accountIDs.Append(loan.AccountID)
		dates.Append(loan.Date)
		amounts.Append(loan.Amount)
		durations.Append(loan.Duration)
		payments.Append(loan.Payments)
		statuses.Append(loan.Status)

		if pos, ok := byAccount.Last(loan.AccountID); ok {
			clientID := dispositions[pos].ClientID
			profile, ok := derived.Profiles[clientID]
			if !ok {
				return nil, report, fmt.Errorf("%w: profile for client %d", ErrLookup, clientID)
			}
			genders.Append(profile.Gender)
			ageGroups.Append(profile.AgeGroup)
			ages.Append(profile.Age)
		} else {
			report.ResolutionGaps++
			report.GapAccounts = append(report.GapAccounts, loan.AccountID)
			genders.AppendNull()
			ageGroups.AppendNull()
			ages.AppendNull()
		}

		effortRates.Append(effort)
		savingsRates.Append(savings)
		crimeRates.Append(crime)
		expenses.Append(expense)
	}
	return b.NewRecord(), report, nil
}
