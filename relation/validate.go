package relation

// TableCounts reports the size of one relation and how many of its rows
// repeat a natural key seen on an earlier row.
type TableCounts struct {
	Rows       int
	Duplicates int
}

// ValidationReport aggregates the per-relation counts. It is diagnostic
// only: duplicates are reported, never repaired, and never halt the run.
type ValidationReport struct {
	Accounts     TableCounts
	Cards        TableCounts
	Clients      TableCounts
	Dispositions TableCounts
	Districts    TableCounts
	Loans        TableCounts
	Transactions TableCounts
}

// Validate counts rows and duplicated natural keys for every relation. An
// empty relation yields zero counts.
func Validate(t Tables) ValidationReport {
	return ValidationReport{
		Accounts:     countKeys(t.Accounts, func(a Account) int64 { return a.ID }),
		Cards:        countKeys(t.Cards, func(c Card) int64 { return c.ID }),
		Clients:      countKeys(t.Clients, func(c Client) int64 { return c.ID }),
		Dispositions: countKeys(t.Dispositions, func(d Disposition) int64 { return d.ID }),
		Districts:    countKeys(t.Districts, func(d District) int64 { return d.Code }),
		Loans:        countKeys(t.Loans, func(l Loan) int64 { return l.ID }),
		Transactions: countKeys(t.Transactions, func(tr Transaction) int64 { return tr.ID }),
	}
}

func countKeys[T any](rows []T, key func(T) int64) TableCounts {
	counts := TableCounts{Rows: len(rows)}
	seen := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		k := key(row)
		if _, ok := seen[k]; ok {
			counts.Duplicates++
			continue
		}
		seen[k] = struct{}{}
	}
	return counts
}
