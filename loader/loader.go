// Package loader reads the raw Berka CSV exports and the precomputed
// feature maps into memory. It is the I/O glue in front of the pipeline:
// parsing only, no cleaning.
package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mtavares/berka/relation"
)

// defaultAsOf is the dataset's collection cutoff, used to anchor ages.
var defaultAsOf = time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC)

// Loader reads a directory of CSV exports.
type Loader struct {
	// Comma is the field separator. The raw Berka dumps use semicolons.
	Comma rune
	// AsOf anchors age derivation; zero means the dataset cutoff.
	AsOf time.Time
}

// New returns a Loader configured for the raw semicolon-separated dumps.
func New() *Loader {
	return &Loader{Comma: ';'}
}

// Tables reads the seven input relations from dir.
func (l *Loader) Tables(dir string) (relation.Tables, error) {
	var t relation.Tables
	var err error
	if t.Accounts, err = readFile(l, filepath.Join(dir, "account.csv"), accountRow); err != nil {
		return t, err
	}
	if t.Cards, err = readFile(l, filepath.Join(dir, "card.csv"), cardRow); err != nil {
		return t, err
	}
	if t.Clients, err = readFile(l, filepath.Join(dir, "client.csv"), clientRow); err != nil {
		return t, err
	}
	if t.Dispositions, err = readFile(l, filepath.Join(dir, "disp.csv"), dispositionRow); err != nil {
		return t, err
	}
	if t.Districts, err = readFile(l, filepath.Join(dir, "district.csv"), districtRow); err != nil {
		return t, err
	}
	if t.Loans, err = readFile(l, filepath.Join(dir, "loan.csv"), loanRow); err != nil {
		return t, err
	}
	if t.Transactions, err = readFile(l, filepath.Join(dir, "trans.csv"), transactionRow); err != nil {
		return t, err
	}
	return t, nil
}

// Derived reads the precomputed feature maps from dir and derives the
// per-client profiles from the client relation.
func (l *Loader) Derived(dir string, clients []relation.Client) (relation.Derived, error) {
	var d relation.Derived
	var err error
	if d.EffortRates, err = l.mapFile(filepath.Join(dir, "effort_rates.csv")); err != nil {
		return d, err
	}
	if d.SavingsRates, err = l.mapFile(filepath.Join(dir, "savings_rates.csv")); err != nil {
		return d, err
	}
	if d.CrimeRates, err = l.mapFile(filepath.Join(dir, "crime_rates.csv")); err != nil {
		return d, err
	}
	if d.Expenses, err = l.mapFile(filepath.Join(dir, "expenses.csv")); err != nil {
		return d, err
	}
	if d.Salaries, err = l.mapFile(filepath.Join(dir, "salaries.csv")); err != nil {
		return d, err
	}
	if d.DistrictAvgSalaries, err = l.mapFile(filepath.Join(dir, "district_avg_salary.csv")); err != nil {
		return d, err
	}
	if d.Profiles, err = l.Profiles(clients); err != nil {
		return d, err
	}
	return d, nil
}

// Profiles derives gender, age and age group per client from the birth
// number. Berka birth numbers encode YYMMDD with 50 added to the month for
// women.
func (l *Loader) Profiles(clients []relation.Client) (map[int64]relation.Profile, error) {
	asOf := l.AsOf
	if asOf.IsZero() {
		asOf = defaultAsOf
	}
	out := make(map[int64]relation.Profile, len(clients))
	for _, c := range clients {
		born, gender, err := decodeBirthNumber(c.BirthNumber)
		if err != nil {
			return nil, fmt.Errorf("client %d: %w", c.ID, err)
		}
		age := yearsBetween(born, asOf)
		out[c.ID] = relation.Profile{Gender: gender, Age: age, AgeGroup: ageGroup(age)}
	}
	return out, nil
}

func decodeBirthNumber(bn int64) (time.Time, string, error) {
	year := int(bn / 10000)
	month := int(bn / 100 % 100)
	day := int(bn % 100)

	gender := "M"
	if month > 50 {
		gender = "F"
		month -= 50
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, "", fmt.Errorf("invalid birth number %d", bn)
	}
	born := time.Date(1900+year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if born.Day() != day || born.Month() != time.Month(month) {
		// time.Date normalizes impossible dates like Feb 30.
		return time.Time{}, "", fmt.Errorf("invalid birth number %d", bn)
	}
	return born, gender, nil
}

func yearsBetween(born, asOf time.Time) int64 {
	years := asOf.Year() - born.Year()
	if asOf.YearDay() < born.YearDay() {
		years--
	}
	return int64(years)
}

// ageGroup buckets an age by decade, e.g. "20-29".
func ageGroup(age int64) string {
	lo := age / 10 * 10
	return fmt.Sprintf("%d-%d", lo, lo+9)
}

func readFile[T any](l *Loader, path string, parse func([]string) (T, error)) ([]T, error) {
	rows, err := l.readRows(path)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for i, row := range rows {
		v, err := parse(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", filepath.Base(path), i+2, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// readRows reads a CSV file and strips the header row.
func (l *Loader) readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = l.Comma
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}

// mapFile reads a two-column key;value file into a map.
func (l *Loader) mapFile(path string) (map[int64]float64, error) {
	rows, err := l.readRows(path)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]float64, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("%s row %d: want 2 fields, got %d", filepath.Base(path), i+2, len(row))
		}
		key, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", filepath.Base(path), i+2, err)
		}
		value, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", filepath.Base(path), i+2, err)
		}
		out[key] = value
	}
	return out, nil
}

func accountRow(row []string) (relation.Account, error) {
	if len(row) < 4 {
		return relation.Account{}, fmt.Errorf("want 4 fields, got %d", len(row))
	}
	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return relation.Account{}, err
	}
	district, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return relation.Account{}, err
	}
	return relation.Account{ID: id, DistrictID: district, Frequency: row[2], Date: row[3]}, nil
}

func cardRow(row []string) (relation.Card, error) {
	if len(row) < 4 {
		return relation.Card{}, fmt.Errorf("want 4 fields, got %d", len(row))
	}
	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return relation.Card{}, err
	}
	disp, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return relation.Card{}, err
	}
	return relation.Card{ID: id, DispID: disp, Type: row[2], Issued: row[3]}, nil
}

func clientRow(row []string) (relation.Client, error) {
	if len(row) < 3 {
		return relation.Client{}, fmt.Errorf("want 3 fields, got %d", len(row))
	}
	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return relation.Client{}, err
	}
	birth, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return relation.Client{}, err
	}
	district, err := strconv.ParseInt(row[2], 10, 64)
	if err != nil {
		return relation.Client{}, err
	}
	return relation.Client{ID: id, BirthNumber: birth, DistrictID: district}, nil
}

func dispositionRow(row []string) (relation.Disposition, error) {
	if len(row) < 4 {
		return relation.Disposition{}, fmt.Errorf("want 4 fields, got %d", len(row))
	}
	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return relation.Disposition{}, err
	}
	client, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return relation.Disposition{}, err
	}
	account, err := strconv.ParseInt(row[2], 10, 64)
	if err != nil {
		return relation.Disposition{}, err
	}
	return relation.Disposition{ID: id, ClientID: client, AccountID: account, Type: row[3]}, nil
}

// districtRow keeps the code, names and the crime statistic, which is the
// last column of the raw export.
func districtRow(row []string) (relation.District, error) {
	if len(row) < 4 {
		return relation.District{}, fmt.Errorf("want at least 4 fields, got %d", len(row))
	}
	code, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return relation.District{}, err
	}
	crime, err := strconv.ParseFloat(row[len(row)-1], 64)
	if err != nil {
		return relation.District{}, err
	}
	return relation.District{Code: code, Name: row[1], Region: row[2], CrimeRate: crime}, nil
}

func loanRow(row []string) (relation.Loan, error) {
	if len(row) < 7 {
		return relation.Loan{}, fmt.Errorf("want 7 fields, got %d", len(row))
	}
	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return relation.Loan{}, err
	}
	account, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return relation.Loan{}, err
	}
	amount, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return relation.Loan{}, err
	}
	duration, err := strconv.ParseInt(row[4], 10, 64)
	if err != nil {
		return relation.Loan{}, err
	}
	payments, err := strconv.ParseFloat(row[5], 64)
	if err != nil {
		return relation.Loan{}, err
	}
	status, err := loanStatus(row[6])
	if err != nil {
		return relation.Loan{}, err
	}
	return relation.Loan{
		ID:        id,
		AccountID: account,
		Date:      row[2],
		Amount:    amount,
		Duration:  duration,
		Payments:  payments,
		Status:    status,
	}, nil
}

// loanStatus maps the raw A-D status letters onto the numeric label: 1 for
// loans in good standing (A, C), -1 for defaults (B, D). Cleaned exports
// carry the numeric label already.
func loanStatus(s string) (int64, error) {
	switch s {
	case "A", "C":
		return 1, nil
	case "B", "D":
		return -1, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid loan status %q", s)
	}
	return v, nil
}

func transactionRow(row []string) (relation.Transaction, error) {
	if len(row) < 7 {
		return relation.Transaction{}, fmt.Errorf("want at least 7 fields, got %d", len(row))
	}
	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return relation.Transaction{}, err
	}
	account, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return relation.Transaction{}, err
	}
	amount, err := strconv.ParseFloat(row[5], 64)
	if err != nil {
		return relation.Transaction{}, err
	}
	balance, err := strconv.ParseFloat(row[6], 64)
	if err != nil {
		return relation.Transaction{}, err
	}
	return relation.Transaction{
		ID:        id,
		AccountID: account,
		Date:      row[2],
		Type:      row[3],
		Operation: row[4],
		Amount:    amount,
		Balance:   balance,
	}, nil
}
