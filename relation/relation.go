// Package relation holds the raw Berka banking relations and the derived
// feature maps the upstream derivation step supplies. The relations are
// read once and never mutated.
package relation

// Account is a bank account. The district reference points at the branch
// district, not the owner's.
type Account struct {
	ID         int64
	DistrictID int64
	Frequency  string
	Date       string
}

// Card is a credit card issued for a disposition.
type Card struct {
	ID     int64
	DispID int64
	Type   string
	Issued string
}

// Client is a bank client. The birth number encodes birth date and gender.
type Client struct {
	ID          int64
	BirthNumber int64
	DistrictID  int64
}

// Disposition links a client to an account they control.
type Disposition struct {
	ID        int64
	ClientID  int64
	AccountID int64
	Type      string
}

// District is a branch district with its crime statistic.
type District struct {
	Code      int64
	Name      string
	Region    string
	CrimeRate float64
}

// Loan is one granted loan; Status is the modeling label.
type Loan struct {
	ID        int64
	AccountID int64
	Date      string
	Amount    float64
	Duration  int64
	Payments  float64
	Status    int64
}

// Transaction is one account transaction.
type Transaction struct {
	ID        int64
	AccountID int64
	Date      string
	Type      string
	Operation string
	Amount    float64
	Balance   float64
}

// Tables bundles the seven input relations.
type Tables struct {
	Accounts     []Account
	Cards        []Card
	Clients      []Client
	Dispositions []Disposition
	Districts    []District
	Loans        []Loan
	Transactions []Transaction
}

// Profile carries the demographic features of one client, keyed by client
// id rather than by row position so the client table order never matters.
type Profile struct {
	Gender   string
	AgeGroup string
	Age      int64
}

// Derived bundles the feature maps computed upstream of the pipeline.
// Expenses may lack an account; the joiner defaults those to zero. Every
// other map must cover the keys the loans reference.
type Derived struct {
	EffortRates         map[int64]float64 // by loan id
	SavingsRates        map[int64]float64 // by loan id
	CrimeRates          map[int64]float64 // by account id
	Expenses            map[int64]float64 // by account id
	Salaries            map[int64]float64 // by account id
	DistrictAvgSalaries map[int64]float64 // by account id
	Profiles            map[int64]Profile // by client id
}
