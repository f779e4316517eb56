package prep

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/mtavares/berka/table"
)

// DropIdentifiers removes loan_id and account_id once the join has
// denormalized everything they pointed at. Both columns must still be
// present; their absence means the stages ran out of order.
func DropIdentifiers(rec arrow.Record) (arrow.Record, error) {
	return table.Drop(rec, table.ColLoanID, table.ColAccountID)
}
