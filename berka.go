// Package berka prepares the PKDD'99 financial dataset for loan-default
// modeling. It validates the raw relations, imputes zero salaries, joins
// per-client and per-account features onto each loan, drops identifiers,
// filters z-score outliers and encodes the categorical and date attributes,
// yielding one fully numeric Arrow row per surviving loan.
package berka

import (
	"github.com/mtavares/berka/pipeline"
	"github.com/mtavares/berka/relation"
)

// Prepare runs the full preparation pipeline over the in-memory batch with
// the given policies. See the pipeline package for stage-level control.
func Prepare(tables relation.Tables, derived relation.Derived, cfg pipeline.Config) (*pipeline.Result, error) {
	return pipeline.Run(tables, derived, cfg)
}
