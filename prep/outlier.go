package prep

import (
	"math"

	"github.com/RoaringBitmap/roaring"
	"github.com/apache/arrow-go/v18/arrow"
	"gonum.org/v1/gonum/stat"

	"github.com/mtavares/berka/table"
)

// zScoreCutoff is the deviation, in population standard deviations, at
// which a value counts as an outlier.
const zScoreCutoff = 3

// outlierColumns is the fixed scoring order. Each column is scored on the
// rows that survived the previous columns, so the order changes the counts.
var outlierColumns = []string{
	table.ColSavingsRate,
	table.ColDistCrime,
	table.ColAmount,
	table.ColDuration,
	table.ColPayments,
	table.ColExpenses,
}

// ColumnOutliers pairs a scored column with the number of rows it removed.
type ColumnOutliers struct {
	Column  string
	Removed int
}

// OutlierReport lists removals per column, in scoring order, and in total.
type OutlierReport struct {
	Columns []ColumnOutliers
	Removed int
}

// FilterOutliers drops every row whose z-score magnitude reaches the cutoff
// in any of the scored numeric columns. The columns are folded
// sequentially: each column's statistics are computed over the rows still
// standing, not over the original set. Categorical and date columns are
// never scored.
//
// The returned record is independently retained; release it separately from
// rec.
func FilterOutliers(rec arrow.Record) (arrow.Record, OutlierReport, error) {
	var report OutlierReport
	current := rec

	for _, col := range outlierColumns {
		values, err := table.NumericColumn(current, col)
		if err != nil {
			if current != rec {
				current.Release()
			}
			return nil, report, err
		}

		keep := survivors(values)
		removed := len(values) - int(keep.GetCardinality())
		report.Columns = append(report.Columns, ColumnOutliers{Column: col, Removed: removed})
		report.Removed += removed
		if removed == 0 {
			continue
		}

		next, err := table.Filter(current, keep)
		if current != rec {
			current.Release()
		}
		if err != nil {
			return nil, report, err
		}
		current = next
	}

	if current == rec {
		rec.Retain()
	}
	return current, report, nil
}

// survivors returns the rows whose |z| stays under the cutoff. A
// zero-variance column keeps every row.
func survivors(values []float64) *roaring.Bitmap {
	keep := roaring.New()
	mean := stat.Mean(values, nil)
	std := stat.PopStdDev(values, nil)
	for i, v := range values {
		if std == 0 || math.Abs((v-mean)/std) < zScoreCutoff {
			keep.Add(uint32(i))
		}
	}
	return keep
}
