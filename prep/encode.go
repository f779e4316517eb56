package prep

import (
	"fmt"
	"sort"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/golang/groupcache/lru"

	"github.com/mtavares/berka/table"
)

// dateLayouts covers the ISO form used by cleaned exports and the compact
// YYMMDD form found in the raw Berka files.
var dateLayouts = []string{"2006-01-02", "060102"}

// dateCacheSize bounds the parsed-date cache. Loan dates repeat heavily
// within a snapshot, so most rows hit the cache.
const dateCacheSize = 512

// Encode replaces the gender and ageGroup columns with integer codes and
// splits the date column into numeric month and day. Codes follow the
// ascending sort of the observed distinct values, so the mapping is stable
// for a given snapshot. The year is dropped on purpose: the trained model
// has to generalize past the training years.
//
// A date that does not parse aborts the run; null demographics stay null in
// the encoded columns.
func Encode(rec arrow.Record) (arrow.Record, error) {
	genderCol, err := table.StringColumn(rec, table.ColGender)
	if err != nil {
		return nil, err
	}
	ageGroupCol, err := table.StringColumn(rec, table.ColAgeGroup)
	if err != nil {
		return nil, err
	}
	dateCol, err := table.StringColumn(rec, table.ColDate)
	if err != nil {
		return nil, err
	}

	genderCodes := labelCodes(genderCol)
	ageGroupCodes := labelCodes(ageGroupCol)

	// Passthrough columns keep their positions; the encoded and
	// date-derived columns go to the back, the way the historical
	// pipeline appended them.
	var fields []arrow.Field
	var src []int
	for i, field := range rec.Schema().Fields() {
		switch field.Name {
		case table.ColGender, table.ColAgeGroup, table.ColDate:
			continue
		}
		fields = append(fields, field)
		src = append(src, i)
	}
	passthrough := len(fields)
	fields = append(fields,
		arrow.Field{Name: table.ColGender, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		arrow.Field{Name: table.ColAgeGroup, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		arrow.Field{Name: table.ColMonth, Type: arrow.PrimitiveTypes.Int64},
		arrow.Field{Name: table.ColDay, Type: arrow.PrimitiveTypes.Int64},
	)

	b := array.NewRecordBuilder(table.Pool, arrow.NewSchema(fields, nil))
	defer b.Release()

	genders := b.Field(passthrough).(*array.Int64Builder)
	ageGroups := b.Field(passthrough + 1).(*array.Int64Builder)
	months := b.Field(passthrough + 2).(*array.Int64Builder)
	days := b.Field(passthrough + 3).(*array.Int64Builder)

	dates := lru.New(dateCacheSize)
	for row := 0; row < int(rec.NumRows()); row++ {
		for j, i := range src {
			if err := table.CopyValue(b.Field(j), rec.Column(i), row); err != nil {
				return nil, err
			}
		}
		appendCode(genders, genderCol, genderCodes, row)
		appendCode(ageGroups, ageGroupCol, ageGroupCodes, row)

		month, day, err := splitDate(dates, dateCol.Value(row))
		if err != nil {
			return nil, err
		}
		months.Append(month)
		days.Append(day)
	}
	return b.NewRecord(), nil
}

// labelCodes assigns integer codes to the distinct non-null values of col
// by ascending value order, lowest value first.
func labelCodes(col *array.String) map[string]int64 {
	distinct := make(map[string]struct{})
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}
		distinct[col.Value(i)] = struct{}{}
	}
	values := make([]string, 0, len(distinct))
	for v := range distinct {
		values = append(values, v)
	}
	sort.Strings(values)

	codes := make(map[string]int64, len(values))
	for i, v := range values {
		codes[v] = int64(i)
	}
	return codes
}

func appendCode(dst *array.Int64Builder, src *array.String, codes map[string]int64, row int) {
	if src.IsNull(row) {
		dst.AppendNull()
		return
	}
	dst.Append(codes[src.Value(row)])
}

type monthDay struct {
	month, day int64
}

// splitDate parses value and returns its month and day, consulting the
// cache first.
func splitDate(cache *lru.Cache, value string) (int64, int64, error) {
	if v, ok := cache.Get(value); ok {
		md := v.(monthDay)
		return md.month, md.day, nil
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		md := monthDay{month: int64(t.Month()), day: int64(t.Day())}
		cache.Add(value, md)
		return md.month, md.day, nil
	}
	return 0, 0, fmt.Errorf("%w: %q", ErrDate, value)
}
