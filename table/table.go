package table

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// ErrNoColumn reports a column that is absent from a snapshot. A stage that
// hits it was invoked out of order.
var ErrNoColumn = errors.New("table: no such column")

// Column returns the named column of rec.
func Column(rec arrow.Record, name string) (arrow.Array, error) {
	indices := rec.Schema().FieldIndices(name)
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoColumn, name)
	}
	return rec.Column(indices[0]), nil
}

// Float64Column returns the named column asserted to float64.
func Float64Column(rec arrow.Record, name string) (*array.Float64, error) {
	col, err := Column(rec, name)
	if err != nil {
		return nil, err
	}
	arr, ok := col.(*array.Float64)
	if !ok {
		return nil, fmt.Errorf("column %q: unexpected type %T", name, col)
	}
	return arr, nil
}

// Int64Column returns the named column asserted to int64.
func Int64Column(rec arrow.Record, name string) (*array.Int64, error) {
	col, err := Column(rec, name)
	if err != nil {
		return nil, err
	}
	arr, ok := col.(*array.Int64)
	if !ok {
		return nil, fmt.Errorf("column %q: unexpected type %T", name, col)
	}
	return arr, nil
}

// StringColumn returns the named column asserted to string.
func StringColumn(rec arrow.Record, name string) (*array.String, error) {
	col, err := Column(rec, name)
	if err != nil {
		return nil, err
	}
	arr, ok := col.(*array.String)
	if !ok {
		return nil, fmt.Errorf("column %q: unexpected type %T", name, col)
	}
	return arr, nil
}

// NumericColumn returns the values of an int64 or float64 column widened to
// float64.
func NumericColumn(rec arrow.Record, name string) ([]float64, error) {
	col, err := Column(rec, name)
	if err != nil {
		return nil, err
	}
	switch arr := col.(type) {
	case *array.Float64:
		out := make([]float64, arr.Len())
		for i := range out {
			out[i] = arr.Value(i)
		}
		return out, nil
	case *array.Int64:
		out := make([]float64, arr.Len())
		for i := range out {
			out[i] = float64(arr.Value(i))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("column %q: unexpected type %T", name, col)
	}
}

// Drop returns a snapshot without the named columns. Every named column must
// be present. The surviving column arrays are shared with rec, not copied.
func Drop(rec arrow.Record, names ...string) (arrow.Record, error) {
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		if len(rec.Schema().FieldIndices(name)) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrNoColumn, name)
		}
		drop[name] = true
	}

	fields := make([]arrow.Field, 0, int(rec.NumCols())-len(names))
	cols := make([]arrow.Array, 0, cap(fields))
	for i, field := range rec.Schema().Fields() {
		if drop[field.Name] {
			continue
		}
		fields = append(fields, field)
		cols = append(cols, rec.Column(i))
	}
	return array.NewRecord(arrow.NewSchema(fields, nil), cols, rec.NumRows()), nil
}

// Filter returns a snapshot holding only the rows in keep, in ascending row
// order.
func Filter(rec arrow.Record, keep *roaring.Bitmap) (arrow.Record, error) {
	b := array.NewRecordBuilder(Pool, rec.Schema())
	defer b.Release()

	it := keep.Iterator()
	for it.HasNext() {
		row := int(it.Next())
		for c := 0; c < int(rec.NumCols()); c++ {
			if err := CopyValue(b.Field(c), rec.Column(c), row); err != nil {
				return nil, err
			}
		}
	}
	return b.NewRecord(), nil
}

// CopyValue appends row r of src to dst, preserving nulls.
func CopyValue(dst array.Builder, src arrow.Array, r int) error {
	if src.IsNull(r) {
		dst.AppendNull()
		return nil
	}
	switch arr := src.(type) {
	case *array.Int64:
		dst.(*array.Int64Builder).Append(arr.Value(r))
	case *array.Float64:
		dst.(*array.Float64Builder).Append(arr.Value(r))
	case *array.String:
		dst.(*array.StringBuilder).Append(arr.Value(r))
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
	return nil
}
