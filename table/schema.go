// Package table defines the combined loan feature table and the snapshot
// helpers the preparation stages share. Every stage consumes a record and
// returns a fresh one; snapshots are never mutated in place.
package table

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Pool is the Go memory allocator used by Arrow.
var Pool = memory.NewGoAllocator()

// Column names used across the pipeline.
const (
	ColLoanID      = "loan_id"
	ColAccountID   = "account_id"
	ColDate        = "date"
	ColAmount      = "amount"
	ColDuration    = "duration"
	ColPayments    = "payments"
	ColStatus      = "status"
	ColGender      = "gender"
	ColAgeGroup    = "ageGroup"
	ColAge         = "age"
	ColEffortRate  = "effortRate"
	ColSavingsRate = "savingsRate"
	ColDistCrime   = "distCrime"
	ColExpenses    = "expenses"
	ColMonth       = "month"
	ColDay         = "day"
)

// Combined is the schema the feature join produces: the original loan
// columns followed by the seven derived columns. The demographic columns
// are nullable because a loan whose account resolves no client keeps its
// row with absent demographics.
var Combined = arrow.NewSchema([]arrow.Field{
	{Name: ColLoanID, Type: arrow.PrimitiveTypes.Int64},
	{Name: ColAccountID, Type: arrow.PrimitiveTypes.Int64},
	{Name: ColDate, Type: arrow.BinaryTypes.String},
	{Name: ColAmount, Type: arrow.PrimitiveTypes.Float64},
	{Name: ColDuration, Type: arrow.PrimitiveTypes.Int64},
	{Name: ColPayments, Type: arrow.PrimitiveTypes.Float64},
	{Name: ColStatus, Type: arrow.PrimitiveTypes.Int64},
	{Name: ColGender, Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: ColAgeGroup, Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: ColAge, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	{Name: ColEffortRate, Type: arrow.PrimitiveTypes.Float64},
	{Name: ColSavingsRate, Type: arrow.PrimitiveTypes.Float64},
	{Name: ColDistCrime, Type: arrow.PrimitiveTypes.Float64},
	{Name: ColExpenses, Type: arrow.PrimitiveTypes.Float64},
}, nil)
