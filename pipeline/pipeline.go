// Package pipeline wires the preparation stages end to end: validate,
// impute, join, clean, filter, encode. A run either completes or fails on
// the first unrecoverable error.
package pipeline

import (
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mtavares/berka/prep"
	"github.com/mtavares/berka/relation"
)

var stageLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name: "berka_stage_latency_seconds",
	Help: "Preparation stage latency distribution",
}, []string{"stage"})

func init() {
	// Register Prometheus metrics.
	prometheus.MustRegister(stageLatency)
}

// Config controls the run-wide policies.
type Config struct {
	// SubstituteWithAvg replaces zero salaries with the district average
	// instead of the constant 1.
	SubstituteWithAvg bool
}

// Report aggregates the per-stage diagnostics of one run. Diagnostics never
// halt the pipeline; they are for the reporting collaborator to surface.
type Report struct {
	Validation relation.ValidationReport
	Salaries   prep.SalaryReport
	Join       prep.JoinReport
	Outliers   prep.OutlierReport
}

// Result of a full preparation run.
type Result struct {
	// Dataset is the modeling-ready table, one fully numeric row per
	// surviving loan. The caller owns the record.
	Dataset arrow.Record
	// Salaries is the imputed per-account salary map, returned for the
	// downstream feature-derivation collaborator.
	Salaries map[int64]float64
	Report   Report
}

// Run executes the full preparation pipeline over an in-memory batch. Each
// stage returns a fresh snapshot; intermediates are released as soon as the
// next stage has consumed them.
func Run(tables relation.Tables, derived relation.Derived, cfg Config) (*Result, error) {
	res := &Result{}

	start := time.Now()
	res.Report.Validation = relation.Validate(tables)
	observeStage("validate", start)

	start = time.Now()
	salaries, salaryReport, err := prep.ImputeSalaries(derived.Salaries, derived.DistrictAvgSalaries, cfg.SubstituteWithAvg)
	if err != nil {
		return nil, fmt.Errorf("impute salaries: %w", err)
	}
	observeStage("impute", start)
	res.Salaries = salaries
	res.Report.Salaries = salaryReport
	derived.Salaries = salaries

	start = time.Now()
	combined, joinReport, err := prep.Combine(tables.Loans, tables.Dispositions, derived)
	if err != nil {
		return nil, fmt.Errorf("combine features: %w", err)
	}
	observeStage("join", start)
	res.Report.Join = joinReport

	start = time.Now()
	cleaned, err := prep.DropIdentifiers(combined)
	combined.Release()
	if err != nil {
		return nil, fmt.Errorf("drop identifiers: %w", err)
	}
	observeStage("clean", start)

	start = time.Now()
	filtered, outlierReport, err := prep.FilterOutliers(cleaned)
	cleaned.Release()
	if err != nil {
		return nil, fmt.Errorf("filter outliers: %w", err)
	}
	observeStage("outliers", start)
	res.Report.Outliers = outlierReport

	start = time.Now()
	encoded, err := prep.Encode(filtered)
	filtered.Release()
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	observeStage("encode", start)

	res.Dataset = encoded
	return res, nil
}

func observeStage(stage string, start time.Time) {
	stageLatency.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
