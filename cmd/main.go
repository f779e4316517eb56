package main

import (
	"context"
	"fmt"
	"os"

	gcs "cloud.google.com/go/storage"
	"github.com/docopt/docopt.go"
	"go.uber.org/zap"

	"github.com/mtavares/berka/loader"
	"github.com/mtavares/berka/pipeline"
	"github.com/mtavares/berka/storage"
)

func main() {
	usage := `Berka Loan Dataset Preparation.

Usage:
  berka prepare --data-dir=<dir> --out=<file> [--avg-salary] [--comma=<c>] [--gcs-bucket=<bucket>] [--gcs-object=<object>] [--verbose]
  berka (-h | --help)
  berka --version

Options:
  -h --help                Show this screen.
  --version                Show version.
  --data-dir=<dir>         Directory holding the CSV exports and feature maps.
  --out=<file>             Output path for the prepared Arrow dataset.
  --avg-salary             Replace zero salaries with the district average instead of 1.
  --comma=<c>              CSV field separator [default: ;].
  --gcs-bucket=<bucket>    Also upload the dataset to this GCS bucket.
  --gcs-object=<object>    Object name for the GCS upload [default: berka/loans.arrow].
  --verbose                Log stage diagnostics at debug level.
`
	arguments, err := docopt.ParseDoc(usage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing arguments: %v\n", err)
		os.Exit(1)
	}
	if v, _ := arguments.Bool("--version"); v {
		fmt.Println("berka version 1.0.0")
		os.Exit(0)
	}

	verbose, _ := arguments.Bool("--verbose")
	logger, err := newLogger(verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	dataDir, _ := arguments.String("--data-dir")
	outPath, _ := arguments.String("--out")
	avgSalary, _ := arguments.Bool("--avg-salary")
	comma, _ := arguments.String("--comma")

	ld := loader.New()
	if comma != "" {
		ld.Comma = rune(comma[0])
	}

	tables, err := ld.Tables(dataDir)
	if err != nil {
		logger.Fatal("Failed to load relations", zap.Error(err))
	}
	derived, err := ld.Derived(dataDir, tables.Clients)
	if err != nil {
		logger.Fatal("Failed to load derived feature maps", zap.Error(err))
	}

	result, err := pipeline.Run(tables, derived, pipeline.Config{SubstituteWithAvg: avgSalary})
	if err != nil {
		logger.Fatal("Preparation pipeline failed", zap.Error(err))
	}
	defer result.Dataset.Release()

	logReports(logger, result)

	if err := storage.Save(outPath, result.Dataset); err != nil {
		logger.Fatal("Failed to save dataset", zap.Error(err))
	}
	logger.Info("Saved prepared dataset",
		zap.String("path", outPath),
		zap.Int64("rows", result.Dataset.NumRows()),
		zap.Int64("columns", result.Dataset.NumCols()))

	if bucket, _ := arguments.String("--gcs-bucket"); bucket != "" {
		object, _ := arguments.String("--gcs-object")
		ctx := context.Background()
		client, err := gcs.NewClient(ctx)
		if err != nil {
			logger.Fatal("Failed to create GCS client", zap.Error(err))
		}
		defer client.Close()
		if err := storage.Upload(ctx, client, bucket, object, result.Dataset); err != nil {
			logger.Fatal("Failed to upload dataset", zap.Error(err))
		}
		logger.Info("Uploaded prepared dataset",
			zap.String("bucket", bucket),
			zap.String("object", object))
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// logReports surfaces the stage diagnostics. Reports never fail a run; they
// exist so a bad snapshot is visible before training does something with it.
func logReports(logger *zap.Logger, result *pipeline.Result) {
	v := result.Report.Validation
	logger.Info("Dataset sizes and duplicates",
		zap.Int("accounts", v.Accounts.Rows), zap.Int("accounts_dup", v.Accounts.Duplicates),
		zap.Int("cards", v.Cards.Rows), zap.Int("cards_dup", v.Cards.Duplicates),
		zap.Int("clients", v.Clients.Rows), zap.Int("clients_dup", v.Clients.Duplicates),
		zap.Int("dispositions", v.Dispositions.Rows), zap.Int("dispositions_dup", v.Dispositions.Duplicates),
		zap.Int("districts", v.Districts.Rows), zap.Int("districts_dup", v.Districts.Duplicates),
		zap.Int("loans", v.Loans.Rows), zap.Int("loans_dup", v.Loans.Duplicates),
		zap.Int("transactions", v.Transactions.Rows), zap.Int("transactions_dup", v.Transactions.Duplicates))

	logger.Info("Imputed zero salaries",
		zap.Int("zero", result.Report.Salaries.Zero),
		zap.Int("total", result.Report.Salaries.Total))

	join := result.Report.Join
	if join.ResolutionGaps > 0 {
		logger.Warn("Loans with no resolving client",
			zap.Int("count", join.ResolutionGaps),
			zap.Int64s("accounts", join.GapAccounts))
	}

	for _, col := range result.Report.Outliers.Columns {
		logger.Info("Column outliers removed",
			zap.String("column", col.Column),
			zap.Int("removed", col.Removed))
	}
	logger.Info("Total outliers removed", zap.Int("removed", result.Report.Outliers.Removed))
}
