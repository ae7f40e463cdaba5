package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dvloznov/sheet-import/internal/config"
	"github.com/dvloznov/sheet-import/internal/domain"
	"github.com/dvloznov/sheet-import/internal/gcsuploader"
	"github.com/dvloznov/sheet-import/internal/logger"
	"github.com/dvloznov/sheet-import/internal/pipeline"
	"github.com/dvloznov/sheet-import/internal/report"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "parse":
		runParse(log)
	case "summarize":
		runSummarize(log)
	case "inspect":
		runInspect(log)
	case "upload":
		runUpload(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Sheet Import CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  parse      Parse a spreadsheet CSV export into a transaction document")
	fmt.Println("  summarize  Recompute the summary of an existing document")
	fmt.Println("  inspect    Print the first and last transactions of a document")
	fmt.Println("  upload     Upload a local file to GCS")
	fmt.Println("  help       Show this help message")
	fmt.Println("\nLocations may be local paths or gs:// URIs; -output - writes to stdout.")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runParse(log zerolog.Logger) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML import config (defaults to the built-in September 2025 layout)")
	source := fs.String("source", "", "CSV export to parse (overrides config)")
	output := fs.String("output", "", "Where to write the document (overrides config)")
	expected := fs.String("expected", "", "Expected USD expense total (overrides config)")
	fs.Parse(os.Args[2:])

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load config")
		}
		cfg = loaded
	}
	if *source != "" {
		cfg.Source = *source
	}
	if *output != "" {
		cfg.Output = *output
	}
	if *expected != "" {
		cfg.ExpectedTotalUSD = mustDecimal(log, "expected", *expected)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}

	log = configuredLogger(log, cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	store := gcsuploader.NewFromConfig(cfg.GCS)
	state, err := pipeline.ImportSheet(ctx, cfg, store, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}

	if cfg.Output != pipeline.StdoutLocation {
		printSummary(state.Document.Summary)
		fmt.Printf("\nWrote %d transactions to %s\n", len(state.Transactions), cfg.Output)
	}
}

func runSummarize(log zerolog.Logger) {
	fs := flag.NewFlagSet("summarize", flag.ExitOnError)
	input := fs.String("input", "", "Document written by 'cli parse'")
	expected := fs.String("expected", "", "Expected USD expense total (defaults to the document's)")
	output := fs.String("output", "", "Optionally write the re-summarized document here")
	fs.Parse(os.Args[2:])

	if *input == "" {
		log.Fatal().Msg("Error: -input is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	store := gcsuploader.NewGCSStorageService()
	doc, err := pipeline.LoadDocument(ctx, *input, store)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load document")
	}

	target := doc.Summary.ExpectedTotalUSD
	if *expected != "" {
		target = mustDecimal(log, "expected", *expected)
	}
	doc = pipeline.Resummarize(doc, target)

	printSummary(doc.Summary)

	if *output != "" {
		data, err := report.Encode(doc)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to encode document")
		}
		if err := pipeline.WriteLocation(ctx, *output, data, store, os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("Failed to write document")
		}
	}
}

func runInspect(log zerolog.Logger) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	input := fs.String("input", "", "Document written by 'cli parse'")
	first := fs.Int("first", 10, "Number of leading transactions to show")
	last := fs.Int("last", 5, "Number of trailing transactions to show")
	fs.Parse(os.Args[2:])

	if *input == "" {
		log.Fatal().Msg("Error: -input is required")
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	doc, err := pipeline.LoadDocument(ctx, *input, gcsuploader.NewGCSStorageService())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load document")
	}

	fmt.Printf("\n=== Document (%d transactions) ===\n", len(doc.Transactions))

	fmt.Printf("\n=== First %d ===\n", len(doc.First(*first)))
	for i, tx := range doc.First(*first) {
		printTransaction(i+1, tx)
	}

	tail := doc.Last(*last)
	fmt.Printf("\n=== Last %d ===\n", len(tail))
	offset := len(doc.Transactions) - len(tail)
	for i, tx := range tail {
		printTransaction(offset+i+1, tx)
	}
	fmt.Println()
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", "", "GCS bucket name")
	objectName := fs.String("object", "", "GCS object name (defaults to filename)")
	filePath := fs.String("file", "", "Path to local file")
	fs.Parse(os.Args[2:])

	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}

	if *objectName == "" {
		*objectName = filepath.Base(*filePath)
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	if err := gcsuploader.NewGCSStorageService().UploadFile(ctx, *bucketName, *objectName, *filePath); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to gs://%s/%s\n", *filePath, *bucketName, *objectName)
}

func configuredLogger(fallback zerolog.Logger, cfg config.LogConfig) zerolog.Logger {
	log, err := logger.NewWithConfig(os.Stderr, cfg.Level, cfg.Format)
	if err != nil {
		fallback.Fatal().Err(err).Msg("Invalid log config")
	}
	return log
}

func mustDecimal(log zerolog.Logger, name, value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		log.Fatal().Err(err).Str("flag", name).Msg("Invalid number")
	}
	return d
}

func printSummary(s report.Summary) {
	fmt.Println("\n=== Summary ===")
	fmt.Printf("Transactions:     %d (%d expenses, %d income)\n", s.TotalTransactions, s.ExpenseCount, s.IncomeCount)
	fmt.Printf("Total expenses:   $%s", s.TotalExpenseUSD.StringFixed(2))
	if !s.EstimatedUSD.IsZero() {
		fmt.Printf(" (incl. $%s estimated at %s USD/THB)", s.EstimatedUSD.StringFixed(2), s.ConversionRate)
	}
	fmt.Println()
	fmt.Printf("Expected:         $%s\n", s.ExpectedTotalUSD.StringFixed(2))
	fmt.Printf("Difference:       $%s (%s%%)\n", s.Difference.StringFixed(2), s.DifferencePercent.StringFixed(2))
	if s.WithinTolerance {
		fmt.Printf("Status:           within %s%% tolerance\n", s.TolerancePercent)
	} else {
		fmt.Printf("Status:           OUTSIDE %s%% tolerance\n", s.TolerancePercent)
	}
	if s.Duplicates > 0 {
		fmt.Printf("Duplicates:       %d\n", s.Duplicates)
	}

	if len(s.Tags) > 0 {
		fmt.Println("\nBy tag:")
		for _, p := range s.Tags {
			fmt.Printf("  %-20s %4d  $%s\n", p.Name, p.Count, p.TotalUSD.StringFixed(2))
		}
	}
	if len(s.Sections) > 0 {
		fmt.Println("\nBy section:")
		for _, sec := range s.Sections {
			fmt.Printf("  %-20s %4d of %d rows\n", sec.Name, sec.Transactions, sec.Rows)
		}
	}
}

func printTransaction(n int, tx domain.Transaction) {
	fmt.Printf("\n%d. %s\n", n, tx.Description)
	fmt.Printf("   Date:     %s\n", tx.Date)
	fmt.Printf("   Merchant: %s\n", tx.Merchant)
	fmt.Printf("   Amount:   %s %s\n", tx.Amount.StringFixed(2), tx.Currency)
	if tx.AmountUSD.Valid && tx.Currency != domain.CurrencyUSD {
		fmt.Printf("   USD:      %s\n", tx.AmountUSD.Decimal.StringFixed(2))
	}
	fmt.Printf("   Type:     %s\n", tx.Type)
	if len(tx.Tags) > 0 {
		fmt.Printf("   Tags:     %v\n", tx.Tags)
	}
	fmt.Printf("   Source:   %s (line %d)\n", tx.Source, tx.Line)
}
