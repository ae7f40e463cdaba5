package pipeline

import (
	"context"
	"io"

	"github.com/dvloznov/sheet-import/internal/config"
	"github.com/dvloznov/sheet-import/internal/logger"
	"github.com/dvloznov/sheet-import/internal/reconcile"
	"github.com/dvloznov/sheet-import/internal/report"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ImportSheet parses the configured sheet export, reconciles it and writes
// the resulting document to cfg.Output. The returned state is non-nil even on
// failure so callers can inspect how far the run got.
func ImportSheet(ctx context.Context, cfg config.Config, store StorageService, stdout io.Writer) (*PipelineState, error) {
	state := &PipelineState{
		RunID:  uuid.NewString(),
		Config: cfg,
	}

	log := logger.FromContext(ctx).With().Str("run_id", state.RunID).Logger()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("source", cfg.Source).
		Int("sections", len(cfg.Sections)).
		Msg("Starting import")

	if err := NewImportPipeline(store, stdout).Execute(ctx, state); err != nil {
		log.Error().Err(err).Msg("Import failed")
		return state, err
	}
	return state, nil
}

// Resummarize recomputes the reconciliation of a loaded document against a
// new expected total. Section statistics are carried over unchanged.
func Resummarize(doc report.Document, expectedTotalUSD decimal.Decimal) report.Document {
	opts := reconcile.Options{
		ExpectedTotalUSD: expectedTotalUSD,
		ConversionRate:   doc.Summary.ConversionRate,
		TolerancePercent: doc.Summary.TolerancePercent,
	}
	doc.Summary.Summary = reconcile.Summarize(doc.Transactions, opts)
	return doc
}

func reconcileOptions(cfg config.Config) reconcile.Options {
	return reconcile.Options{
		ExpectedTotalUSD: cfg.ExpectedTotalUSD,
		ConversionRate:   cfg.ConversionRate,
		TolerancePercent: cfg.TolerancePercent,
	}
}

func sectionSummary(stats SectionStats) report.SectionSummary {
	skipped := make(map[string]int, len(stats.Skipped))
	for reason, n := range stats.Skipped {
		skipped[string(reason)] = n
	}
	return report.SectionSummary{
		Name:         stats.Name,
		Layout:       string(stats.Layout),
		Rows:         stats.Rows,
		DateMarkers:  stats.DateMarkers,
		Transactions: stats.Transactions,
		Skipped:      skipped,
	}
}

func logSummary(log zerolog.Logger, s reconcile.Summary) {
	event := log.Info()
	if !s.WithinTolerance {
		event = log.Warn()
	}
	event.
		Int("transactions", s.TotalTransactions).
		Int("expenses", s.ExpenseCount).
		Int("income", s.IncomeCount).
		Str("total_expense_usd", s.TotalExpenseUSD.StringFixed(2)).
		Str("expected_total_usd", s.ExpectedTotalUSD.StringFixed(2)).
		Str("difference", s.Difference.StringFixed(2)).
		Str("difference_percent", s.DifferencePercent.StringFixed(2)).
		Bool("within_tolerance", s.WithinTolerance).
		Msg("Reconciled expense total")
}
