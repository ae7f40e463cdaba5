package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dvloznov/sheet-import/internal/config"
	"github.com/dvloznov/sheet-import/internal/domain"
	"github.com/dvloznov/sheet-import/internal/logger"
	"github.com/dvloznov/sheet-import/internal/reconcile"
	"github.com/dvloznov/sheet-import/internal/report"
	"github.com/dvloznov/sheet-import/internal/sheet"
)

// PipelineStep represents a single step in the import pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	RunID  string
	Config config.Config

	Rows         []sheet.Row
	Specs        []SectionSpec
	Sections     []SectionResult
	Transactions []domain.Transaction
	Duplicates   []Duplicate
	Document     report.Document
	Encoded      []byte
}

// Step 1: ReadSourceStep loads the CSV export and splits it into rows.
type ReadSourceStep struct {
	Store StorageService
}

func (s *ReadSourceStep) Execute(ctx context.Context, state *PipelineState) error {
	log := logger.FromContext(ctx)

	data, err := ReadLocation(ctx, state.Config.Source, s.Store)
	if err != nil {
		return err
	}
	rows, err := sheet.ReadRows(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("ReadSourceStep: %s: %w", state.Config.Source, err)
	}
	state.Rows = rows

	log.Info().
		Str("source", state.Config.Source).
		Int("rows", len(rows)).
		Msg("Read source sheet")
	return nil
}

// Step 2: BuildSectionsStep runs one builder per configured section and
// concatenates their records in configuration order.
type BuildSectionsStep struct{}

func (s *BuildSectionsStep) Execute(ctx context.Context, state *PipelineState) error {
	log := logger.FromContext(ctx)
	document := documentName(state.Config.Source)

	state.Specs = make([]SectionSpec, 0, len(state.Config.Sections))
	state.Sections = make([]SectionResult, 0, len(state.Config.Sections))
	state.Transactions = []domain.Transaction{}

	for _, section := range state.Config.Sections {
		spec, err := NewSectionSpec(section, document, state.Config.ReimbursementPrefix)
		if err != nil {
			return err
		}
		builder, err := NewSectionBuilder(spec)
		if err != nil {
			return err
		}

		result := builder.Build(state.Rows)
		state.Specs = append(state.Specs, spec)
		state.Sections = append(state.Sections, result)
		state.Transactions = append(state.Transactions, result.Transactions...)

		event := log.Info().
			Str("section", spec.Name).
			Str("layout", string(spec.Layout.Kind)).
			Int("rows", result.Stats.Rows).
			Int("transactions", result.Stats.Transactions)
		for reason, n := range result.Stats.Skipped {
			event = event.Int("skipped_"+string(reason), n)
		}
		event.Msg("Built section")

		if result.Stats.Rows > 0 && result.Stats.Transactions == 0 {
			log.Warn().Str("section", spec.Name).Msg("Section produced no transactions")
		}
	}
	return nil
}

// Step 3: DetectDuplicatesStep compares single-property records against the
// wide ledger. Matches are always logged and only dropped when configured.
type DetectDuplicatesStep struct{}

func (s *DetectDuplicatesStep) Execute(ctx context.Context, state *PipelineState) error {
	log := logger.FromContext(ctx)

	var primary, secondary []domain.Transaction
	for _, section := range state.Sections {
		switch section.Spec.Layout.Kind {
		case LayoutWide:
			primary = append(primary, section.Transactions...)
		case LayoutSingleProperty:
			secondary = append(secondary, section.Transactions...)
		}
	}

	window := time.Duration(state.Config.DuplicateWindowDays) * 24 * time.Hour
	state.Duplicates = FindDuplicates(primary, secondary, window)

	for _, dup := range state.Duplicates {
		log.Warn().
			Str("merchant", dup.Dropped.Merchant).
			Str("amount", dup.Dropped.Amount.String()).
			Int("kept_line", dup.Kept.Line).
			Int("duplicate_line", dup.Dropped.Line).
			Str("duplicate_source", dup.Dropped.Source).
			Msg("Possible duplicate transaction")
	}

	if state.Config.RemoveDuplicates && len(state.Duplicates) > 0 {
		before := len(state.Transactions)
		state.Transactions = removeDuplicates(state.Transactions, state.Duplicates)
		log.Info().Int("removed", before-len(state.Transactions)).Msg("Removed duplicate transactions")
	}
	return nil
}

// Step 4: ValidateTransactionsStep checks record invariants before anything
// is summarized or written.
type ValidateTransactionsStep struct{}

func (s *ValidateTransactionsStep) Execute(ctx context.Context, state *PipelineState) error {
	validator := NewRecordValidator(state.Specs)

	var errs []error
	for _, tx := range state.Transactions {
		if err := validator.Validate(tx); err != nil {
			errs = append(errs, err)
			if len(errs) == maxReportedViolations {
				break
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("ValidateTransactionsStep: %w", errors.Join(errs...))
	}
	return nil
}

// Step 5: SummarizeStep aggregates the records and reconciles them against
// the expected total.
type SummarizeStep struct{}

func (s *SummarizeStep) Execute(ctx context.Context, state *PipelineState) error {
	log := logger.FromContext(ctx)

	summary := report.Summary{
		Summary:    reconcile.Summarize(state.Transactions, reconcileOptions(state.Config)),
		Sections:   make([]report.SectionSummary, 0, len(state.Sections)),
		Duplicates: len(state.Duplicates),
	}
	for _, section := range state.Sections {
		summary.Sections = append(summary.Sections, sectionSummary(section.Stats))
	}
	state.Document = report.Document{Summary: summary, Transactions: state.Transactions}

	logSummary(log, summary.Summary)
	return nil
}

// Step 6: EncodeDocumentStep serializes the document.
type EncodeDocumentStep struct{}

func (s *EncodeDocumentStep) Execute(ctx context.Context, state *PipelineState) error {
	encoded, err := report.Encode(state.Document)
	if err != nil {
		return err
	}
	state.Encoded = encoded
	return nil
}

// Step 7: WriteDocumentStep writes the encoded document to the configured
// output. An empty output skips the write.
type WriteDocumentStep struct {
	Store  StorageService
	Stdout io.Writer
}

func (s *WriteDocumentStep) Execute(ctx context.Context, state *PipelineState) error {
	output := state.Config.Output
	if output == "" {
		return nil
	}
	if err := WriteLocation(ctx, output, state.Encoded, s.Store, s.Stdout); err != nil {
		return err
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("output", output).
		Int("bytes", len(state.Encoded)).
		Msg("Wrote document")
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline step %d: %w", i+1, err)
		}
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// NewImportPipeline creates the standard pipeline that turns a sheet export
// into a written document.
func NewImportPipeline(store StorageService, stdout io.Writer) *Pipeline {
	return NewPipeline(
		&ReadSourceStep{Store: store},
		&BuildSectionsStep{},
		&DetectDuplicatesStep{},
		&ValidateTransactionsStep{},
		&SummarizeStep{},
		&EncodeDocumentStep{},
		&WriteDocumentStep{Store: store, Stdout: stdout},
	)
}
