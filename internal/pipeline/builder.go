package pipeline

import (
	"fmt"
	"strings"

	"github.com/dvloznov/sheet-import/internal/domain"
	"github.com/dvloznov/sheet-import/internal/sheet"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SkipReason explains why a row inside a section produced no transaction.
type SkipReason string

const (
	SkipBlank             SkipReason = "blank"
	SkipHeader            SkipReason = "header"
	SkipTotal             SkipReason = "total"
	SkipMalformed         SkipReason = "malformed"
	SkipBeforeDateMarker  SkipReason = "before_date_marker"
	SkipExcluded          SkipReason = "excluded"
	SkipUnparseableAmount SkipReason = "unparseable_amount"
)

// SectionStats counts what a builder saw. Skips never change which rows
// become transactions; they only make the decisions visible.
type SectionStats struct {
	Name         string
	Layout       LayoutKind
	Rows         int
	DateMarkers  int
	Transactions int
	Skipped      map[SkipReason]int
}

// SectionResult is the output of one builder run.
type SectionResult struct {
	Spec         SectionSpec
	Transactions []domain.Transaction
	Stats        SectionStats
}

// SectionBuilder turns the rows of a sheet into the transactions of one section.
type SectionBuilder interface {
	Build(rows []sheet.Row) SectionResult
}

// NewSectionBuilder picks the builder for the section's layout.
func NewSectionBuilder(spec SectionSpec) (SectionBuilder, error) {
	switch spec.Layout.Kind {
	case LayoutWide:
		return &WideBuilder{spec: spec}, nil
	case LayoutSingleProperty:
		return &SinglePropertyBuilder{spec: spec}, nil
	default:
		return nil, fmt.Errorf("NewSectionBuilder: section %q: unknown layout %q", spec.Name, spec.Layout.Kind)
	}
}

// WideBuilder builds the dual-currency ledger section.
type WideBuilder struct {
	spec SectionSpec
}

// Build implements SectionBuilder.
func (b *WideBuilder) Build(rows []sheet.Row) SectionResult {
	return scanSection(b.spec, rows, b.buildRow)
}

func (b *WideBuilder) buildRow(date string, row sheet.Row) (domain.Transaction, SkipReason) {
	cols := b.spec.Layout.Columns
	desc := row.Cell(cols.Description)
	merchant := row.Cell(cols.Merchant)

	if b.spec.excluded(desc, merchant) {
		return domain.Transaction{}, SkipExcluded
	}

	business := strings.ToUpper(row.Cell(cols.BusinessFlag)) == "X"

	foreign := sheet.ParseForeignAmount(row.Cell(cols.ForeignAmount), string(b.spec.ForeignCurrency))
	usd := sheet.ParseAmount(row.Cell(cols.USDAmount))

	amount := decimal.Zero
	currency := domain.CurrencyUSD
	switch {
	case foreign.Valid && !foreign.Decimal.IsZero():
		amount = foreign.Decimal
		currency = b.spec.ForeignCurrency
	case usd.Valid:
		amount = usd.Decimal
	}

	amountUSD := sheet.ParseAmount(row.Cell(cols.USDSubtotal))
	if !amountUSD.Valid && currency == domain.CurrencyUSD {
		amountUSD = decimal.NullDecimal{Decimal: amount, Valid: true}
	}

	txType := domain.TypeExpense
	if b.spec.ReimbursementPrefix != "" && strings.HasPrefix(desc, b.spec.ReimbursementPrefix) {
		txType = domain.TypeIncome
	}

	return domain.Transaction{
		ID:              recordID(b.spec, row.Line),
		Source:          b.spec.Name,
		Line:            row.Line,
		Date:            date,
		Description:     desc,
		Merchant:        merchant,
		PaymentMethod:   row.Cell(cols.PaymentMethod),
		Amount:          amount,
		Currency:        currency,
		AmountUSD:       amountUSD,
		Type:            txType,
		BusinessExpense: business,
		Tags:            applyTags(nil, txType, business),
	}, ""
}

// SinglePropertyBuilder builds a USD-only section whose records all carry
// the section tag.
type SinglePropertyBuilder struct {
	spec SectionSpec
}

// Build implements SectionBuilder.
func (b *SinglePropertyBuilder) Build(rows []sheet.Row) SectionResult {
	return scanSection(b.spec, rows, b.buildRow)
}

func (b *SinglePropertyBuilder) buildRow(date string, row sheet.Row) (domain.Transaction, SkipReason) {
	cols := b.spec.Layout.Columns
	desc := row.Cell(cols.Description)
	merchant := row.Cell(cols.Merchant)

	if b.spec.excluded(desc, merchant) {
		return domain.Transaction{}, SkipExcluded
	}

	subtotal := sheet.ParseAmount(row.Cell(cols.USDSubtotal))
	if !subtotal.Valid {
		return domain.Transaction{}, SkipUnparseableAmount
	}
	status := row.Cell(cols.ReimbursementStatus)

	return domain.Transaction{
		ID:                  recordID(b.spec, row.Line),
		Source:              b.spec.Name,
		Line:                row.Line,
		Date:                date,
		Description:         desc,
		Merchant:            merchant,
		PaymentMethod:       row.Cell(cols.PaymentMethod),
		Amount:              subtotal.Decimal,
		Currency:            domain.CurrencyUSD,
		AmountUSD:           subtotal,
		Type:                domain.TypeExpense,
		Tags:                applyTags([]string{b.spec.Tag}, domain.TypeExpense, false),
		ReimbursementStatus: &status,
	}, ""
}

// rowFunc builds a transaction from a data row, or says why it cannot.
type rowFunc func(date string, row sheet.Row) (domain.Transaction, SkipReason)

// scanState is the accumulator threaded through a section scan.
type scanState struct {
	date sheet.DateContext
}

// step folds one row into the state. It returns the next state and either a
// transaction or the reason the row was skipped; date markers return neither.
func step(state scanState, spec SectionSpec, row sheet.Row, build rowFunc) (scanState, *domain.Transaction, SkipReason) {
	kind := sheet.Classify(row, spec.Layout.classifierColumns())
	next := scanState{date: state.date.Observe(kind, row, spec.Layout.Columns.Date)}

	switch kind {
	case sheet.RowDateMarker:
		return next, nil, ""
	case sheet.RowBlank:
		return next, nil, SkipBlank
	case sheet.RowHeader:
		return next, nil, SkipHeader
	case sheet.RowTotal:
		return next, nil, SkipTotal
	case sheet.RowMalformed:
		return next, nil, SkipMalformed
	}

	date, known := next.date.Label()
	if !known {
		return next, nil, SkipBeforeDateMarker
	}

	tx, reason := build(date, row)
	if reason != "" {
		return next, nil, reason
	}
	return next, &tx, ""
}

func scanSection(spec SectionSpec, rows []sheet.Row, build rowFunc) SectionResult {
	result := SectionResult{
		Spec:         spec,
		Transactions: []domain.Transaction{},
		Stats: SectionStats{
			Name:    spec.Name,
			Layout:  spec.Layout.Kind,
			Skipped: make(map[SkipReason]int),
		},
	}

	var state scanState
	for _, row := range rows {
		if spec.before(row.Line) {
			continue
		}
		if spec.ends(row.Line, row.Cell(0)) {
			break
		}

		result.Stats.Rows++

		var tx *domain.Transaction
		var reason SkipReason
		state, tx, reason = step(state, spec, row, build)

		switch {
		case tx != nil:
			result.Transactions = append(result.Transactions, *tx)
		case reason != "":
			result.Stats.Skipped[reason]++
		default:
			result.Stats.DateMarkers++
		}
	}

	result.Stats.Transactions = len(result.Transactions)
	return result
}

var recordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/dvloznov/sheet-import/transactions"))

// recordID is stable across runs over the same document revision.
func recordID(spec SectionSpec, line int) string {
	return uuid.NewSHA1(recordNamespace, []byte(fmt.Sprintf("%s\x00%s\x00%d", spec.Document, spec.Name, line))).String()
}
