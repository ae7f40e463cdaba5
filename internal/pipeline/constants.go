package pipeline

import "github.com/dvloznov/sheet-import/internal/domain"

// Default values for section building and output.
const (
	// DefaultForeignCurrency is the local currency of the wide ledger.
	DefaultForeignCurrency = domain.CurrencyTHB

	// DocumentContentType is set on documents written to storage.
	DocumentContentType = "application/json"

	// StdoutLocation writes the document to standard output.
	StdoutLocation = "-"

	// maxReportedViolations caps the errors joined by ValidateTransactionsStep.
	maxReportedViolations = 10
)
