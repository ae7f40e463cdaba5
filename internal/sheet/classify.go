package sheet

import (
	"strings"
)

// RowKind is the structural role of a row inside a section.
type RowKind int

const (
	RowData RowKind = iota
	RowBlank
	RowHeader
	RowTotal
	RowDateMarker
	// RowMalformed covers rows too short for the layout or without a
	// description. They are never transactions.
	RowMalformed
)

func (k RowKind) String() string {
	switch k {
	case RowData:
		return "data"
	case RowBlank:
		return "blank"
	case RowHeader:
		return "header"
	case RowTotal:
		return "total"
	case RowDateMarker:
		return "date_marker"
	case RowMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Columns tells the classifier where the active layout keeps the cells it
// inspects.
type Columns struct {
	Date        int
	Description int
	Merchant    int
	// MinCells is the shortest row that can still be a transaction.
	MinCells int
}

var (
	weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

	totalsFirstCell   = []string{"subtotal", "estimated", "daily total", "grand total"}
	totalsDescription = []string{"daily total", "grand total"}

	descriptionHeaders = []string{"Desc"}
	merchantHeaders    = []string{"Merchant", "Vendor"}
)

// Classify decides what a row is. Ambiguous rows fall on the non-data side.
func Classify(row Row, cols Columns) RowKind {
	if row.Len() < 2 {
		return RowMalformed
	}

	first := row.Cell(0)
	if first == "" && row.Cell(1) == "" {
		return RowBlank
	}

	desc := row.Cell(cols.Description)
	if containsAny(desc, descriptionHeaders) && containsAny(row.Cell(cols.Merchant), merchantHeaders) {
		return RowHeader
	}

	if containsAnyFold(first, totalsFirstCell) || containsAnyFold(desc, totalsDescription) {
		return RowTotal
	}

	if IsDateMarker(row.Cell(cols.Date)) {
		return RowDateMarker
	}

	if row.Len() < cols.MinCells || desc == "" {
		return RowMalformed
	}

	return RowData
}

// IsDateMarker reports whether text names a weekday anywhere in it. No
// calendar parsing is attempted.
func IsDateMarker(text string) bool {
	return text != "" && containsAnyFold(text, weekdays)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func containsAnyFold(s string, needles []string) bool {
	lower := strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}
