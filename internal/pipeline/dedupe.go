package pipeline

import (
	"strings"
	"time"

	"github.com/dvloznov/sheet-import/internal/domain"
)

// Duplicate pairs a single-property record with the ledger record that
// already accounts for the same payment.
type Duplicate struct {
	Kept    domain.Transaction
	Dropped domain.Transaction
}

var dateLabelLayouts = []string{
	"Monday, January 2, 2006",
	"Monday, Jan 2, 2006",
	"Monday January 2, 2006",
	"1/2/2006",
}

// FindDuplicates looks for records in secondary that repeat a record in
// primary: same merchant (case-insensitive), same amount and currency, and
// dates at most window apart. Each primary record absorbs at most one
// secondary record. Date labels that do not parse only match verbatim.
func FindDuplicates(primary, secondary []domain.Transaction, window time.Duration) []Duplicate {
	var dups []Duplicate
	used := make(map[int]bool)

	for _, candidate := range secondary {
		for i, kept := range primary {
			if used[i] {
				continue
			}
			if !sameCharge(kept, candidate, window) {
				continue
			}
			used[i] = true
			dups = append(dups, Duplicate{Kept: kept, Dropped: candidate})
			break
		}
	}
	return dups
}

func sameCharge(a, b domain.Transaction, window time.Duration) bool {
	if !strings.EqualFold(strings.TrimSpace(a.Merchant), strings.TrimSpace(b.Merchant)) {
		return false
	}
	if a.Currency != b.Currency || !a.Amount.Equal(b.Amount) {
		return false
	}
	return datesWithin(a.Date, b.Date, window)
}

func datesWithin(a, b string, window time.Duration) bool {
	ta, okA := parseDateLabel(a)
	tb, okB := parseDateLabel(b)
	if !okA || !okB {
		return a == b
	}
	diff := ta.Sub(tb)
	if diff < 0 {
		diff = -diff
	}
	return diff <= window
}

func parseDateLabel(label string) (time.Time, bool) {
	label = strings.TrimSpace(label)
	for _, layout := range dateLabelLayouts {
		if t, err := time.Parse(layout, label); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// removeDuplicates drops every Dropped record of dups from txs, keeping order.
func removeDuplicates(txs []domain.Transaction, dups []Duplicate) []domain.Transaction {
	if len(dups) == 0 {
		return txs
	}
	drop := make(map[string]bool, len(dups))
	for _, d := range dups {
		drop[d.Dropped.ID] = true
	}

	kept := make([]domain.Transaction, 0, max(0, len(txs)-len(dups)))
	for _, tx := range txs {
		if !drop[tx.ID] {
			kept = append(kept, tx)
		}
	}
	return kept
}
