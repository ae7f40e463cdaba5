package pipeline

import (
	"github.com/dvloznov/sheet-import/internal/domain"
)

// applyTags appends the shared category tags to a builder's seed tags.
// The result is never nil so it serializes as an empty list.
func applyTags(seed []string, txType domain.TransactionType, business bool) []string {
	tags := make([]string, 0, len(seed)+2)
	tags = append(tags, seed...)
	if txType == domain.TypeIncome {
		tags = append(tags, domain.TagReimbursement)
	}
	if business {
		tags = append(tags, domain.TagBusinessExpense)
	}
	return tags
}
