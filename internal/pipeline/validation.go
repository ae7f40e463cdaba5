package pipeline

import (
	"fmt"

	"github.com/dvloznov/sheet-import/internal/domain"
)

// RecordValidator checks the invariants every emitted transaction holds,
// whichever builder produced it.
type RecordValidator struct {
	currencies  map[domain.Currency]bool
	sectionTags map[string]string // single_property section name -> tag
}

// NewRecordValidator creates a validator for records built from specs.
func NewRecordValidator(specs []SectionSpec) *RecordValidator {
	v := &RecordValidator{
		currencies:  map[domain.Currency]bool{domain.CurrencyUSD: true},
		sectionTags: make(map[string]string),
	}
	for _, spec := range specs {
		if spec.ForeignCurrency != "" {
			v.currencies[spec.ForeignCurrency] = true
		}
		if spec.Layout.Kind == LayoutSingleProperty {
			v.sectionTags[spec.Name] = spec.Tag
		}
	}
	return v
}

// Validate returns nil if tx is consistent, an error naming the first
// broken invariant otherwise.
func (v *RecordValidator) Validate(tx domain.Transaction) error {
	if !v.currencies[tx.Currency] {
		return fmt.Errorf("line %d: invalid currency %q", tx.Line, tx.Currency)
	}
	if tx.Type != domain.TypeExpense && tx.Type != domain.TypeIncome {
		return fmt.Errorf("line %d: invalid transaction type %q", tx.Line, tx.Type)
	}
	if tx.Description == "" {
		return fmt.Errorf("line %d: empty description", tx.Line)
	}
	if tx.Tags == nil {
		return fmt.Errorf("line %d: nil tags", tx.Line)
	}
	if tx.HasTag(domain.TagReimbursement) != (tx.Type == domain.TypeIncome) {
		return fmt.Errorf("line %d: %q tag does not match type %s", tx.Line, domain.TagReimbursement, tx.Type)
	}
	if tx.HasTag(domain.TagBusinessExpense) != tx.BusinessExpense {
		return fmt.Errorf("line %d: %q tag does not match business flag", tx.Line, domain.TagBusinessExpense)
	}
	if tx.Currency == domain.CurrencyUSD && !tx.AmountUSD.Valid {
		return fmt.Errorf("line %d: USD record without amount_usd", tx.Line)
	}

	if tag, ok := v.sectionTags[tx.Source]; ok {
		if len(tx.Tags) == 0 || tx.Tags[0] != tag {
			return fmt.Errorf("line %d: missing section tag %q", tx.Line, tag)
		}
		if !tx.AmountUSD.Valid || !tx.AmountUSD.Decimal.Equal(tx.Amount) {
			return fmt.Errorf("line %d: amount_usd must equal amount in section %q", tx.Line, tx.Source)
		}
		if tx.ReimbursementStatus == nil {
			return fmt.Errorf("line %d: missing reimbursement status in section %q", tx.Line, tx.Source)
		}
	}
	return nil
}
