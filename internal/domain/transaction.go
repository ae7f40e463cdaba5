package domain

import (
	"github.com/shopspring/decimal"
)

// Currency is the unit an Amount is expressed in.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyTHB Currency = "THB"
)

// TransactionType distinguishes spending from money returned to the filer.
type TransactionType string

const (
	TypeExpense TransactionType = "expense"
	// TypeIncome marks a reimbursement.
	TypeIncome TransactionType = "income"
)

// Tag labels attached by the tagger. Section tags are configured per section.
const (
	TagReimbursement   = "Reimbursement"
	TagBusinessExpense = "Business Expense"
)

// Transaction represents one normalized row of the expense sheet.
// Values are built once by a section builder and never mutated afterwards.
type Transaction struct {
	ID     string // deterministic per (section, line)
	Source string // name of the section that produced the record
	Line   int    // 1-based line of the source row

	Date          string // verbatim text of the last date-marker row
	Description   string
	Merchant      string
	PaymentMethod string

	Amount    decimal.Decimal     // in Currency units, negative for "(x)" cells
	Currency  Currency
	AmountUSD decimal.NullDecimal // invalid when no USD value could be derived

	Type            TransactionType
	BusinessExpense bool
	Tags            []string

	// ReimbursementStatus is set, possibly to "", on single-property records
	// only.
	ReimbursementStatus *string
}

// IsExpense reports whether the transaction counts towards spending totals.
func (t Transaction) IsExpense() bool {
	return t.Type == TypeExpense
}

// HasTag reports whether tag is present.
func (t Transaction) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}
