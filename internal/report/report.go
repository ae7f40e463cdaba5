package report

import (
	"github.com/dvloznov/sheet-import/internal/domain"
	"github.com/dvloznov/sheet-import/internal/reconcile"
)

// SectionSummary reports what one section builder saw.
type SectionSummary struct {
	Name         string
	Layout       string
	Rows         int
	DateMarkers  int
	Transactions int
	Skipped      map[string]int
}

// Summary is the "summary" object of the output document.
type Summary struct {
	reconcile.Summary

	Sections   []SectionSummary
	Duplicates int
}

// Document is the interchange document: the summary plus the canonical
// transaction list in concatenation order.
type Document struct {
	Summary      Summary
	Transactions []domain.Transaction
}

// First returns up to n leading transactions.
func (d Document) First(n int) []domain.Transaction {
	if n <= 0 {
		return nil
	}
	if n > len(d.Transactions) {
		n = len(d.Transactions)
	}
	return d.Transactions[:n]
}

// Last returns up to n trailing transactions.
func (d Document) Last(n int) []domain.Transaction {
	if n <= 0 {
		return nil
	}
	if n > len(d.Transactions) {
		n = len(d.Transactions)
	}
	return d.Transactions[len(d.Transactions)-n:]
}
