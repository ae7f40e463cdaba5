package reconcile

import (
	"github.com/dvloznov/sheet-import/internal/domain"
	"github.com/shopspring/decimal"
)

// Options configures reconciliation against an externally known total.
type Options struct {
	ExpectedTotalUSD decimal.Decimal
	// ConversionRate converts THB to USD for expenses lacking a USD value.
	// The estimate stays in the summary and is never written to a record.
	ConversionRate   decimal.Decimal
	TolerancePercent decimal.Decimal
}

// Partition aggregates the records sharing a tag or a source section.
type Partition struct {
	Name         string
	Count        int
	ExpenseCount int
	// TotalUSD sums the USD value of every record in the partition,
	// income included.
	TotalUSD decimal.Decimal
}

// Summary is the aggregate view of a transaction list.
type Summary struct {
	TotalTransactions int
	ExpenseCount      int
	IncomeCount       int

	TotalExpenseUSD decimal.Decimal
	// EstimatedUSD is the part of TotalExpenseUSD derived from ConversionRate.
	EstimatedUSD decimal.Decimal

	ExpectedTotalUSD  decimal.Decimal
	Difference        decimal.Decimal
	DifferencePercent decimal.Decimal
	WithinTolerance   bool
	ConversionRate    decimal.Decimal
	TolerancePercent  decimal.Decimal

	Tags    []Partition
	Sources []Partition
}

var hundred = decimal.NewFromInt(100)

// Summarize derives counts, the expense total and the reconciliation
// against opts.ExpectedTotalUSD. A mismatch is reported, never corrected.
func Summarize(txs []domain.Transaction, opts Options) Summary {
	s := Summary{
		TotalTransactions: len(txs),
		TotalExpenseUSD:   decimal.Zero,
		EstimatedUSD:      decimal.Zero,
		ExpectedTotalUSD:  opts.ExpectedTotalUSD,
		ConversionRate:    opts.ConversionRate,
		TolerancePercent:  opts.TolerancePercent,
	}

	tags := newPartitions()
	sources := newPartitions()

	for _, tx := range txs {
		usd, estimated := USDValue(tx, opts.ConversionRate)

		if tx.IsExpense() {
			s.ExpenseCount++
			s.TotalExpenseUSD = s.TotalExpenseUSD.Add(usd)
			if estimated {
				s.EstimatedUSD = s.EstimatedUSD.Add(usd)
			}
		} else {
			s.IncomeCount++
		}

		for _, tag := range tx.Tags {
			tags.add(tag, tx, usd)
		}
		if tx.Source != "" {
			sources.add(tx.Source, tx, usd)
		}
	}

	s.Difference = opts.ExpectedTotalUSD.Sub(s.TotalExpenseUSD).Abs()
	s.DifferencePercent = decimal.Zero
	if !opts.ExpectedTotalUSD.IsZero() {
		s.DifferencePercent = s.Difference.Div(opts.ExpectedTotalUSD.Abs()).Mul(hundred).Round(2)
	}
	s.WithinTolerance = s.DifferencePercent.LessThanOrEqual(opts.TolerancePercent)

	s.Tags = tags.list()
	s.Sources = sources.list()
	return s
}

// USDValue returns the USD value used for aggregation and whether it had to
// be estimated from rate. Records with neither a USD value nor a THB amount
// contribute zero.
func USDValue(tx domain.Transaction, rate decimal.Decimal) (decimal.Decimal, bool) {
	if tx.AmountUSD.Valid {
		return tx.AmountUSD.Decimal, false
	}
	if tx.Currency == domain.CurrencyTHB {
		return tx.Amount.Mul(rate), true
	}
	return decimal.Zero, false
}

// partitions keeps first-seen order.
type partitions struct {
	index map[string]int
	items []Partition
}

func newPartitions() *partitions {
	return &partitions{index: make(map[string]int)}
}

func (p *partitions) add(name string, tx domain.Transaction, usd decimal.Decimal) {
	i, ok := p.index[name]
	if !ok {
		i = len(p.items)
		p.index[name] = i
		p.items = append(p.items, Partition{Name: name, TotalUSD: decimal.Zero})
	}
	part := &p.items[i]
	part.Count++
	if tx.IsExpense() {
		part.ExpenseCount++
	}
	part.TotalUSD = part.TotalUSD.Add(usd)
}

func (p *partitions) list() []Partition {
	if p.items == nil {
		return []Partition{}
	}
	return p.items
}
