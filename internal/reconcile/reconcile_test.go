package reconcile

import (
	"testing"

	"github.com/dvloznov/sheet-import/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func usd(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d(s), Valid: true}
}

func defaultOptions() Options {
	return Options{
		ExpectedTotalUSD: d("6804.11"),
		ConversionRate:   d("0.031"),
		TolerancePercent: d("1.5"),
	}
}

func TestSummarize_ExpensesAndReimbursement(t *testing.T) {
	txs := []domain.Transaction{
		{Source: "Expense Tracker", Amount: d("1500"), Currency: domain.CurrencyTHB, AmountUSD: usd("45.00"),
			Type: domain.TypeExpense, BusinessExpense: true, Tags: []string{domain.TagBusinessExpense}},
		{Source: "Expense Tracker", Amount: d("-1000.00"), Currency: domain.CurrencyUSD, AmountUSD: usd("-1000.00"),
			Type: domain.TypeIncome, Tags: []string{domain.TagReimbursement}},
		{Source: "Florida House", Amount: d("52.30"), Currency: domain.CurrencyUSD, AmountUSD: usd("52.30"),
			Type: domain.TypeExpense, Tags: []string{"Florida House"}},
	}

	opts := defaultOptions()
	opts.ExpectedTotalUSD = d("100")
	s := Summarize(txs, opts)

	assert.Equal(t, 3, s.TotalTransactions)
	assert.Equal(t, 2, s.ExpenseCount)
	assert.Equal(t, 1, s.IncomeCount)
	assert.True(t, s.TotalExpenseUSD.Equal(d("97.30")), "got %s", s.TotalExpenseUSD)
	assert.True(t, s.EstimatedUSD.IsZero())
	assert.True(t, s.Difference.Equal(d("2.70")), "got %s", s.Difference)
	assert.True(t, s.DifferencePercent.Equal(d("2.7")), "got %s", s.DifferencePercent)
	assert.False(t, s.WithinTolerance)

	require.Len(t, s.Tags, 3)
	assert.Equal(t, "Business Expense", s.Tags[0].Name)
	assert.Equal(t, "Reimbursement", s.Tags[1].Name)
	assert.Equal(t, 0, s.Tags[1].ExpenseCount)
	assert.True(t, s.Tags[1].TotalUSD.Equal(d("-1000")))
	assert.Equal(t, "Florida House", s.Tags[2].Name)
	assert.True(t, s.Tags[2].TotalUSD.Equal(d("52.30")))

	require.Len(t, s.Sources, 2)
	assert.Equal(t, "Expense Tracker", s.Sources[0].Name)
	assert.Equal(t, 2, s.Sources[0].Count)
	assert.Equal(t, 1, s.Sources[0].ExpenseCount)
}

func TestSummarize_EstimatesTHBWithoutSubtotal(t *testing.T) {
	tx := domain.Transaction{
		Amount:   d("1000"),
		Currency: domain.CurrencyTHB,
		Type:     domain.TypeExpense,
		Tags:     []string{},
	}

	s := Summarize([]domain.Transaction{tx}, defaultOptions())

	assert.True(t, s.TotalExpenseUSD.Equal(d("31")), "got %s", s.TotalExpenseUSD)
	assert.True(t, s.EstimatedUSD.Equal(d("31")))
	assert.False(t, tx.AmountUSD.Valid, "the estimate must not be written back")
}

func TestSummarize_WithinTolerance(t *testing.T) {
	tx := domain.Transaction{Amount: d("6750"), Currency: domain.CurrencyUSD, AmountUSD: usd("6750"), Type: domain.TypeExpense}

	s := Summarize([]domain.Transaction{tx}, defaultOptions())

	assert.True(t, s.Difference.Equal(d("54.11")))
	assert.True(t, s.DifferencePercent.Equal(d("0.8")), "got %s", s.DifferencePercent)
	assert.True(t, s.WithinTolerance)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, Options{})

	assert.Equal(t, 0, s.TotalTransactions)
	assert.True(t, s.TotalExpenseUSD.IsZero())
	assert.True(t, s.Difference.IsZero())
	assert.True(t, s.DifferencePercent.IsZero())
	assert.True(t, s.WithinTolerance)
	assert.NotNil(t, s.Tags)
	assert.NotNil(t, s.Sources)
}

func TestUSDValue(t *testing.T) {
	rate := d("0.031")

	v, est := USDValue(domain.Transaction{Currency: domain.CurrencyUSD, Amount: d("5")}, rate)
	assert.True(t, v.IsZero(), "USD record without amount_usd contributes zero")
	assert.False(t, est)

	v, est = USDValue(domain.Transaction{Currency: domain.CurrencyTHB, Amount: d("200"), AmountUSD: usd("6.10")}, rate)
	assert.True(t, v.Equal(d("6.10")))
	assert.False(t, est)
}
