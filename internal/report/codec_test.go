package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dvloznov/sheet-import/internal/domain"
	"github.com/dvloznov/sheet-import/internal/reconcile"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string {
	return &s
}

func sampleDocument() Document {
	txs := []domain.Transaction{
		{
			ID:              "a1",
			Source:          "Expense Tracker",
			Line:            401,
			Date:            "Monday, September 1, 2025",
			Description:     "Client Dinner",
			Merchant:        "Bar & Grill",
			PaymentMethod:   "Chase Sapphire",
			Amount:          d("1500"),
			Currency:        domain.CurrencyTHB,
			AmountUSD:       decimal.NullDecimal{Decimal: d("45.00"), Valid: true},
			Type:            domain.TypeExpense,
			BusinessExpense: true,
			Tags:            []string{domain.TagBusinessExpense},
		},
		{
			ID:                  "b2",
			Source:              "Florida House",
			Line:                640,
			Date:                "Tuesday, September 2, 2025",
			Description:         "Electric",
			Merchant:            "FPL",
			PaymentMethod:       "Amex",
			Amount:              d("52.30"),
			Currency:            domain.CurrencyUSD,
			Type:                domain.TypeExpense,
			Tags:                []string{"Florida House"},
			ReimbursementStatus: strPtr("Pending"),
		},
	}

	return Document{
		Summary: Summary{
			Summary: reconcile.Summarize(txs, reconcile.Options{
				ExpectedTotalUSD: d("6804.11"),
				ConversionRate:   d("0.031"),
				TolerancePercent: d("1.5"),
			}),
			Sections: []SectionSummary{
				{Name: "Expense Tracker", Layout: "wide", Rows: 12, DateMarkers: 1, Transactions: 1,
					Skipped: map[string]int{"header": 1, "blank": 10}},
				{Name: "Florida House", Layout: "single_property", Rows: 1, Transactions: 1},
			},
		},
		Transactions: txs,
	}
}

func TestEncode_Shape(t *testing.T) {
	out, err := Encode(sampleDocument())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(out), "}\n"))

	var generic map[string]any
	require.NoError(t, json.Unmarshal(out, &generic))

	txs := generic["transactions"].([]any)
	require.Len(t, txs, 2)

	first := txs[0].(map[string]any)
	assert.Equal(t, "THB", first["currency"])
	assert.Equal(t, "expense", first["transaction_type"])
	assert.Equal(t, true, first["business_expense"])
	assert.Equal(t, 45.0, first["amount_usd"])
	assert.NotContains(t, first, "reimbursement_status")

	second := txs[1].(map[string]any)
	assert.Contains(t, second, "amount_usd")
	assert.Nil(t, second["amount_usd"])
	assert.Equal(t, "Pending", second["reimbursement_status"])

	summary := generic["summary"].(map[string]any)
	assert.Equal(t, 2.0, summary["total_transactions"])
	assert.Equal(t, 6804.11, summary["expected_total_usd"])
	assert.Contains(t, summary, "difference")
	sections := summary["sections"].([]any)
	require.Len(t, sections, 2)
	assert.Equal(t, map[string]any{}, sections[1].(map[string]any)["skipped"])
}

func TestEncode_ReimbursementStatus(t *testing.T) {
	tests := []struct {
		name   string
		status *string
		want   string
	}{
		{name: "wide record", status: nil, want: ""},
		{name: "empty status", status: strPtr(""), want: `"reimbursement_status": ""`},
		{name: "set status", status: strPtr("Done"), want: `"reimbursement_status": "Done"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := sampleDocument()
			doc.Transactions = doc.Transactions[1:]
			doc.Transactions[0].ReimbursementStatus = tt.status

			out, err := Encode(doc)
			require.NoError(t, err)
			if tt.want == "" {
				assert.NotContains(t, string(out), "reimbursement_status")
				return
			}
			assert.Contains(t, string(out), tt.want)
		})
	}
}

func TestEncode_NumbersAreNotQuoted(t *testing.T) {
	out, err := Encode(sampleDocument())
	require.NoError(t, err)

	assert.Contains(t, string(out), `"amount": 1500,`)
	assert.Contains(t, string(out), `"amount": 52.3,`)
	assert.Contains(t, string(out), `"amount_usd": null,`)
	assert.Contains(t, string(out), `"merchant": "Bar & Grill"`)
}

func TestDecode_RoundTripIsStable(t *testing.T) {
	first, err := Encode(sampleDocument())
	require.NoError(t, err)

	doc, err := Decode(first)
	require.NoError(t, err)

	second, err := Encode(doc)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	require.Len(t, doc.Transactions, 2)
	assert.True(t, doc.Transactions[0].AmountUSD.Valid)
	assert.True(t, doc.Transactions[0].AmountUSD.Decimal.Equal(d("45")))
	assert.False(t, doc.Transactions[1].AmountUSD.Valid)
	require.NotNil(t, doc.Transactions[1].ReimbursementStatus)
	assert.Equal(t, "Pending", *doc.Transactions[1].ReimbursementStatus)
	assert.Nil(t, doc.Transactions[0].ReimbursementStatus)
	assert.Equal(t, 401, doc.Transactions[0].Line)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not json", input: "nope"},
		{name: "unknown field", input: `{"summary":{},"transactions":[],"extra":1}`},
		{name: "bad currency", input: `{"summary":{},"transactions":[{"amount":1,"currency":"EUR","transaction_type":"expense"}]}`},
		{name: "bad type", input: `{"summary":{},"transactions":[{"amount":1,"currency":"USD","transaction_type":"refund"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestDocument_FirstLast(t *testing.T) {
	doc := sampleDocument()

	assert.Len(t, doc.First(10), 2)
	assert.Equal(t, "a1", doc.First(1)[0].ID)
	assert.Equal(t, "b2", doc.Last(1)[0].ID)
	assert.Nil(t, doc.Last(0))
}
