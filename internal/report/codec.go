package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dvloznov/sheet-import/internal/domain"
	"github.com/dvloznov/sheet-import/internal/reconcile"
	"github.com/shopspring/decimal"
)

// Wire types. Money is written as JSON numbers via json.Number so decimal
// values round-trip without float conversion.

type documentJSON struct {
	Summary      summaryJSON       `json:"summary"`
	Transactions []transactionJSON `json:"transactions"`
}

type summaryJSON struct {
	TotalTransactions int         `json:"total_transactions"`
	ExpenseCount      int         `json:"expense_count"`
	IncomeCount       int         `json:"income_count"`
	TotalExpenseUSD   json.Number `json:"total_expense_usd"`
	ExpectedTotalUSD  json.Number `json:"expected_total_usd"`
	Difference        json.Number `json:"difference"`

	EstimatedUSD      json.Number     `json:"estimated_usd"`
	DifferencePercent json.Number     `json:"difference_percent"`
	WithinTolerance   bool            `json:"within_tolerance"`
	ConversionRate    json.Number     `json:"conversion_rate"`
	TolerancePercent  json.Number     `json:"tolerance_percent"`
	Tags              []partitionJSON `json:"tags"`
	Sources           []partitionJSON `json:"sources"`
	Sections          []sectionJSON   `json:"sections"`
	Duplicates        int             `json:"duplicates"`
}

type partitionJSON struct {
	Name         string      `json:"name"`
	Count        int         `json:"count"`
	ExpenseCount int         `json:"expense_count"`
	TotalUSD     json.Number `json:"total_usd"`
}

type sectionJSON struct {
	Name         string         `json:"name"`
	Layout       string         `json:"layout"`
	Rows         int            `json:"rows"`
	DateMarkers  int            `json:"date_markers"`
	Transactions int            `json:"transactions"`
	Skipped      map[string]int `json:"skipped"`
}

type transactionJSON struct {
	ID                  string       `json:"id"`
	Source              string       `json:"source"`
	Line                int          `json:"line"`
	Date                string       `json:"date"`
	Description         string       `json:"description"`
	Merchant            string       `json:"merchant"`
	PaymentMethod       string       `json:"payment_method"`
	Amount              json.Number  `json:"amount"`
	Currency            string       `json:"currency"`
	AmountUSD           *json.Number `json:"amount_usd"`
	TransactionType     string       `json:"transaction_type"`
	BusinessExpense     bool         `json:"business_expense"`
	Tags                []string     `json:"tags"`
	ReimbursementStatus *string      `json:"reimbursement_status,omitempty"`
}

// Encode renders the document as indented JSON terminated by a newline.
func Encode(doc Document) ([]byte, error) {
	out := documentJSON{
		Summary:      encodeSummary(doc.Summary),
		Transactions: make([]transactionJSON, 0, len(doc.Transactions)),
	}
	for _, tx := range doc.Transactions {
		out.Transactions = append(out.Transactions, encodeTransaction(tx))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("Encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a document produced by Encode.
func Decode(data []byte) (Document, error) {
	var in documentJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return Document{}, fmt.Errorf("Decode: %w", err)
	}

	summary, err := decodeSummary(in.Summary)
	if err != nil {
		return Document{}, fmt.Errorf("Decode: summary: %w", err)
	}

	doc := Document{
		Summary:      summary,
		Transactions: make([]domain.Transaction, 0, len(in.Transactions)),
	}
	for i, raw := range in.Transactions {
		tx, err := decodeTransaction(raw)
		if err != nil {
			return Document{}, fmt.Errorf("Decode: transaction %d: %w", i, err)
		}
		doc.Transactions = append(doc.Transactions, tx)
	}
	return doc, nil
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func encodeSummary(s Summary) summaryJSON {
	out := summaryJSON{
		TotalTransactions: s.TotalTransactions,
		ExpenseCount:      s.ExpenseCount,
		IncomeCount:       s.IncomeCount,
		TotalExpenseUSD:   number(s.TotalExpenseUSD),
		ExpectedTotalUSD:  number(s.ExpectedTotalUSD),
		Difference:        number(s.Difference),
		EstimatedUSD:      number(s.EstimatedUSD),
		DifferencePercent: number(s.DifferencePercent),
		WithinTolerance:   s.WithinTolerance,
		ConversionRate:    number(s.ConversionRate),
		TolerancePercent:  number(s.TolerancePercent),
		Tags:              encodePartitions(s.Tags),
		Sources:           encodePartitions(s.Sources),
		Sections:          make([]sectionJSON, 0, len(s.Sections)),
		Duplicates:        s.Duplicates,
	}
	for _, sec := range s.Sections {
		skipped := sec.Skipped
		if skipped == nil {
			skipped = map[string]int{}
		}
		out.Sections = append(out.Sections, sectionJSON{
			Name:         sec.Name,
			Layout:       sec.Layout,
			Rows:         sec.Rows,
			DateMarkers:  sec.DateMarkers,
			Transactions: sec.Transactions,
			Skipped:      skipped,
		})
	}
	return out
}

func encodePartitions(parts []reconcile.Partition) []partitionJSON {
	out := make([]partitionJSON, 0, len(parts))
	for _, p := range parts {
		out = append(out, partitionJSON{
			Name:         p.Name,
			Count:        p.Count,
			ExpenseCount: p.ExpenseCount,
			TotalUSD:     number(p.TotalUSD),
		})
	}
	return out
}

func encodeTransaction(tx domain.Transaction) transactionJSON {
	out := transactionJSON{
		ID:              tx.ID,
		Source:          tx.Source,
		Line:            tx.Line,
		Date:            tx.Date,
		Description:     tx.Description,
		Merchant:        tx.Merchant,
		PaymentMethod:   tx.PaymentMethod,
		Amount:          number(tx.Amount),
		Currency:        string(tx.Currency),
		TransactionType: string(tx.Type),
		BusinessExpense: tx.BusinessExpense,
		Tags:            tx.Tags,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if tx.AmountUSD.Valid {
		n := number(tx.AmountUSD.Decimal)
		out.AmountUSD = &n
	}
	if tx.ReimbursementStatus != nil {
		status := *tx.ReimbursementStatus
		out.ReimbursementStatus = &status
	}
	return out
}

func decodeSummary(in summaryJSON) (Summary, error) {
	var s Summary
	var err error

	s.TotalTransactions = in.TotalTransactions
	s.ExpenseCount = in.ExpenseCount
	s.IncomeCount = in.IncomeCount
	s.WithinTolerance = in.WithinTolerance
	s.Duplicates = in.Duplicates

	fields := []struct {
		name string
		in   json.Number
		out  *decimal.Decimal
	}{
		{"total_expense_usd", in.TotalExpenseUSD, &s.TotalExpenseUSD},
		{"expected_total_usd", in.ExpectedTotalUSD, &s.ExpectedTotalUSD},
		{"difference", in.Difference, &s.Difference},
		{"estimated_usd", in.EstimatedUSD, &s.EstimatedUSD},
		{"difference_percent", in.DifferencePercent, &s.DifferencePercent},
		{"conversion_rate", in.ConversionRate, &s.ConversionRate},
		{"tolerance_percent", in.TolerancePercent, &s.TolerancePercent},
	}
	for _, f := range fields {
		if *f.out, err = parseNumber(f.in); err != nil {
			return Summary{}, fmt.Errorf("%s: %w", f.name, err)
		}
	}

	if s.Tags, err = decodePartitions(in.Tags); err != nil {
		return Summary{}, fmt.Errorf("tags: %w", err)
	}
	if s.Sources, err = decodePartitions(in.Sources); err != nil {
		return Summary{}, fmt.Errorf("sources: %w", err)
	}

	s.Sections = make([]SectionSummary, 0, len(in.Sections))
	for _, sec := range in.Sections {
		s.Sections = append(s.Sections, SectionSummary{
			Name:         sec.Name,
			Layout:       sec.Layout,
			Rows:         sec.Rows,
			DateMarkers:  sec.DateMarkers,
			Transactions: sec.Transactions,
			Skipped:      sec.Skipped,
		})
	}
	return s, nil
}

func decodePartitions(in []partitionJSON) ([]reconcile.Partition, error) {
	out := make([]reconcile.Partition, 0, len(in))
	for _, p := range in {
		total, err := parseNumber(p.TotalUSD)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name, err)
		}
		out = append(out, reconcile.Partition{
			Name:         p.Name,
			Count:        p.Count,
			ExpenseCount: p.ExpenseCount,
			TotalUSD:     total,
		})
	}
	return out, nil
}

func decodeTransaction(in transactionJSON) (domain.Transaction, error) {
	amount, err := decimal.NewFromString(string(in.Amount))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("amount: %w", err)
	}

	var amountUSD decimal.NullDecimal
	if in.AmountUSD != nil {
		v, err := decimal.NewFromString(string(*in.AmountUSD))
		if err != nil {
			return domain.Transaction{}, fmt.Errorf("amount_usd: %w", err)
		}
		amountUSD = decimal.NullDecimal{Decimal: v, Valid: true}
	}

	currency := domain.Currency(in.Currency)
	if currency != domain.CurrencyUSD && currency != domain.CurrencyTHB {
		return domain.Transaction{}, fmt.Errorf("unknown currency %q", in.Currency)
	}
	txType := domain.TransactionType(in.TransactionType)
	if txType != domain.TypeExpense && txType != domain.TypeIncome {
		return domain.Transaction{}, fmt.Errorf("unknown transaction_type %q", in.TransactionType)
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	tx := domain.Transaction{
		ID:              in.ID,
		Source:          in.Source,
		Line:            in.Line,
		Date:            in.Date,
		Description:     in.Description,
		Merchant:        in.Merchant,
		PaymentMethod:   in.PaymentMethod,
		Amount:          amount,
		Currency:        currency,
		AmountUSD:       amountUSD,
		Type:            txType,
		BusinessExpense: in.BusinessExpense,
		Tags:            tags,
	}
	if in.ReimbursementStatus != nil {
		status := *in.ReimbursementStatus
		tx.ReimbursementStatus = &status
	}
	return tx, nil
}

// parseNumber treats a missing number as zero.
func parseNumber(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(string(n))
}
