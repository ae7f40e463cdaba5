package pipeline

import (
	"testing"

	"github.com/dvloznov/sheet-import/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestApplyTags(t *testing.T) {
	tests := []struct {
		name     string
		seed     []string
		txType   domain.TransactionType
		business bool
		want     []string
	}{
		{name: "plain expense", txType: domain.TypeExpense, want: []string{}},
		{name: "business expense", txType: domain.TypeExpense, business: true, want: []string{"Business Expense"}},
		{name: "reimbursement", txType: domain.TypeIncome, want: []string{"Reimbursement"}},
		{name: "both", txType: domain.TypeIncome, business: true, want: []string{"Reimbursement", "Business Expense"}},
		{name: "section seed first", seed: []string{"Florida House"}, txType: domain.TypeExpense, want: []string{"Florida House"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyTags(tt.seed, tt.txType, tt.business)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}
