package expense

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewExpense_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ne      NewExpense
		wantErr bool
	}{
		{name: "valid", ne: NewExpense{Title: "Chalk", Amount: decimal.NewFromInt(300)}},
		{name: "zero amount", ne: NewExpense{Title: "Volunteer", Amount: decimal.Zero}},
		{name: "blank title", ne: NewExpense{Title: "  ", Amount: decimal.NewFromInt(1)}, wantErr: true},
		{name: "negative amount", ne: NewExpense{Title: "Refund", Amount: decimal.NewFromInt(-5)}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ne.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTotal(t *testing.T) {
	got := Total([]Expense{{Amount: decimal.NewFromInt(300)}, {Amount: decimal.RequireFromString("49.5")}})
	assert.True(t, got.Equal(decimal.RequireFromString("349.5")))
	assert.True(t, Total(nil).IsZero())
}
