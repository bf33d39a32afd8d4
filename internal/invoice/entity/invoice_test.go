package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoney_Format(t *testing.T) {
	tests := []struct {
		money  Money
		amount int64
		want   string
	}{
		{money: Money{Symbol: "Rp", Separator: "."}, amount: 0, want: "Rp 0"},
		{money: Money{Symbol: "Rp", Separator: "."}, amount: 999, want: "Rp 999"},
		{money: Money{Symbol: "Rp", Separator: "."}, amount: 1000, want: "Rp 1.000"},
		{money: Money{Symbol: "Rp", Separator: "."}, amount: 1250000, want: "Rp 1.250.000"},
		{money: Money{Symbol: "$"}, amount: 12345678, want: "$ 12,345,678"},
		{money: Money{}, amount: -45000, want: "-45,000"},
		{money: Money{}, amount: math.MinInt64, want: "-9,223,372,036,854,775,808"},
		{money: Money{}, amount: math.MaxInt64, want: "9,223,372,036,854,775,807"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.money.Format(tt.amount))
		})
	}
}

func TestOrder(t *testing.T) {
	o := Order{ID: "ord-42", Quantity: 3, UnitPrice: 150000}

	assert.Equal(t, int64(450000), o.LineTotal())
	assert.Equal(t, "INV-ORD-42", o.Number())
	assert.Equal(t, "invoice-ord-42.pdf", o.Filename())

	o.Total = 400000
	assert.Equal(t, int64(400000), o.LineTotal())
}
