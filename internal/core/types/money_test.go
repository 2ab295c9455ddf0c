package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.True(t, MustMoney("3.33").Equal(Round2(MustMoney("3.333"))))
	assert.True(t, MustMoney("3.34").Equal(Round2(MustMoney("3.335"))))
	assert.True(t, MustMoney("-3.34").Equal(Round2(MustMoney("-3.335"))))
}

func TestPercent(t *testing.T) {
	tests := []struct {
		amount string
		rate   string
		want   string
	}{
		{"100", "10", "10"},
		{"90", "5", "4.5"},
		{"33.33", "15", "5"},
		{"0", "10", "0"},
	}
	for _, tt := range tests {
		got := Percent(MustMoney(tt.amount), MustMoney(tt.rate))
		assert.True(t, MustMoney(tt.want).Equal(got),
			"Percent(%s, %s) = %s, want %s", tt.amount, tt.rate, got, tt.want)
	}
}

func TestSplitGross(t *testing.T) {
	tests := []struct {
		gross    string
		rate     string
		wantBase string
		wantTax  string
	}{
		{"210.00", "5", "200.00", "10.00"},
		{"105.00", "5", "100.00", "5.00"},
		{"3.33", "5", "3.17", "0.16"},
		{"100.00", "0", "100.00", "0.00"},
	}
	for _, tt := range tests {
		base, tax := SplitGross(MustMoney(tt.gross), MustMoney(tt.rate))
		assert.True(t, MustMoney(tt.wantBase).Equal(base),
			"SplitGross(%s, %s) base = %s, want %s", tt.gross, tt.rate, base, tt.wantBase)
		assert.True(t, MustMoney(tt.wantTax).Equal(tax),
			"SplitGross(%s, %s) tax = %s, want %s", tt.gross, tt.rate, tax, tt.wantTax)
		// Base and tax always recompose the gross exactly.
		assert.True(t, MustMoney(tt.gross).Equal(base.Add(tax)))
	}
}

func TestClampNonNegative(t *testing.T) {
	assert.True(t, Zero().Equal(ClampNonNegative(MustMoney("-5"))))
	assert.True(t, MustMoney("5").Equal(ClampNonNegative(MustMoney("5"))))
	assert.True(t, Zero().Equal(ClampNonNegative(Zero())))
}

func TestMinMoney(t *testing.T) {
	assert.True(t, MustMoney("3").Equal(MinMoney(MustMoney("3"), MustMoney("7"))))
	assert.True(t, MustMoney("3").Equal(MinMoney(MustMoney("7"), MustMoney("3"))))
	assert.True(t, MustMoney("3").Equal(MinMoney(MustMoney("3"), MustMoney("3"))))
}
