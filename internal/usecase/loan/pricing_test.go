package loan

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPriceRate(t *testing.T) {
	cases := []struct {
		name  string
		score int
		term  int
		want  string
	}{
		{"baseline score and term", 650, 12, "10"},
		{"good credit discounts", 750, 12, "8"},
		{"credit discount capped at 3", 900, 12, "7"},
		{"long term costs extra", 650, 24, "11.2"},
		{"term premium capped at 2", 650, 60, "12"},
		{"poor credit raises the rate", 550, 12, "12"},
		{"both adjustments", 750, 24, "9.2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PriceRate(tc.score, tc.term)
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("PriceRate(%d, %d) = %s, want %s", tc.score, tc.term, got, tc.want)
			}
		})
	}
}

func TestRiskScore(t *testing.T) {
	cases := []struct {
		score int
		want  int
	}{
		{650, 2},
		{800, 0},
		{560, 3},
		{400, 5},
		{0, 10},
		{900, 0}, // quotient capped at 10
	}
	for _, tc := range cases {
		if got := RiskScore(tc.score); got != tc.want {
			t.Fatalf("RiskScore(%d) = %d, want %d", tc.score, got, tc.want)
		}
	}
}
