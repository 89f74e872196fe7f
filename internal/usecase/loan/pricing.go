package loan

import "github.com/shopspring/decimal"

var (
	baseRate     = decimal.RequireFromString("10.00")
	minRate      = decimal.RequireFromString("5.00")
	maxCreditAdj = decimal.RequireFromString("3.00")
	maxTermAdj   = decimal.RequireFromString("2.00")
	creditStep   = decimal.RequireFromString("0.02") // per point above 650
	termStep     = decimal.RequireFromString("0.1")  // per month above 12
)

// PriceRate derives the annual interest rate from the borrower's credit
// score and the requested term. Scores above 650 earn a discount of 0.02%
// per point (capped at 3%); terms beyond 12 months cost 0.1% per extra
// month (capped at 2%). The rate never drops below 5%.
func PriceRate(creditScore, termMonths int) decimal.Decimal {
	creditAdj := decimal.NewFromInt(int64(creditScore - 650)).Mul(creditStep)
	if creditAdj.GreaterThan(maxCreditAdj) {
		creditAdj = maxCreditAdj
	}
	termAdj := decimal.NewFromInt(int64(termMonths - 12)).Mul(termStep)
	if termAdj.GreaterThan(maxTermAdj) {
		termAdj = maxTermAdj
	}

	rate := baseRate.Sub(creditAdj).Add(termAdj)
	if rate.LessThan(minRate) {
		rate = minRate
	}
	return rate.Round(2)
}

// RiskScore maps a credit score onto the 1..10 risk scale, 10 riskiest.
func RiskScore(creditScore int) int {
	q := creditScore / 80
	if q > 10 {
		q = 10
	}
	return 10 - q
}
