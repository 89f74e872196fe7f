package loan

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// MonthlyPayment computes the fixed installment for a standard amortized
// loan: P * r * (1+r)^n / ((1+r)^n - 1) with r the monthly rate derived
// from the annual percentage rate. A zero rate degenerates to an even
// split of the principal.
//
// The power term is computed in float64 and the result switched back to
// decimal for all monetary arithmetic, rounded to 2dp.
func MonthlyPayment(principal decimal.Decimal, annualRatePct decimal.Decimal, termMonths int) decimal.Decimal {
	if termMonths <= 0 || principal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	monthlyRate := annualRatePct.InexactFloat64() / 100.0 / 12.0
	if monthlyRate == 0 {
		return principal.Div(decimal.NewFromInt(int64(termMonths))).Round(2)
	}

	factor := math.Pow(1+monthlyRate, float64(termMonths))
	payment := principal.InexactFloat64() * monthlyRate * factor / (factor - 1)
	return decimal.NewFromFloat(payment).Round(2)
}

// BuildSchedule materializes the full repayment schedule for a funded loan,
// one installment per month starting one month after start. For periods
// 1..n-1 the interest leg is runningBalance x monthlyRate and principal is
// the remainder of the fixed payment; the final period takes the entire
// remaining balance as principal so the principal legs sum to the loan
// amount exactly, with any residual rounding absorbed into the last
// interest leg.
//
// Callers own idempotence: generate once at funding time and reread the
// stored rows afterwards.
func BuildSchedule(l *Loan, start time.Time) []LoanPayment {
	if l.TermMonths <= 0 || l.Amount.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	monthlyRate := l.InterestRate.Div(hundred).Div(twelve)
	payment := l.MonthlyPayment
	if payment.IsZero() {
		payment = MonthlyPayment(l.Amount, l.InterestRate, l.TermMonths)
	}

	schedule := make([]LoanPayment, 0, l.TermMonths)
	remaining := l.Amount

	for number := 1; number <= l.TermMonths; number++ {
		var principal, interest decimal.Decimal
		if number == l.TermMonths {
			principal = remaining
			interest = payment.Sub(principal)
		} else {
			interest = remaining.Mul(monthlyRate).Round(2)
			principal = payment.Sub(interest)
		}
		remaining = remaining.Sub(principal)

		schedule = append(schedule, LoanPayment{
			LoanID:        l.ID,
			PaymentNumber: number,
			DueDate:       start.AddDate(0, number, 0),
			AmountDue:     payment,
			Principal:     principal,
			Interest:      interest,
			Status:        PaymentPending,
		})
	}

	return schedule
}
