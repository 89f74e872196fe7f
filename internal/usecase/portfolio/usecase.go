package portfolio

import (
	"context"
	"errors"
	"time"

	accountDomain "peerlend/internal/domain/account"
	loanDomain "peerlend/internal/domain/loan"
	"peerlend/internal/domain/uow"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Usecase struct {
	uow uow.UnitOfWork
	now func() time.Time
}

func NewUsecase(tx uow.UnitOfWork) *Usecase { return &Usecase{uow: tx, now: time.Now} }

// Analysis is a read-only snapshot derived from ledger data on demand. It
// is never persisted, so it cannot drift from the investments and payments
// it summarizes.
type Analysis struct {
	InvestorID           string                     `json:"investor_id"`
	TotalInvested        decimal.Decimal            `json:"total_invested"`
	TotalEarnings        decimal.Decimal            `json:"total_earnings"`
	ExpectedEarnings     decimal.Decimal            `json:"expected_earnings"`
	AnnualReturnRate     decimal.Decimal            `json:"annual_return_rate"`
	AvgRiskScore         decimal.Decimal            `json:"avg_risk_score"`
	RiskAdjustedReturn   decimal.Decimal            `json:"risk_adjusted_return"`
	LoanCount            int                        `json:"loan_count"`
	LoansAtRiskCount     int                        `json:"loans_at_risk_count"`
	AvgInvestmentAmount  decimal.Decimal            `json:"avg_investment_amount"`
	LargestInvestmentPct decimal.Decimal            `json:"largest_investment_percentage"`
	PurposeDistribution  map[string]decimal.Decimal `json:"purpose_distribution"`
	RiskDistribution     map[string]decimal.Decimal `json:"risk_distribution"`
	TermDistribution     map[string]decimal.Decimal `json:"term_distribution"`
	GeneratedAt          time.Time                  `json:"generated_at"`
}

// Analyze aggregates the investor's open positions: totals, realized and
// expected interest, a simple annualized return, and purpose/risk/term
// concentration. Open means the underlying loan is still pending, funded,
// or active.
func (u *Usecase) Analyze(ctx context.Context, investorID string) (*Analysis, error) {
	out := &Analysis{
		InvestorID:          investorID,
		TotalInvested:       decimal.Zero,
		TotalEarnings:       decimal.Zero,
		ExpectedEarnings:    decimal.Zero,
		AnnualReturnRate:    decimal.Zero,
		AvgRiskScore:        decimal.Zero,
		RiskAdjustedReturn:  decimal.Zero,
		AvgInvestmentAmount: decimal.Zero,
		LargestInvestmentPct: decimal.Zero,
		PurposeDistribution: map[string]decimal.Decimal{},
		RiskDistribution:    map[string]decimal.Decimal{},
		TermDistribution:    map[string]decimal.Decimal{},
		GeneratedAt:         u.now().UTC(),
	}

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		actor, err := r.Accounts.ResolveActor(ctx, investorID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return accountDomain.ErrNotFound
		}
		if err != nil {
			return err
		}
		if !actor.IsInvestor() {
			return accountDomain.ErrNotInvestor
		}
		out.TotalEarnings = actor.Investor.TotalEarnings

		invs, err := r.Investments.ListByInvestorID(ctx, investorID)
		if err != nil {
			return err
		}

		var (
			riskSum        int
			largest        = decimal.Zero
			firstInvested  time.Time
		)
		for _, inv := range invs {
			if firstInvested.IsZero() || inv.CreatedAt.Before(firstInvested) {
				firstInvested = inv.CreatedAt
			}

			l, err := r.Loans.GetByID(ctx, inv.LoanID)
			if err != nil {
				return err
			}
			if !openStatus(l.Status) {
				continue
			}

			out.LoanCount++
			out.TotalInvested = out.TotalInvested.Add(inv.Amount)
			riskSum += l.RiskScore
			if l.RiskScore > 7 {
				out.LoansAtRiskCount++
			}
			if inv.Amount.GreaterThan(largest) {
				largest = inv.Amount
			}

			outstandingInterest, err := r.Payments.SumInterestByLoanAndStatus(ctx, l.ID,
				[]loanDomain.PaymentStatus{loanDomain.PaymentPending, loanDomain.PaymentLate})
			if err != nil {
				return err
			}
			out.ExpectedEarnings = out.ExpectedEarnings.Add(
				outstandingInterest.Mul(inv.Share(l.Amount)).Round(2))

			bump(out.PurposeDistribution, string(l.Purpose), inv.Amount)
			bump(out.RiskDistribution, riskBucket(l.RiskScore), inv.Amount)
			bump(out.TermDistribution, termBucket(l.TermMonths), inv.Amount)
		}

		if out.LoanCount > 0 {
			n := decimal.NewFromInt(int64(out.LoanCount))
			out.AvgRiskScore = decimal.NewFromInt(int64(riskSum)).Div(n).Round(2)
			out.AvgInvestmentAmount = out.TotalInvested.Div(n).Round(2)
			if out.TotalInvested.IsPositive() {
				out.LargestInvestmentPct = largest.Div(out.TotalInvested).Mul(hundred).Round(2)
			}
		}

		if out.TotalInvested.IsPositive() && !firstInvested.IsZero() {
			out.AnnualReturnRate = annualizedReturn(out.TotalEarnings, out.TotalInvested,
				u.now().UTC().Sub(firstInvested))
			if out.AvgRiskScore.IsPositive() {
				out.RiskAdjustedReturn = out.AnnualReturnRate.Div(out.AvgRiskScore).Round(2)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var (
	hundred       = decimal.NewFromInt(100)
	daysPerYear   = decimal.NewFromInt(365)
	returnRateCap = decimal.NewFromInt(100)
)

// annualizedReturn is a simple extrapolation, capped at 100% for display.
func annualizedReturn(earnings, invested decimal.Decimal, held time.Duration) decimal.Decimal {
	days := int64(held.Hours() / 24)
	if days <= 0 {
		return decimal.Zero
	}
	rate := earnings.Div(invested).
		Mul(daysPerYear.Div(decimal.NewFromInt(days))).
		Mul(hundred).
		Round(2)
	if rate.GreaterThan(returnRateCap) {
		return returnRateCap
	}
	return rate
}

func openStatus(s loanDomain.Status) bool {
	return s == loanDomain.StatusPending || s == loanDomain.StatusFunded || s == loanDomain.StatusActive
}

func riskBucket(score int) string {
	switch {
	case score <= 3:
		return "low_risk"
	case score <= 7:
		return "medium_risk"
	default:
		return "high_risk"
	}
}

func termBucket(months int) string {
	switch {
	case months <= 12:
		return "short_term"
	case months <= 36:
		return "medium_term"
	default:
		return "long_term"
	}
}

func bump(m map[string]decimal.Decimal, key string, amount decimal.Decimal) {
	cur, ok := m[key]
	if !ok {
		cur = decimal.Zero
	}
	m[key] = cur.Add(amount)
}
