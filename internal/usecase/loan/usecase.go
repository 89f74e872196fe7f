package loan

import (
	"context"
	"errors"
	"time"

	accountDomain "peerlend/internal/domain/account"
	loanDomain "peerlend/internal/domain/loan"
	"peerlend/internal/domain/uow"
	"peerlend/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Usecase struct{ uow uow.UnitOfWork }

func NewUsecase(tx uow.UnitOfWork) *Usecase { return &Usecase{uow: tx} }

type CreateLoanInput struct {
	BorrowerID            string          `json:"borrower_id"`
	Title                 string          `json:"title"`
	Description           string          `json:"description"`
	Amount                decimal.Decimal `json:"amount"`
	TermMonths            int             `json:"term_months"`
	Purpose               string          `json:"purpose"`
	PurposeDescription    string          `json:"purpose_description"`
	IsSecured             bool            `json:"is_secured"`
	CollateralDescription string          `json:"collateral_description"`
	CollateralValue       decimal.Decimal `json:"collateral_value"`
}

type LoanDTO struct {
	LoanID         string          `json:"loan_id"`
	BorrowerID     string          `json:"borrower_id"`
	Title          string          `json:"title"`
	Amount         decimal.Decimal `json:"amount"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	TermMonths     int             `json:"term_months"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	TotalRepayment decimal.Decimal `json:"total_repayment"`
	RiskScore      int             `json:"risk_score"`
	Status         string          `json:"status"`
	Purpose        string          `json:"purpose"`
	FundedAmount   decimal.Decimal `json:"funded_amount"`
	StartDate      *time.Time      `json:"start_date,omitempty"`
	EndDate        *time.Time      `json:"end_date,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Create prices and opens a loan request. The rate and risk score come from
// the borrower profile's credit score; the borrower must not already have a
// pending loan.
func (u *Usecase) Create(ctx context.Context, in CreateLoanInput) (*LoanDTO, error) {
	if !in.Amount.IsPositive() || in.TermMonths < 1 {
		return nil, errors.New("amount must be positive and term at least one month")
	}
	purpose := loanDomain.Purpose(in.Purpose)
	if purpose == "" {
		purpose = loanDomain.PurposeOther
	}

	var l *loanDomain.Loan
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		actor, err := r.Accounts.ResolveActor(ctx, in.BorrowerID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return accountDomain.ErrNotFound
		}
		if err != nil {
			return err
		}
		if !actor.IsBorrower() {
			return accountDomain.ErrNotBorrower
		}

		// Block if the borrower already has a pending loan.
		pending, err := r.Loans.GetPendingLoanByBorrowerID(ctx, in.BorrowerID)
		switch {
		case err == nil:
			_ = pending
			return loanDomain.ErrPendingLoanExists
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		rate := PriceRate(actor.Borrower.CreditScore, in.TermMonths)
		payment := loanDomain.MonthlyPayment(in.Amount, rate, in.TermMonths)

		l = &loanDomain.Loan{
			LoanID:                id.NewID32(),
			BorrowerID:            in.BorrowerID,
			Title:                 in.Title,
			Description:           in.Description,
			Amount:                in.Amount,
			InterestRate:          rate,
			TermMonths:            in.TermMonths,
			MonthlyPayment:        payment,
			TotalRepayment:        payment.Mul(decimal.NewFromInt(int64(in.TermMonths))),
			RiskScore:             RiskScore(actor.Borrower.CreditScore),
			Status:                loanDomain.StatusPending,
			Purpose:               purpose,
			PurposeDescription:    in.PurposeDescription,
			BorrowerVerified:      actor.Account.KYCVerified,
			IsSecured:             in.IsSecured,
			CollateralDescription: in.CollateralDescription,
			CollateralValue:       in.CollateralValue,
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}

		actor.Borrower.TotalLoans++
		return r.Accounts.SaveBorrowerProfile(ctx, actor.Borrower)
	})
	if err != nil {
		return nil, err
	}
	return toDTO(l, decimal.Zero), nil
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return loanDomain.ErrNotFound
		}
		if err != nil {
			return err
		}
		funded, err := r.Investments.SumAmountByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		dto = toDTO(l, funded)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// GetSchedule returns the materialized repayment schedule. The schedule is
// generated exactly once at funding time; before that there is nothing to
// return.
func (u *Usecase) GetSchedule(ctx context.Context, loanID string) ([]loanDomain.LoanPayment, error) {
	var out []loanDomain.LoanPayment
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return loanDomain.ErrNotFound
		}
		if err != nil {
			return err
		}
		out, err = r.Payments.ListByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		if len(out) == 0 {
			return loanDomain.ErrScheduleNotReady
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func toDTO(l *loanDomain.Loan, funded decimal.Decimal) *LoanDTO {
	return &LoanDTO{
		LoanID:         l.LoanID,
		BorrowerID:     l.BorrowerID,
		Title:          l.Title,
		Amount:         l.Amount,
		InterestRate:   l.InterestRate,
		TermMonths:     l.TermMonths,
		MonthlyPayment: l.MonthlyPayment,
		TotalRepayment: l.TotalRepayment,
		RiskScore:      l.RiskScore,
		Status:         string(l.Status),
		Purpose:        string(l.Purpose),
		FundedAmount:   funded,
		StartDate:      l.StartDate,
		EndDate:        l.EndDate,
		CreatedAt:      l.CreatedAt,
	}
}
