package funding

import (
	"context"
	"errors"
	"log"
	"time"

	accountDomain "peerlend/internal/domain/account"
	"peerlend/internal/domain/event"
	loanDomain "peerlend/internal/domain/loan"
	"peerlend/internal/domain/uow"
	walletDomain "peerlend/internal/domain/wallet"
	walletuc "peerlend/internal/usecase/wallet"
	"peerlend/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Usecase struct {
	uow  uow.UnitOfWork
	sink event.Sink
	now  func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, sink event.Sink) *Usecase {
	return &Usecase{uow: tx, sink: sink, now: time.Now}
}

type InvestmentDTO struct {
	InvestmentID string          `json:"investment_id"`
	LoanID       string          `json:"loan_id"`
	InvestorID   string          `json:"investor_id"`
	Amount       decimal.Decimal `json:"amount"`
	LoanStatus   string          `json:"loan_status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Invest places an investment against a pending loan's remaining capacity.
// The whole check-then-commit runs under the loan row lock, so concurrent
// investors serialize and the funded total can never exceed the cap; an
// overflowing attempt fails with ErrCapacityExceeded instead of being
// truncated. Filling the last slice of capacity flips the loan to funded
// and materializes the repayment schedule.
func (u *Usecase) Invest(ctx context.Context, investorID, loanID string, amount decimal.Decimal) (*InvestmentDTO, error) {
	var (
		dto      *InvestmentDTO
		fundedEv event.Event
	)

	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loanDomain.Loan) error {
		if !amount.IsPositive() {
			return walletDomain.ErrInvalidAmount
		}
		if l.Status != loanDomain.StatusPending {
			return loanDomain.ErrInvalidStateTransition
		}

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

		fundedAmt, err := r.Investments.SumAmountByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(l.Amount.Sub(fundedAmt)) {
			return loanDomain.ErrCapacityExceeded
		}

		if _, err := walletuc.Debit(ctx, r, investorID, walletDomain.KindInvestment, amount,
			"investment in loan", "loan", l.LoanID); err != nil {
			return err
		}

		inv := &loanDomain.Investment{
			InvestmentID: id.NewID32(),
			LoanID:       l.ID,
			InvestorID:   investorID,
			Amount:       amount,
		}
		if err := r.Investments.Create(ctx, inv); err != nil {
			return err
		}

		actor.Investor.TotalInvested = actor.Investor.TotalInvested.Add(amount)
		if err := r.Accounts.SaveInvestorProfile(ctx, actor.Investor); err != nil {
			return err
		}

		if fundedAmt.Add(amount).Equal(l.Amount) {
			if err := u.markFunded(ctx, r, l); err != nil {
				return err
			}
			invs, err := r.Investments.ListByLoanID(ctx, l.ID)
			if err != nil {
				return err
			}
			fundedEv = event.NewLoanFunded(l.LoanID, l.Amount.StringFixed(2), len(invs))
		}

		dto = &InvestmentDTO{
			InvestmentID: inv.InvestmentID,
			LoanID:       l.LoanID,
			InvestorID:   investorID,
			Amount:       inv.Amount,
			LoanStatus:   string(l.Status),
			CreatedAt:    inv.CreatedAt,
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loanDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	u.publish(ctx, fundedEv)
	return dto, nil
}

// markFunded sets dates from the clock and generates the schedule exactly
// once; an already-materialized schedule is left untouched.
func (u *Usecase) markFunded(ctx context.Context, r uow.Repos, l *loanDomain.Loan) error {
	start := u.now().UTC()
	end := start.AddDate(0, l.TermMonths, 0)
	l.Status = loanDomain.StatusFunded
	l.StartDate = &start
	l.EndDate = &end
	if err := r.Loans.Save(ctx, l); err != nil {
		return err
	}

	exists, err := r.Payments.ExistsForLoan(ctx, l.ID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return r.Payments.CreateBatch(ctx, loanDomain.BuildSchedule(l, start))
}

// Cancel withdraws a pending loan and refunds any partial investments, so
// no money is stranded against a loan that will never fund.
func (u *Usecase) Cancel(ctx context.Context, loanID string) error {
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loanDomain.Loan) error {
		if l.Status != loanDomain.StatusPending {
			return loanDomain.ErrInvalidStateTransition
		}

		invs, err := r.Investments.ListByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		for _, inv := range invs {
			if _, err := walletuc.Credit(ctx, r, inv.InvestorID, walletDomain.KindReturn, inv.Amount,
				"refund: loan cancelled", "loan", l.LoanID); err != nil {
				return err
			}
			p, err := r.Accounts.ResolveActor(ctx, inv.InvestorID)
			if err != nil {
				return err
			}
			if p.Investor != nil {
				p.Investor.TotalInvested = p.Investor.TotalInvested.Sub(inv.Amount)
				if err := r.Accounts.SaveInvestorProfile(ctx, p.Investor); err != nil {
					return err
				}
			}
		}

		l.Status = loanDomain.StatusCancelled
		return r.Loans.Save(ctx, l)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return loanDomain.ErrNotFound
	}
	return err
}

func (u *Usecase) publish(ctx context.Context, ev event.Event) {
	if ev == nil || u.sink == nil {
		return
	}
	if err := u.sink.Publish(ctx, ev); err != nil {
		log.Printf("funding: publish %s: %v", ev.EventType(), err)
	}
}
