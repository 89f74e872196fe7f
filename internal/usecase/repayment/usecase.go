package repayment

import (
	"context"
	"errors"
	"log"
	"time"

	"peerlend/internal/domain/event"
	loanDomain "peerlend/internal/domain/loan"
	"peerlend/internal/domain/uow"
	walletDomain "peerlend/internal/domain/wallet"
	walletuc "peerlend/internal/usecase/wallet"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// platformFeeRate is the platform's cut of each installment's interest leg.
var platformFeeRate = decimal.RequireFromString("0.02")

type Usecase struct {
	uow             uow.UnitOfWork
	sink            event.Sink
	platformOwnerID string
	now             func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, sink event.Sink, platformOwnerID string) *Usecase {
	return &Usecase{uow: tx, sink: sink, platformOwnerID: platformOwnerID, now: time.Now}
}

type Receipt struct {
	LoanID        string          `json:"loan_id"`
	PaymentNumber int             `json:"payment_number"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	PlatformFee   decimal.Decimal `json:"platform_fee"`
	Distributed   decimal.Decimal `json:"distributed"`
	LoanStatus    string          `json:"loan_status"`
	PaymentDate   time.Time       `json:"payment_date"`
}

// Repay applies a borrower payment to the earliest outstanding installment
// and distributes the proceeds, all in one transaction under the loan row
// lock:
//
//	platformFee   = interest x 2%
//	distributable = amount - platformFee
//	investor i    = distributable x (investment_i / loan amount)
//
// Shares are derived live from investment amounts, never from cached
// percentages. Whatever rounding remainder the per-investor 2dp rounding
// leaves stays in the platform fee bucket; it is a rounding sink, not a
// leak. Paying the last outstanding installment retires the loan.
func (u *Usecase) Repay(ctx context.Context, loanID string, amount decimal.Decimal) (*Receipt, error) {
	var (
		receipt  *Receipt
		repaidEv event.Event
	)

	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loanDomain.Loan) error {
		if !amount.IsPositive() {
			return walletDomain.ErrInvalidAmount
		}
		if l.Status != loanDomain.StatusFunded && l.Status != loanDomain.StatusActive {
			return loanDomain.ErrInvalidStateTransition
		}

		p, err := r.Payments.NextOutstandingForUpdate(ctx, l.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return loanDomain.ErrNoOutstandingPayment
		}
		if err != nil {
			return err
		}

		if _, err := walletuc.Debit(ctx, r, l.BorrowerID, walletDomain.KindWithdrawal, amount,
			"loan repayment", "loan", l.LoanID); err != nil {
			return err
		}

		paidAt := u.now().UTC()
		p.AmountPaid = amount
		p.PaymentDate = &paidAt
		p.Status = loanDomain.PaymentPaid
		if err := r.Payments.Save(ctx, p); err != nil {
			return err
		}

		fee := p.Interest.Mul(platformFeeRate).Round(2)
		distributable := amount.Sub(fee)

		distributed, err := u.distribute(ctx, r, l, p, distributable)
		if err != nil {
			return err
		}

		if err := u.creditPlatform(ctx, r, l, fee); err != nil {
			return err
		}

		outstanding, err := r.Payments.CountOutstanding(ctx, l.ID)
		if err != nil {
			return err
		}
		switch {
		case outstanding == 0:
			l.Status = loanDomain.StatusRepaid
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
			repaidEv = event.NewLoanRepaid(l.LoanID)
		case l.Status == loanDomain.StatusFunded:
			l.Status = loanDomain.StatusActive
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
		}

		receipt = &Receipt{
			LoanID:        l.LoanID,
			PaymentNumber: p.PaymentNumber,
			AmountPaid:    amount,
			PlatformFee:   fee,
			Distributed:   distributed,
			LoanStatus:    string(l.Status),
			PaymentDate:   paidAt,
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loanDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	u.publish(ctx, repaidEv)
	return receipt, nil
}

// distribute pays each investor their live pro-rata slice of the
// distributable amount and accrues their interest earnings.
func (u *Usecase) distribute(ctx context.Context, r uow.Repos, l *loanDomain.Loan, p *loanDomain.LoanPayment, distributable decimal.Decimal) (decimal.Decimal, error) {
	invs, err := r.Investments.ListByLoanID(ctx, l.ID)
	if err != nil {
		return decimal.Zero, err
	}

	distributed := decimal.Zero
	for _, inv := range invs {
		share := inv.Share(l.Amount)
		payout := distributable.Mul(share).Round(2)
		if payout.IsPositive() {
			if _, err := walletuc.Credit(ctx, r, inv.InvestorID, walletDomain.KindReturn, payout,
				"repayment distribution", "loan", l.LoanID); err != nil {
				return decimal.Zero, err
			}
			distributed = distributed.Add(payout)
		}

		actor, err := r.Accounts.ResolveActor(ctx, inv.InvestorID)
		if err != nil {
			return decimal.Zero, err
		}
		if actor.Investor != nil {
			actor.Investor.TotalEarnings = actor.Investor.TotalEarnings.Add(p.Interest.Mul(share).Round(2))
			if err := r.Accounts.SaveInvestorProfile(ctx, actor.Investor); err != nil {
				return decimal.Zero, err
			}
		}
	}
	return distributed, nil
}

// creditPlatform is best-effort: a platform account may not exist in every
// deployment, and its absence never fails a repayment.
func (u *Usecase) creditPlatform(ctx context.Context, r uow.Repos, l *loanDomain.Loan, fee decimal.Decimal) error {
	if !fee.IsPositive() || u.platformOwnerID == "" {
		return nil
	}
	_, err := walletuc.Credit(ctx, r, u.platformOwnerID, walletDomain.KindFee, fee,
		"platform fee", "loan", l.LoanID)
	if errors.Is(err, walletDomain.ErrNotFound) {
		return nil
	}
	return err
}

// SetAutoPay toggles automatic repayment on every outstanding installment
// of the loan.
func (u *Usecase) SetAutoPay(ctx context.Context, loanID string, enabled bool) error {
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loanDomain.Loan) error {
		payments, err := r.Payments.ListByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		for i := range payments {
			p := &payments[i]
			if !p.Outstanding() || p.AutoPayEnabled == enabled {
				continue
			}
			p.AutoPayEnabled = enabled
			if err := r.Payments.Save(ctx, p); err != nil {
				return err
			}
		}
		return nil
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
		log.Printf("repayment: publish %s: %v", ev.EventType(), err)
	}
}
