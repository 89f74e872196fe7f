package sweep

import (
	"context"
	"log"
	"time"

	"peerlend/internal/domain/event"
	loanDomain "peerlend/internal/domain/loan"
	"peerlend/internal/domain/uow"
	"peerlend/internal/usecase/repayment"

	"github.com/shopspring/decimal"
)

const reminderWindowDays = 3

// lateFeeRate is added to an installment's amount due when it goes late.
var lateFeeRate = decimal.RequireFromString("0.05")

// Repayer is what the auto-pay pass drives; satisfied by the repayment
// usecase.
type Repayer interface {
	Repay(ctx context.Context, loanID string, amount decimal.Decimal) (*repayment.Receipt, error)
}

type Usecase struct {
	uow     uow.UnitOfWork
	repayer Repayer
	sink    event.Sink
}

func NewUsecase(tx uow.UnitOfWork, repayer Repayer, sink event.Sink) *Usecase {
	return &Usecase{uow: tx, repayer: repayer, sink: sink}
}

type ItemError struct {
	LoanID        string `json:"loan_id,omitempty"`
	PaymentNumber int    `json:"payment_number,omitempty"`
	Err           string `json:"error"`
}

type Report struct {
	StartedAt           time.Time   `json:"started_at"`
	RemindersSent       int         `json:"reminders_sent"`
	MarkedLate          int         `json:"marked_late"`
	AutoPayAttempted    int         `json:"auto_pay_attempted"`
	AutoPaySucceeded    int         `json:"auto_pay_succeeded"`
	AutoPayInsufficient int         `json:"auto_pay_insufficient"`
	Errors              []ItemError `json:"errors,omitempty"`
}

// Sweep runs the three batch passes (upcoming reminders, overdue marking,
// auto-pay) against the schedule as of now. Each candidate is processed in
// its own transaction and failure boundary: a bad row lands in the report
// and the sweep moves on. Flags and status guards make re-running a sweep
// converge to a no-op, so duplicate fees and notifications cannot happen.
func (u *Usecase) Sweep(ctx context.Context, now time.Time) (*Report, error) {
	now = now.UTC()
	rep := &Report{StartedAt: now}

	u.remindUpcoming(ctx, now, rep)
	u.markOverdue(ctx, now, rep)
	u.runAutoPay(ctx, now, rep)

	log.Printf("sweep: reminders=%d late=%d autopay=%d/%d errors=%d",
		rep.RemindersSent, rep.MarkedLate, rep.AutoPaySucceeded, rep.AutoPayAttempted, len(rep.Errors))
	return rep, nil
}

func (u *Usecase) remindUpcoming(ctx context.Context, now time.Time, rep *Report) {
	candidates := u.listCandidates(ctx, rep, func(r uow.Repos) ([]loanDomain.LoanPayment, error) {
		return r.Payments.ListDueForReminder(ctx, now, now.AddDate(0, 0, reminderWindowDays))
	})

	for _, c := range candidates {
		var ev event.Event
		err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
			p, err := r.Payments.GetByIDForUpdate(ctx, c.ID)
			if err != nil {
				return err
			}
			// re-check under lock: another sweep may have won
			if p.Status != loanDomain.PaymentPending || p.ReminderSent {
				return nil
			}
			l, err := r.Loans.GetByID(ctx, p.LoanID)
			if err != nil {
				return err
			}
			sentAt := now
			p.ReminderSent = true
			p.ReminderSentAt = &sentAt
			if err := r.Payments.Save(ctx, p); err != nil {
				return err
			}
			ev = event.NewReminderDue(l.LoanID, p.PaymentNumber, p.DueDate, p.AmountDue.StringFixed(2))
			return nil
		})
		if err != nil {
			rep.Errors = append(rep.Errors, itemError(c, err))
			continue
		}
		if ev != nil {
			rep.RemindersSent++
			u.publish(ctx, ev)
		}
	}
}

func (u *Usecase) markOverdue(ctx context.Context, now time.Time, rep *Report) {
	candidates := u.listCandidates(ctx, rep, func(r uow.Repos) ([]loanDomain.LoanPayment, error) {
		return r.Payments.ListOverdue(ctx, now)
	})

	for _, c := range candidates {
		var ev event.Event
		marked := false
		err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
			p, err := r.Payments.GetByIDForUpdate(ctx, c.ID)
			if err != nil {
				return err
			}
			if p.Status != loanDomain.PaymentPending || !p.DueDate.Before(now) {
				return nil
			}
			l, err := r.Loans.GetByIDForUpdate(ctx, p.LoanID)
			if err != nil {
				return err
			}

			fee := p.AmountDue.Mul(lateFeeRate).Round(2)
			daysOverdue := int(now.Sub(p.DueDate).Hours() / 24)

			p.Status = loanDomain.PaymentLate
			p.LateFeeAmount = fee
			p.AmountDue = p.AmountDue.Add(fee)

			l.TimesLateCount++
			l.DaysLateCount += daysOverdue
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}

			if !p.LateNoticeSent {
				sentAt := now
				p.LateNoticeSent = true
				p.LateNoticeSentAt = &sentAt
				ev = event.NewLateNoticeDue(l.LoanID, p.PaymentNumber, daysOverdue,
					fee.StringFixed(2), p.AmountDue.StringFixed(2))
			}
			if err := r.Payments.Save(ctx, p); err != nil {
				return err
			}
			marked = true
			return nil
		})
		if err != nil {
			rep.Errors = append(rep.Errors, itemError(c, err))
			continue
		}
		if marked {
			rep.MarkedLate++
		}
		u.publish(ctx, ev)
	}
}

func (u *Usecase) runAutoPay(ctx context.Context, now time.Time, rep *Report) {
	candidates := u.listCandidates(ctx, rep, func(r uow.Repos) ([]loanDomain.LoanPayment, error) {
		return r.Payments.ListAutoPayDue(ctx, now)
	})

	for _, c := range candidates {
		var (
			loanID    string
			amountDue decimal.Decimal
			eligible  bool
			funded    bool
		)
		err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
			p, err := r.Payments.GetByIDForUpdate(ctx, c.ID)
			if err != nil {
				return err
			}
			if !p.Outstanding() || !p.AutoPayEnabled || p.DueDate.After(now) {
				return nil
			}
			l, err := r.Loans.GetByID(ctx, p.LoanID)
			if err != nil {
				return err
			}
			w, err := r.Wallets.GetByOwnerID(ctx, l.BorrowerID)
			if err != nil {
				return err
			}
			loanID = l.LoanID
			amountDue = p.AmountDue
			eligible = true
			funded = w.Balance.GreaterThanOrEqual(p.AmountDue)
			return nil
		})
		if err != nil {
			rep.Errors = append(rep.Errors, itemError(c, err))
			continue
		}
		if !eligible {
			continue
		}
		if !funded {
			// reported, not retried within this sweep
			rep.AutoPayInsufficient++
			continue
		}

		rep.AutoPayAttempted++
		if _, err := u.repayer.Repay(ctx, loanID, amountDue); err != nil {
			rep.Errors = append(rep.Errors, ItemError{LoanID: loanID, PaymentNumber: c.PaymentNumber, Err: err.Error()})
			continue
		}
		rep.AutoPaySucceeded++
	}
}

func (u *Usecase) listCandidates(ctx context.Context, rep *Report, query func(r uow.Repos) ([]loanDomain.LoanPayment, error)) []loanDomain.LoanPayment {
	var out []loanDomain.LoanPayment
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		out, err = query(r)
		return err
	})
	if err != nil {
		rep.Errors = append(rep.Errors, ItemError{Err: err.Error()})
		return nil
	}
	return out
}

func (u *Usecase) publish(ctx context.Context, ev event.Event) {
	if ev == nil || u.sink == nil {
		return
	}
	if err := u.sink.Publish(ctx, ev); err != nil {
		log.Printf("sweep: publish %s: %v", ev.EventType(), err)
	}
}

func itemError(p loanDomain.LoanPayment, err error) ItemError {
	return ItemError{PaymentNumber: p.PaymentNumber, Err: err.Error()}
}
