package loan

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// GetByLoanIDForUpdate locks the loan row; the funding-capacity
	// check-then-commit and repayment flows serialize on it.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	GetByID(ctx context.Context, id uint64) (*Loan, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*Loan, error)
	GetPendingLoanByBorrowerID(ctx context.Context, borrowerID string) (*Loan, error)
	Save(ctx context.Context, l *Loan) error
}

type InvestmentRepository interface {
	Create(ctx context.Context, inv *Investment) error
	ListByLoanID(ctx context.Context, loanNumericID uint64) ([]Investment, error)
	ListByInvestorID(ctx context.Context, investorID string) ([]Investment, error)
	SumAmountByLoanID(ctx context.Context, loanNumericID uint64) (decimal.Decimal, error)
}

type PaymentRepository interface {
	CreateBatch(ctx context.Context, payments []LoanPayment) error
	ExistsForLoan(ctx context.Context, loanNumericID uint64) (bool, error)
	ListByLoanID(ctx context.Context, loanNumericID uint64) ([]LoanPayment, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*LoanPayment, error)
	// NextOutstandingForUpdate returns the outstanding (pending or late)
	// installment with the lowest payment number, locked for update.
	NextOutstandingForUpdate(ctx context.Context, loanNumericID uint64) (*LoanPayment, error)
	CountOutstanding(ctx context.Context, loanNumericID uint64) (int64, error)
	Save(ctx context.Context, p *LoanPayment) error

	// Sweep candidate queries. They filter on flags so re-running a sweep
	// naturally converges to an empty candidate set.
	ListDueForReminder(ctx context.Context, from, to time.Time) ([]LoanPayment, error)
	ListOverdue(ctx context.Context, before time.Time) ([]LoanPayment, error)
	ListAutoPayDue(ctx context.Context, by time.Time) ([]LoanPayment, error)

	SumInterestByLoanAndStatus(ctx context.Context, loanNumericID uint64, statuses []PaymentStatus) (decimal.Decimal, error)
}
