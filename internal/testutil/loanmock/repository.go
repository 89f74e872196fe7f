package loanmock

import (
	"context"
	"time"

	domain "peerlend/internal/domain/loan"

	"github.com/shopspring/decimal"
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Only methods you need are included; add more as tests require.
type Repo struct {
	CreateFn                     func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn                func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn       func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByIDFn                    func(ctx context.Context, id uint64) (*domain.Loan, error)
	GetByIDForUpdateFn           func(ctx context.Context, id uint64) (*domain.Loan, error)
	GetPendingLoanByBorrowerIDFn func(ctx context.Context, borrowerID string) (*domain.Loan, error)
	SaveFn                       func(ctx context.Context, l *domain.Loan) error
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}
func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled // or errors.New("not implemented")
}
func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, context.Canceled
}
func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}
func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}
func (m *Repo) GetPendingLoanByBorrowerID(ctx context.Context, borrowerID string) (*domain.Loan, error) {
	if m.GetPendingLoanByBorrowerIDFn != nil {
		return m.GetPendingLoanByBorrowerIDFn(ctx, borrowerID)
	}
	return nil, context.Canceled
}
func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

// InvestmentRepo is a function-backed mock for domain.InvestmentRepository.
type InvestmentRepo struct {
	CreateFn            func(ctx context.Context, inv *domain.Investment) error
	ListByLoanIDFn      func(ctx context.Context, loanNumericID uint64) ([]domain.Investment, error)
	ListByInvestorIDFn  func(ctx context.Context, investorID string) ([]domain.Investment, error)
	SumAmountByLoanIDFn func(ctx context.Context, loanNumericID uint64) (decimal.Decimal, error)
}

func (m *InvestmentRepo) Create(ctx context.Context, inv *domain.Investment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, inv)
	}
	return nil
}
func (m *InvestmentRepo) ListByLoanID(ctx context.Context, loanNumericID uint64) ([]domain.Investment, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanNumericID)
	}
	return nil, context.Canceled
}
func (m *InvestmentRepo) ListByInvestorID(ctx context.Context, investorID string) ([]domain.Investment, error) {
	if m.ListByInvestorIDFn != nil {
		return m.ListByInvestorIDFn(ctx, investorID)
	}
	return nil, context.Canceled
}
func (m *InvestmentRepo) SumAmountByLoanID(ctx context.Context, loanNumericID uint64) (decimal.Decimal, error) {
	if m.SumAmountByLoanIDFn != nil {
		return m.SumAmountByLoanIDFn(ctx, loanNumericID)
	}
	return decimal.Zero, context.Canceled
}

// PaymentRepo is a function-backed mock for domain.PaymentRepository.
type PaymentRepo struct {
	CreateBatchFn                func(ctx context.Context, payments []domain.LoanPayment) error
	ExistsForLoanFn              func(ctx context.Context, loanNumericID uint64) (bool, error)
	ListByLoanIDFn               func(ctx context.Context, loanNumericID uint64) ([]domain.LoanPayment, error)
	GetByIDForUpdateFn           func(ctx context.Context, id uint64) (*domain.LoanPayment, error)
	NextOutstandingForUpdateFn   func(ctx context.Context, loanNumericID uint64) (*domain.LoanPayment, error)
	CountOutstandingFn           func(ctx context.Context, loanNumericID uint64) (int64, error)
	SaveFn                       func(ctx context.Context, p *domain.LoanPayment) error
	ListDueForReminderFn         func(ctx context.Context, from, to time.Time) ([]domain.LoanPayment, error)
	ListOverdueFn                func(ctx context.Context, before time.Time) ([]domain.LoanPayment, error)
	ListAutoPayDueFn             func(ctx context.Context, by time.Time) ([]domain.LoanPayment, error)
	SumInterestByLoanAndStatusFn func(ctx context.Context, loanNumericID uint64, statuses []domain.PaymentStatus) (decimal.Decimal, error)
}

func (m *PaymentRepo) CreateBatch(ctx context.Context, payments []domain.LoanPayment) error {
	if m.CreateBatchFn != nil {
		return m.CreateBatchFn(ctx, payments)
	}
	return nil
}
func (m *PaymentRepo) ExistsForLoan(ctx context.Context, loanNumericID uint64) (bool, error) {
	if m.ExistsForLoanFn != nil {
		return m.ExistsForLoanFn(ctx, loanNumericID)
	}
	return false, nil
}
func (m *PaymentRepo) ListByLoanID(ctx context.Context, loanNumericID uint64) ([]domain.LoanPayment, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanNumericID)
	}
	return nil, context.Canceled
}
func (m *PaymentRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.LoanPayment, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}
func (m *PaymentRepo) NextOutstandingForUpdate(ctx context.Context, loanNumericID uint64) (*domain.LoanPayment, error) {
	if m.NextOutstandingForUpdateFn != nil {
		return m.NextOutstandingForUpdateFn(ctx, loanNumericID)
	}
	return nil, context.Canceled
}
func (m *PaymentRepo) CountOutstanding(ctx context.Context, loanNumericID uint64) (int64, error) {
	if m.CountOutstandingFn != nil {
		return m.CountOutstandingFn(ctx, loanNumericID)
	}
	return 0, nil
}
func (m *PaymentRepo) Save(ctx context.Context, p *domain.LoanPayment) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}
func (m *PaymentRepo) ListDueForReminder(ctx context.Context, from, to time.Time) ([]domain.LoanPayment, error) {
	if m.ListDueForReminderFn != nil {
		return m.ListDueForReminderFn(ctx, from, to)
	}
	return nil, nil
}
func (m *PaymentRepo) ListOverdue(ctx context.Context, before time.Time) ([]domain.LoanPayment, error) {
	if m.ListOverdueFn != nil {
		return m.ListOverdueFn(ctx, before)
	}
	return nil, nil
}
func (m *PaymentRepo) ListAutoPayDue(ctx context.Context, by time.Time) ([]domain.LoanPayment, error) {
	if m.ListAutoPayDueFn != nil {
		return m.ListAutoPayDueFn(ctx, by)
	}
	return nil, nil
}
func (m *PaymentRepo) SumInterestByLoanAndStatus(ctx context.Context, loanNumericID uint64, statuses []domain.PaymentStatus) (decimal.Decimal, error) {
	if m.SumInterestByLoanAndStatusFn != nil {
		return m.SumInterestByLoanAndStatusFn(ctx, loanNumericID, statuses)
	}
	return decimal.Zero, nil
}
