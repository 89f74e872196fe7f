package uow

import (
	"context"

	"peerlend/internal/domain/account"
	"peerlend/internal/domain/loan"
	"peerlend/internal/domain/wallet"
)

// Repos bundles every repository bound to one transaction.
type Repos struct {
	Accounts    account.Repository
	Wallets     wallet.Repository
	Loans       loan.Repository
	Investments loan.InvestmentRepository
	Payments    loan.PaymentRepository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the loan row first, then pass it in; the
	// funding-capacity check and repayment application serialize here
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
