// Package memuow is an in-memory UnitOfWork for usecase tests. It backs all
// five repositories with slices guarded by one mutex: WithinTx and
// WithinLoanTx hold the mutex for the whole body, so concurrent callers are
// serialized the same way row locks serialize them against MySQL.
//
// It does not roll back on error. Usecases under test must not mutate state
// before their guard checks fail, which is exactly what the row-lock flows
// promise anyway.
package memuow

import (
	"context"
	"sort"
	"sync"
	"time"

	accountDomain "peerlend/internal/domain/account"
	loanDomain "peerlend/internal/domain/loan"
	"peerlend/internal/domain/uow"
	walletDomain "peerlend/internal/domain/wallet"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var _ uow.UnitOfWork = (*Store)(nil)

type Store struct {
	mu sync.Mutex

	accounts         []accountDomain.Account
	investorProfiles []accountDomain.InvestorProfile
	borrowerProfiles []accountDomain.BorrowerProfile
	wallets          []walletDomain.Wallet
	walletTxs        []walletDomain.Transaction
	loans            []loanDomain.Loan
	investments      []loanDomain.Investment
	payments         []loanDomain.LoanPayment

	seq uint64
}

func New() *Store { return &Store{} }

func (s *Store) nextID() uint64 { s.seq++; return s.seq }

func (s *Store) repos() uow.Repos {
	return uow.Repos{
		Accounts:    &accountRepo{s},
		Wallets:     &walletRepo{s},
		Loans:       &loanRepo{s},
		Investments: &investmentRepo{s},
		Payments:    &paymentRepo{s},
	}
}

func (s *Store) WithinTx(_ context.Context, fn func(r uow.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.repos())
}

func (s *Store) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loanDomain.Loan) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.repos()
	l, err := r.Loans.GetByLoanIDForUpdate(ctx, loanID)
	if err != nil {
		return err
	}
	return fn(r, l)
}

// ---- seed and inspection helpers (take the mutex themselves) ----

func (s *Store) SeedAccount(a accountDomain.Account) accountDomain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextID()
	s.accounts = append(s.accounts, a)
	return a
}

func (s *Store) SeedInvestorProfile(p accountDomain.InvestorProfile) accountDomain.InvestorProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID()
	s.investorProfiles = append(s.investorProfiles, p)
	return p
}

func (s *Store) SeedBorrowerProfile(p accountDomain.BorrowerProfile) accountDomain.BorrowerProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID()
	s.borrowerProfiles = append(s.borrowerProfiles, p)
	return p
}

func (s *Store) SeedWallet(w walletDomain.Wallet) walletDomain.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.ID = s.nextID()
	s.wallets = append(s.wallets, w)
	return w
}

func (s *Store) SeedLoan(l loanDomain.Loan) loanDomain.Loan {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = s.nextID()
	s.loans = append(s.loans, l)
	return l
}

func (s *Store) SeedInvestment(inv loanDomain.Investment) loanDomain.Investment {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv.ID = s.nextID()
	s.investments = append(s.investments, inv)
	return inv
}

func (s *Store) SeedPayment(p loanDomain.LoanPayment) loanDomain.LoanPayment {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID()
	s.payments = append(s.payments, p)
	return p
}

func (s *Store) Wallet(ownerID string) (walletDomain.Wallet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.wallets {
		if w.OwnerID == ownerID {
			return w, true
		}
	}
	return walletDomain.Wallet{}, false
}

func (s *Store) WalletTransactions(walletID uint64) []walletDomain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []walletDomain.Transaction
	for _, t := range s.walletTxs {
		if t.WalletID == walletID {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) Loan(loanID string) (loanDomain.Loan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.loans {
		if l.LoanID == loanID {
			return l, true
		}
	}
	return loanDomain.Loan{}, false
}

func (s *Store) Investments(loanNumericID uint64) []loanDomain.Investment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []loanDomain.Investment
	for _, inv := range s.investments {
		if inv.LoanID == loanNumericID {
			out = append(out, inv)
		}
	}
	return out
}

func (s *Store) Payments(loanNumericID uint64) []loanDomain.LoanPayment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []loanDomain.LoanPayment
	for _, p := range s.payments {
		if p.LoanID == loanNumericID {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) InvestorProfile(accountNumericID uint64) (accountDomain.InvestorProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.investorProfiles {
		if p.AccountID == accountNumericID {
			return p, true
		}
	}
	return accountDomain.InvestorProfile{}, false
}

func (s *Store) BorrowerProfile(accountNumericID uint64) (accountDomain.BorrowerProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.borrowerProfiles {
		if p.AccountID == accountNumericID {
			return p, true
		}
	}
	return accountDomain.BorrowerProfile{}, false
}

// ---- account repo ----

type accountRepo struct{ s *Store }

func (r *accountRepo) Create(_ context.Context, a *accountDomain.Account) error {
	a.ID = r.s.nextID()
	r.s.accounts = append(r.s.accounts, *a)
	return nil
}

func (r *accountRepo) GetByAccountID(_ context.Context, accountID string) (*accountDomain.Account, error) {
	for i := range r.s.accounts {
		if r.s.accounts[i].AccountID == accountID {
			cp := r.s.accounts[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *accountRepo) CreateInvestorProfile(_ context.Context, p *accountDomain.InvestorProfile) error {
	p.ID = r.s.nextID()
	r.s.investorProfiles = append(r.s.investorProfiles, *p)
	return nil
}

func (r *accountRepo) CreateBorrowerProfile(_ context.Context, p *accountDomain.BorrowerProfile) error {
	p.ID = r.s.nextID()
	r.s.borrowerProfiles = append(r.s.borrowerProfiles, *p)
	return nil
}

func (r *accountRepo) GetInvestorProfile(_ context.Context, accountNumericID uint64) (*accountDomain.InvestorProfile, error) {
	for i := range r.s.investorProfiles {
		if r.s.investorProfiles[i].AccountID == accountNumericID {
			cp := r.s.investorProfiles[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *accountRepo) GetBorrowerProfile(_ context.Context, accountNumericID uint64) (*accountDomain.BorrowerProfile, error) {
	for i := range r.s.borrowerProfiles {
		if r.s.borrowerProfiles[i].AccountID == accountNumericID {
			cp := r.s.borrowerProfiles[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *accountRepo) SaveInvestorProfile(_ context.Context, p *accountDomain.InvestorProfile) error {
	for i := range r.s.investorProfiles {
		if r.s.investorProfiles[i].ID == p.ID {
			r.s.investorProfiles[i] = *p
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *accountRepo) SaveBorrowerProfile(_ context.Context, p *accountDomain.BorrowerProfile) error {
	for i := range r.s.borrowerProfiles {
		if r.s.borrowerProfiles[i].ID == p.ID {
			r.s.borrowerProfiles[i] = *p
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *accountRepo) ResolveActor(ctx context.Context, accountID string) (*accountDomain.Actor, error) {
	a, err := r.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	actor := &accountDomain.Actor{Account: a}
	switch a.Kind {
	case accountDomain.KindInvestor:
		p, err := r.GetInvestorProfile(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		actor.Investor = p
	case accountDomain.KindBorrower:
		p, err := r.GetBorrowerProfile(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		actor.Borrower = p
	}
	return actor, nil
}

// ---- wallet repo ----

type walletRepo struct{ s *Store }

func (r *walletRepo) Create(_ context.Context, w *walletDomain.Wallet) error {
	w.ID = r.s.nextID()
	r.s.wallets = append(r.s.wallets, *w)
	return nil
}

func (r *walletRepo) getByOwnerID(ownerID string) (*walletDomain.Wallet, error) {
	for i := range r.s.wallets {
		if r.s.wallets[i].OwnerID == ownerID {
			cp := r.s.wallets[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *walletRepo) GetByOwnerID(_ context.Context, ownerID string) (*walletDomain.Wallet, error) {
	return r.getByOwnerID(ownerID)
}

func (r *walletRepo) GetByOwnerIDForUpdate(_ context.Context, ownerID string) (*walletDomain.Wallet, error) {
	return r.getByOwnerID(ownerID)
}

func (r *walletRepo) Save(_ context.Context, w *walletDomain.Wallet) error {
	for i := range r.s.wallets {
		if r.s.wallets[i].ID == w.ID {
			r.s.wallets[i] = *w
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *walletRepo) AppendTransaction(_ context.Context, t *walletDomain.Transaction) error {
	t.ID = r.s.nextID()
	r.s.walletTxs = append(r.s.walletTxs, *t)
	return nil
}

func (r *walletRepo) ListTransactions(_ context.Context, walletID uint64, limit int) ([]walletDomain.Transaction, error) {
	var out []walletDomain.Transaction
	for i := len(r.s.walletTxs) - 1; i >= 0; i-- {
		if r.s.walletTxs[i].WalletID == walletID {
			out = append(out, r.s.walletTxs[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// ---- loan repo ----

type loanRepo struct{ s *Store }

func (r *loanRepo) Create(_ context.Context, l *loanDomain.Loan) error {
	l.ID = r.s.nextID()
	r.s.loans = append(r.s.loans, *l)
	return nil
}

func (r *loanRepo) getByLoanID(loanID string) (*loanDomain.Loan, error) {
	for i := range r.s.loans {
		if r.s.loans[i].LoanID == loanID {
			cp := r.s.loans[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *loanRepo) GetByLoanID(_ context.Context, loanID string) (*loanDomain.Loan, error) {
	return r.getByLoanID(loanID)
}

func (r *loanRepo) GetByLoanIDForUpdate(_ context.Context, loanID string) (*loanDomain.Loan, error) {
	return r.getByLoanID(loanID)
}

func (r *loanRepo) getByID(id uint64) (*loanDomain.Loan, error) {
	for i := range r.s.loans {
		if r.s.loans[i].ID == id {
			cp := r.s.loans[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *loanRepo) GetByID(_ context.Context, id uint64) (*loanDomain.Loan, error) {
	return r.getByID(id)
}

func (r *loanRepo) GetByIDForUpdate(_ context.Context, id uint64) (*loanDomain.Loan, error) {
	return r.getByID(id)
}

func (r *loanRepo) GetPendingLoanByBorrowerID(_ context.Context, borrowerID string) (*loanDomain.Loan, error) {
	for i := len(r.s.loans) - 1; i >= 0; i-- {
		if r.s.loans[i].BorrowerID == borrowerID && r.s.loans[i].Status == loanDomain.StatusPending {
			cp := r.s.loans[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *loanRepo) Save(_ context.Context, l *loanDomain.Loan) error {
	for i := range r.s.loans {
		if r.s.loans[i].ID == l.ID {
			r.s.loans[i] = *l
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ---- investment repo ----

type investmentRepo struct{ s *Store }

func (r *investmentRepo) Create(_ context.Context, inv *loanDomain.Investment) error {
	inv.ID = r.s.nextID()
	r.s.investments = append(r.s.investments, *inv)
	return nil
}

func (r *investmentRepo) ListByLoanID(_ context.Context, loanNumericID uint64) ([]loanDomain.Investment, error) {
	var out []loanDomain.Investment
	for _, inv := range r.s.investments {
		if inv.LoanID == loanNumericID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *investmentRepo) ListByInvestorID(_ context.Context, investorID string) ([]loanDomain.Investment, error) {
	var out []loanDomain.Investment
	for _, inv := range r.s.investments {
		if inv.InvestorID == investorID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *investmentRepo) SumAmountByLoanID(_ context.Context, loanNumericID uint64) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, inv := range r.s.investments {
		if inv.LoanID == loanNumericID {
			sum = sum.Add(inv.Amount)
		}
	}
	return sum, nil
}

// ---- payment repo ----

type paymentRepo struct{ s *Store }

func (r *paymentRepo) CreateBatch(_ context.Context, payments []loanDomain.LoanPayment) error {
	for i := range payments {
		payments[i].ID = r.s.nextID()
		r.s.payments = append(r.s.payments, payments[i])
	}
	return nil
}

func (r *paymentRepo) ExistsForLoan(_ context.Context, loanNumericID uint64) (bool, error) {
	for _, p := range r.s.payments {
		if p.LoanID == loanNumericID {
			return true, nil
		}
	}
	return false, nil
}

func (r *paymentRepo) ListByLoanID(_ context.Context, loanNumericID uint64) ([]loanDomain.LoanPayment, error) {
	var out []loanDomain.LoanPayment
	for _, p := range r.s.payments {
		if p.LoanID == loanNumericID {
			out = append(out, p)
		}
	}
	sortPayments(out)
	return out, nil
}

func (r *paymentRepo) GetByIDForUpdate(_ context.Context, id uint64) (*loanDomain.LoanPayment, error) {
	for i := range r.s.payments {
		if r.s.payments[i].ID == id {
			cp := r.s.payments[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *paymentRepo) NextOutstandingForUpdate(_ context.Context, loanNumericID uint64) (*loanDomain.LoanPayment, error) {
	var best *loanDomain.LoanPayment
	for i := range r.s.payments {
		p := &r.s.payments[i]
		if p.LoanID != loanNumericID || !p.Outstanding() {
			continue
		}
		if best == nil || p.PaymentNumber < best.PaymentNumber {
			best = p
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *best
	return &cp, nil
}

func (r *paymentRepo) CountOutstanding(_ context.Context, loanNumericID uint64) (int64, error) {
	var n int64
	for _, p := range r.s.payments {
		if p.LoanID == loanNumericID && p.Outstanding() {
			n++
		}
	}
	return n, nil
}

func (r *paymentRepo) Save(_ context.Context, p *loanDomain.LoanPayment) error {
	for i := range r.s.payments {
		if r.s.payments[i].ID == p.ID {
			r.s.payments[i] = *p
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *paymentRepo) ListDueForReminder(_ context.Context, from, to time.Time) ([]loanDomain.LoanPayment, error) {
	var out []loanDomain.LoanPayment
	for _, p := range r.s.payments {
		if p.Status == loanDomain.PaymentPending && !p.ReminderSent &&
			!p.DueDate.Before(from) && !p.DueDate.After(to) {
			out = append(out, p)
		}
	}
	sortPayments(out)
	return out, nil
}

func (r *paymentRepo) ListOverdue(_ context.Context, before time.Time) ([]loanDomain.LoanPayment, error) {
	var out []loanDomain.LoanPayment
	for _, p := range r.s.payments {
		if p.Status == loanDomain.PaymentPending && p.DueDate.Before(before) {
			out = append(out, p)
		}
	}
	sortPayments(out)
	return out, nil
}

func (r *paymentRepo) ListAutoPayDue(_ context.Context, by time.Time) ([]loanDomain.LoanPayment, error) {
	var out []loanDomain.LoanPayment
	for _, p := range r.s.payments {
		if p.AutoPayEnabled && p.Outstanding() && !p.DueDate.After(by) {
			out = append(out, p)
		}
	}
	sortPayments(out)
	return out, nil
}

func (r *paymentRepo) SumInterestByLoanAndStatus(_ context.Context, loanNumericID uint64, statuses []loanDomain.PaymentStatus) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range r.s.payments {
		if p.LoanID != loanNumericID {
			continue
		}
		for _, st := range statuses {
			if p.Status == st {
				sum = sum.Add(p.Interest)
				break
			}
		}
	}
	return sum, nil
}

func sortPayments(ps []loanDomain.LoanPayment) {
	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].DueDate.Equal(ps[j].DueDate) {
			return ps[i].DueDate.Before(ps[j].DueDate)
		}
		return ps[i].PaymentNumber < ps[j].PaymentNumber
	})
}
