package funding

import (
	"context"
	"errors"
	"sync"
	"testing"

	accountDomain "peerlend/internal/domain/account"
	loanDomain "peerlend/internal/domain/loan"
	walletDomain "peerlend/internal/domain/wallet"
	"peerlend/internal/testutil/eventsink"
	"peerlend/internal/testutil/memuow"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store *memuow.Store
	sink  *eventsink.Collector
	uc    *Usecase
	loan  loanDomain.Loan
}

// newFixture seeds a pending 1000 loan and three funded investor wallets.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memuow.New()
	sink := eventsink.New()

	for _, id := range []string{"inv1", "inv2", "inv3"} {
		a := store.SeedAccount(accountDomain.Account{AccountID: id, Kind: accountDomain.KindInvestor, FullName: id})
		store.SeedInvestorProfile(accountDomain.InvestorProfile{AccountID: a.ID})
		store.SeedWallet(walletDomain.Wallet{OwnerID: id, Balance: d("1000")})
	}

	l := store.SeedLoan(loanDomain.Loan{
		LoanID:       "ln1",
		BorrowerID:   "brw1",
		Amount:       d("1000"),
		InterestRate: d("10"),
		TermMonths:   12,
		Status:       loanDomain.StatusPending,
	})

	return &fixture{store: store, sink: sink, uc: NewUsecase(store, sink), loan: l}
}

func TestInvest_PartialFunding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dto, err := f.uc.Invest(ctx, "inv1", "ln1", d("400"))
	if err != nil {
		t.Fatalf("Invest: %v", err)
	}
	if dto.LoanStatus != string(loanDomain.StatusPending) {
		t.Fatalf("loan status = %s, want still pending", dto.LoanStatus)
	}

	w, _ := f.store.Wallet("inv1")
	if !w.Balance.Equal(d("600")) {
		t.Fatalf("investor balance = %s, want 600", w.Balance)
	}

	invs := f.store.Investments(f.loan.ID)
	if len(invs) != 1 || !invs[0].Amount.Equal(d("400")) {
		t.Fatalf("investments = %+v", invs)
	}

	// Profile counter tracks the stake.
	p, _ := f.store.InvestorProfile(1)
	if !p.TotalInvested.Equal(d("400")) {
		t.Fatalf("total invested = %s, want 400", p.TotalInvested)
	}

	// No schedule, no event yet.
	if rows := f.store.Payments(f.loan.ID); len(rows) != 0 {
		t.Fatalf("schedule rows = %d, want none before full funding", len(rows))
	}
	if evs := f.sink.Events(); len(evs) != 0 {
		t.Fatalf("events = %d, want 0", len(evs))
	}
}

func TestInvest_CapacityExceeded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.uc.Invest(ctx, "inv1", "ln1", d("800")); err != nil {
		t.Fatalf("first Invest: %v", err)
	}
	if _, err := f.uc.Invest(ctx, "inv2", "ln1", d("300")); !errors.Is(err, loanDomain.ErrCapacityExceeded) {
		t.Fatalf("want ErrCapacityExceeded, got %v", err)
	}

	// The rejected investor's wallet is untouched.
	w, _ := f.store.Wallet("inv2")
	if !w.Balance.Equal(d("1000")) {
		t.Fatalf("rejected investor balance = %s, want 1000", w.Balance)
	}
}

func TestInvest_FullFunding_GeneratesSchedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.uc.Invest(ctx, "inv1", "ln1", d("600")); err != nil {
		t.Fatalf("Invest 600: %v", err)
	}
	dto, err := f.uc.Invest(ctx, "inv2", "ln1", d("400"))
	if err != nil {
		t.Fatalf("Invest 400: %v", err)
	}
	if dto.LoanStatus != string(loanDomain.StatusFunded) {
		t.Fatalf("loan status = %s, want funded", dto.LoanStatus)
	}

	l, _ := f.store.Loan("ln1")
	if l.Status != loanDomain.StatusFunded {
		t.Fatalf("stored status = %s, want funded", l.Status)
	}
	if l.StartDate == nil || l.EndDate == nil {
		t.Fatalf("funding dates not set: %+v", l)
	}

	rows := f.store.Payments(f.loan.ID)
	if len(rows) != 12 {
		t.Fatalf("schedule rows = %d, want 12", len(rows))
	}
	sumPrincipal := decimal.Zero
	for _, p := range rows {
		sumPrincipal = sumPrincipal.Add(p.Principal)
	}
	if !sumPrincipal.Equal(d("1000")) {
		t.Fatalf("schedule principal sum = %s, want 1000", sumPrincipal)
	}

	funded := f.sink.ByType("lending.loan_funded")
	if len(funded) != 1 {
		t.Fatalf("loan_funded events = %d, want 1", len(funded))
	}
	if funded[0].AggregateID() != "ln1" {
		t.Fatalf("event aggregate = %s, want ln1", funded[0].AggregateID())
	}
}

func TestInvest_AfterFunded_Rejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.uc.Invest(ctx, "inv1", "ln1", d("1000")); err != nil {
		t.Fatalf("Invest: %v", err)
	}
	if _, err := f.uc.Invest(ctx, "inv2", "ln1", d("100")); !errors.Is(err, loanDomain.ErrInvalidStateTransition) {
		t.Fatalf("want ErrInvalidStateTransition, got %v", err)
	}
}

func TestInvest_Guards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.uc.Invest(ctx, "inv1", "missing", d("100")); !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("unknown loan: want ErrNotFound, got %v", err)
	}
	if _, err := f.uc.Invest(ctx, "inv1", "ln1", d("0")); !errors.Is(err, walletDomain.ErrInvalidAmount) {
		t.Fatalf("zero amount: want ErrInvalidAmount, got %v", err)
	}
	if _, err := f.uc.Invest(ctx, "nobody", "ln1", d("100")); !errors.Is(err, accountDomain.ErrNotFound) {
		t.Fatalf("unknown investor: want account ErrNotFound, got %v", err)
	}

	// A borrower cannot invest.
	a := f.store.SeedAccount(accountDomain.Account{AccountID: "brw2", Kind: accountDomain.KindBorrower})
	f.store.SeedBorrowerProfile(accountDomain.BorrowerProfile{AccountID: a.ID, CreditScore: 650})
	f.store.SeedWallet(walletDomain.Wallet{OwnerID: "brw2", Balance: d("500")})
	if _, err := f.uc.Invest(ctx, "brw2", "ln1", d("100")); !errors.Is(err, accountDomain.ErrNotInvestor) {
		t.Fatalf("borrower investing: want ErrNotInvestor, got %v", err)
	}

	// A stake over the cap fails whole, never truncates.
	if _, err := f.uc.Invest(ctx, "inv1", "ln1", d("1000.01")); !errors.Is(err, loanDomain.ErrCapacityExceeded) {
		t.Fatalf("over-cap: want ErrCapacityExceeded, got %v", err)
	}
}

func TestInvest_InsufficientFunds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.store.SeedAccount(accountDomain.Account{AccountID: "poor", Kind: accountDomain.KindInvestor})
	f.store.SeedInvestorProfile(accountDomain.InvestorProfile{AccountID: a.ID})
	f.store.SeedWallet(walletDomain.Wallet{OwnerID: "poor", Balance: d("50")})

	if _, err := f.uc.Invest(ctx, "poor", "ln1", d("100")); !errors.Is(err, walletDomain.ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	if invs := f.store.Investments(f.loan.ID); len(invs) != 0 {
		t.Fatalf("investments = %d, want 0", len(invs))
	}
}

// Concurrent investors racing for 1000 of capacity with 600+500+400 staked:
// whatever interleaving wins, the funded total must never exceed the cap and
// every losing attempt must fail whole.
func TestInvest_ConcurrentCapacityRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stakes := map[string]decimal.Decimal{
		"inv1": d("600"),
		"inv2": d("500"),
		"inv3": d("400"),
	}

	var wg sync.WaitGroup
	errs := make(map[string]error, len(stakes))
	var mu sync.Mutex
	for id, amt := range stakes {
		wg.Add(1)
		go func(id string, amt decimal.Decimal) {
			defer wg.Done()
			_, err := f.uc.Invest(ctx, id, "ln1", amt)
			mu.Lock()
			errs[id] = err
			mu.Unlock()
		}(id, amt)
	}
	wg.Wait()

	total := decimal.Zero
	for _, inv := range f.store.Investments(f.loan.ID) {
		total = total.Add(inv.Amount)
	}
	if total.GreaterThan(d("1000")) {
		t.Fatalf("funded total %s exceeds capacity", total)
	}

	// Each investor either committed fully or not at all.
	for id, amt := range stakes {
		w, _ := f.store.Wallet(id)
		spent := d("1000").Sub(w.Balance)
		if errs[id] == nil {
			if !spent.Equal(amt) {
				t.Fatalf("%s: succeeded but spent %s of %s", id, spent, amt)
			}
		} else {
			if !spent.IsZero() {
				t.Fatalf("%s: failed (%v) but wallet moved by %s", id, errs[id], spent)
			}
			if !errors.Is(errs[id], loanDomain.ErrCapacityExceeded) &&
				!errors.Is(errs[id], loanDomain.ErrInvalidStateTransition) {
				t.Fatalf("%s: unexpected error %v", id, errs[id])
			}
		}
	}

	// The stakes total 1500 against a 1000 cap, so at least one attempt
	// must have failed.
	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
		}
	}
	if failures == 0 {
		t.Fatalf("all three stakes committed against a 1000 cap")
	}
}

func TestCancel_RefundsInvestors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.uc.Invest(ctx, "inv1", "ln1", d("300")); err != nil {
		t.Fatalf("Invest: %v", err)
	}
	if err := f.uc.Cancel(ctx, "ln1"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	l, _ := f.store.Loan("ln1")
	if l.Status != loanDomain.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", l.Status)
	}

	w, _ := f.store.Wallet("inv1")
	if !w.Balance.Equal(d("1000")) {
		t.Fatalf("refunded balance = %s, want 1000", w.Balance)
	}
	p, _ := f.store.InvestorProfile(1)
	if !p.TotalInvested.IsZero() {
		t.Fatalf("total invested after refund = %s, want 0", p.TotalInvested)
	}
}

func TestCancel_OnlyPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.uc.Invest(ctx, "inv1", "ln1", d("1000")); err != nil {
		t.Fatalf("Invest: %v", err)
	}
	if err := f.uc.Cancel(ctx, "ln1"); !errors.Is(err, loanDomain.ErrInvalidStateTransition) {
		t.Fatalf("cancel funded loan: want ErrInvalidStateTransition, got %v", err)
	}
	if err := f.uc.Cancel(ctx, "missing"); !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("cancel unknown loan: want ErrNotFound, got %v", err)
	}
}
