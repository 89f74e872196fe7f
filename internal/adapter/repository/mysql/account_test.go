package mysql

import (
	"context"
	"errors"
	"testing"

	accountDomain "peerlend/internal/domain/account"
	"peerlend/pkg/id"

	"gorm.io/gorm"
)

func TestAccountCreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	accountID := id.NewID32()
	a := &accountDomain.Account{AccountID: accountID, Kind: accountDomain.KindInvestor, FullName: "Ana Putri"}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID == 0 {
		t.Fatalf("Create did not set auto-increment ID")
	}

	got, err := repo.GetByAccountID(ctx, accountID)
	if err != nil {
		t.Fatalf("GetByAccountID: %v", err)
	}
	if got.FullName != "Ana Putri" || got.Kind != accountDomain.KindInvestor {
		t.Errorf("unexpected account: %+v", got)
	}

	if _, err := repo.GetByAccountID(ctx, "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestAccountResolveActor_Investor(t *testing.T) {
	db := openTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	accountID := id.NewID32()
	a := &accountDomain.Account{AccountID: accountID, Kind: accountDomain.KindInvestor, FullName: "Ana Putri"}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	p := &accountDomain.InvestorProfile{AccountID: a.ID, TotalInvested: dec("0"), TotalEarnings: dec("0")}
	if err := repo.CreateInvestorProfile(ctx, p); err != nil {
		t.Fatalf("CreateInvestorProfile: %v", err)
	}

	actor, err := repo.ResolveActor(ctx, accountID)
	if err != nil {
		t.Fatalf("ResolveActor: %v", err)
	}
	if !actor.IsInvestor() || actor.IsBorrower() {
		t.Fatalf("actor not classified as investor: %+v", actor)
	}

	actor.Investor.TotalEarnings = dec("12.34")
	if err := repo.SaveInvestorProfile(ctx, actor.Investor); err != nil {
		t.Fatalf("SaveInvestorProfile: %v", err)
	}
	reread, err := repo.GetInvestorProfile(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetInvestorProfile: %v", err)
	}
	if !reread.TotalEarnings.Equal(dec("12.34")) {
		t.Fatalf("earnings = %s, want 12.34", reread.TotalEarnings)
	}
}

func TestAccountResolveActor_Borrower(t *testing.T) {
	db := openTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	accountID := id.NewID32()
	a := &accountDomain.Account{AccountID: accountID, Kind: accountDomain.KindBorrower, FullName: "Budi Santoso"}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	p := &accountDomain.BorrowerProfile{AccountID: a.ID, CreditScore: 720, AnnualIncome: dec("85000")}
	if err := repo.CreateBorrowerProfile(ctx, p); err != nil {
		t.Fatalf("CreateBorrowerProfile: %v", err)
	}

	actor, err := repo.ResolveActor(ctx, accountID)
	if err != nil {
		t.Fatalf("ResolveActor: %v", err)
	}
	if !actor.IsBorrower() {
		t.Fatalf("actor not classified as borrower: %+v", actor)
	}
	if actor.Borrower.CreditScore != 720 {
		t.Fatalf("credit score = %d, want 720", actor.Borrower.CreditScore)
	}
}

func TestAccountResolveActor_MissingProfile(t *testing.T) {
	db := openTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	// account without its profile row
	accountID := id.NewID32()
	a := &accountDomain.Account{AccountID: accountID, Kind: accountDomain.KindInvestor}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := repo.ResolveActor(ctx, accountID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound for missing profile, got %v", err)
	}
}
