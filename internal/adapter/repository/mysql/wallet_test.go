package mysql

import (
	"context"
	"errors"
	"testing"

	walletDomain "peerlend/internal/domain/wallet"
	"peerlend/pkg/id"

	"gorm.io/gorm"
)

func TestWalletCreateAndGetByOwnerID(t *testing.T) {
	db := openTestDB(t)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	owner := id.NewID32()
	w := &walletDomain.Wallet{OwnerID: owner, Balance: dec("0")}
	if err := repo.Create(ctx, w); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if w.ID == 0 {
		t.Fatalf("Create did not set auto-increment ID")
	}

	got, err := repo.GetByOwnerID(ctx, owner)
	if err != nil {
		t.Fatalf("GetByOwnerID: %v", err)
	}
	if got.OwnerID != owner || !got.Balance.IsZero() {
		t.Errorf("unexpected wallet: %+v", got)
	}

	if _, err := repo.GetByOwnerID(ctx, "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestWalletSaveBalance(t *testing.T) {
	db := openTestDB(t)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	owner := id.NewID32()
	w := &walletDomain.Wallet{OwnerID: owner, Balance: dec("100.00")}
	if err := repo.Create(ctx, w); err != nil {
		t.Fatalf("Create: %v", err)
	}

	w.Balance = dec("175.50")
	if err := repo.Save(ctx, w); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByOwnerID(ctx, owner)
	if err != nil {
		t.Fatalf("GetByOwnerID: %v", err)
	}
	if !got.Balance.Equal(dec("175.50")) {
		t.Errorf("balance = %s, want 175.50", got.Balance)
	}
}

func TestWalletTransactionJournal(t *testing.T) {
	db := openTestDB(t)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	w := &walletDomain.Wallet{OwnerID: id.NewID32(), Balance: dec("0")}
	if err := repo.Create(ctx, w); err != nil {
		t.Fatalf("Create: %v", err)
	}

	amounts := []string{"10.00", "20.00", "30.00"}
	running := dec("0")
	for _, a := range amounts {
		running = running.Add(dec(a))
		tx := &walletDomain.Transaction{
			WalletID:     w.ID,
			Kind:         walletDomain.KindDeposit,
			Amount:       dec(a),
			BalanceAfter: running,
			Memo:         "top up",
		}
		if err := repo.AppendTransaction(ctx, tx); err != nil {
			t.Fatalf("AppendTransaction(%s): %v", a, err)
		}
	}

	rows, err := repo.ListTransactions(ctx, w.ID, 2)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want limit of 2", len(rows))
	}
	// newest first
	if !rows[0].Amount.Equal(dec("30.00")) || !rows[1].Amount.Equal(dec("20.00")) {
		t.Fatalf("journal not newest first: %+v", rows)
	}
	if !rows[0].BalanceAfter.Equal(dec("60.00")) {
		t.Fatalf("balance_after = %s, want 60.00", rows[0].BalanceAfter)
	}

	all, err := repo.ListTransactions(ctx, w.ID, 0)
	if err != nil {
		t.Fatalf("ListTransactions(no limit): %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("rows = %d, want 3 without limit", len(all))
	}
}
