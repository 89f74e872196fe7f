package wallet

import (
	"context"
	"errors"

	"peerlend/internal/domain/uow"
	walletDomain "peerlend/internal/domain/wallet"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ledger is the single entry point for money movement. Every balance
// mutation and its journal row commit together or not at all.
type Ledger struct{ uow uow.UnitOfWork }

func NewLedger(tx uow.UnitOfWork) *Ledger { return &Ledger{uow: tx} }

func (l *Ledger) Deposit(ctx context.Context, ownerID string, amount decimal.Decimal, memo string) (*walletDomain.Transaction, error) {
	var out *walletDomain.Transaction
	err := l.uow.WithinTx(ctx, func(r uow.Repos) error {
		t, err := Credit(ctx, r, ownerID, walletDomain.KindDeposit, amount, memo, "", "")
		out = t
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Ledger) Withdraw(ctx context.Context, ownerID string, amount decimal.Decimal, memo string) (*walletDomain.Transaction, error) {
	var out *walletDomain.Transaction
	err := l.uow.WithinTx(ctx, func(r uow.Repos) error {
		t, err := Debit(ctx, r, ownerID, walletDomain.KindWithdrawal, amount, memo, "", "")
		out = t
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Statement returns the wallet and its most recent journal rows.
func (l *Ledger) Statement(ctx context.Context, ownerID string, limit int) (*walletDomain.Wallet, []walletDomain.Transaction, error) {
	var (
		w   *walletDomain.Wallet
		txs []walletDomain.Transaction
	)
	err := l.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		w, err = r.Wallets.GetByOwnerID(ctx, ownerID)
		if err != nil {
			return mapNotFound(err)
		}
		txs, err = r.Wallets.ListTransactions(ctx, w.ID, limit)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return w, txs, nil
}

// Credit adds amount to the owner's wallet inside the caller's transaction
// and appends the journal row. Exported for the funding/repayment engines,
// which move money as part of larger composite operations.
func Credit(ctx context.Context, r uow.Repos, ownerID string, kind walletDomain.Kind, amount decimal.Decimal, memo, relatedKind, relatedID string) (*walletDomain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, walletDomain.ErrInvalidAmount
	}
	w, err := r.Wallets.GetByOwnerIDForUpdate(ctx, ownerID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	w.Balance = w.Balance.Add(amount)
	if err := r.Wallets.Save(ctx, w); err != nil {
		return nil, err
	}
	return appendRow(ctx, r, w, kind, amount, memo, relatedKind, relatedID)
}

// Debit removes amount from the owner's wallet inside the caller's
// transaction. A short balance leaves the wallet untouched and returns
// ErrInsufficientFunds; there is no partial withdrawal.
func Debit(ctx context.Context, r uow.Repos, ownerID string, kind walletDomain.Kind, amount decimal.Decimal, memo, relatedKind, relatedID string) (*walletDomain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, walletDomain.ErrInvalidAmount
	}
	w, err := r.Wallets.GetByOwnerIDForUpdate(ctx, ownerID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if w.Balance.LessThan(amount) {
		return nil, walletDomain.ErrInsufficientFunds
	}
	w.Balance = w.Balance.Sub(amount)
	if err := r.Wallets.Save(ctx, w); err != nil {
		return nil, err
	}
	return appendRow(ctx, r, w, kind, amount, memo, relatedKind, relatedID)
}

func appendRow(ctx context.Context, r uow.Repos, w *walletDomain.Wallet, kind walletDomain.Kind, amount decimal.Decimal, memo, relatedKind, relatedID string) (*walletDomain.Transaction, error) {
	t := &walletDomain.Transaction{
		WalletID:     w.ID,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: w.Balance,
		Memo:         memo,
		RelatedKind:  relatedKind,
		RelatedID:    relatedID,
	}
	if err := r.Wallets.AppendTransaction(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return walletDomain.ErrNotFound
	}
	return err
}
