package wallet

import "context"

type Repository interface {
	Create(ctx context.Context, w *Wallet) error
	GetByOwnerID(ctx context.Context, ownerID string) (*Wallet, error)
	// GetByOwnerIDForUpdate locks the wallet row for the duration of the
	// surrounding transaction. Composite read-check-write sequences on a
	// balance must go through it.
	GetByOwnerIDForUpdate(ctx context.Context, ownerID string) (*Wallet, error)
	Save(ctx context.Context, w *Wallet) error
	AppendTransaction(ctx context.Context, t *Transaction) error
	ListTransactions(ctx context.Context, walletID uint64, limit int) ([]Transaction, error)
}
