package mysql

import (
	"context"

	walletDomain "peerlend/internal/domain/wallet"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WalletRepository struct{ db *gorm.DB }

func NewWalletRepository(db *gorm.DB) *WalletRepository { return &WalletRepository{db: db} }

func (r *WalletRepository) Create(ctx context.Context, w *walletDomain.Wallet) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *WalletRepository) GetByOwnerID(ctx context.Context, ownerID string) (*walletDomain.Wallet, error) {
	var out walletDomain.Wallet
	res := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&out)
	return &out, res.Error
}

func (r *WalletRepository) GetByOwnerIDForUpdate(ctx context.Context, ownerID string) (*walletDomain.Wallet, error) {
	var out walletDomain.Wallet
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner_id = ?", ownerID).
		First(&out)
	return &out, res.Error
}

func (r *WalletRepository) Save(ctx context.Context, w *walletDomain.Wallet) error {
	return r.db.WithContext(ctx).Save(w).Error
}

func (r *WalletRepository) AppendTransaction(ctx context.Context, t *walletDomain.Transaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *WalletRepository) ListTransactions(ctx context.Context, walletID uint64, limit int) ([]walletDomain.Transaction, error) {
	var out []walletDomain.Transaction
	q := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return out, q.Find(&out).Error
}
