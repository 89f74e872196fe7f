package wallet

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("wallet not found")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
	KindInvestment Kind = "investment"
	KindReturn     Kind = "return"
	KindFee        Kind = "fee"
)

// Wallet holds the current balance for one owner. Balance is the only
// mutable field; history lives in the transaction journal.
type Wallet struct {
	ID        uint64          `gorm:"primaryKey;column:id" json:"-"`
	OwnerID   string          `gorm:"size:32;uniqueIndex:ux_wallets_owner_id" json:"owner_id"`
	Balance   decimal.Decimal `gorm:"type:decimal(12,2)" json:"balance"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Wallet) TableName() string { return "wallets" }

// Transaction is one append-only journal row. BalanceAfter snapshots the
// wallet balance immediately after the row was applied, so the journal in
// append order is the balance history.
type Transaction struct {
	ID           uint64          `gorm:"primaryKey;column:id" json:"-"`
	WalletID     uint64          `gorm:"index:idx_transactions_wallet" json:"-"`
	Kind         Kind            `gorm:"size:10" json:"kind"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(12,2)" json:"balance_after"`
	Memo         string          `gorm:"size:255" json:"memo"`
	RelatedKind  string          `gorm:"size:16" json:"related_kind,omitempty"`
	RelatedID    string          `gorm:"size:32" json:"related_id,omitempty"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Transaction) TableName() string { return "wallet_transactions" }
