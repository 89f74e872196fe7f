package account

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound    = errors.New("account not found")
	ErrNotInvestor = errors.New("account is not an investor")
	ErrNotBorrower = errors.New("account is not a borrower")
)

type Kind string

const (
	KindInvestor Kind = "investor"
	KindBorrower Kind = "borrower"
)

type Account struct {
	ID          uint64    `gorm:"primaryKey;column:id" json:"-"`
	AccountID   string    `gorm:"size:32;uniqueIndex:ux_accounts_account_id" json:"account_id"`
	Kind        Kind      `gorm:"size:10" json:"kind"`
	FullName    string    `gorm:"size:100" json:"full_name"`
	KYCVerified bool      `gorm:"column:kyc_verified" json:"kyc_verified"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string { return "accounts" }

type InvestorProfile struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	AccountID     uint64          `gorm:"uniqueIndex:ux_investor_profiles_account" json:"-"`
	TotalInvested decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_invested"`
	TotalEarnings decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_earnings"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"-"`
}

func (InvestorProfile) TableName() string { return "investor_profiles" }

type BorrowerProfile struct {
	ID           uint64          `gorm:"primaryKey;column:id" json:"-"`
	AccountID    uint64          `gorm:"uniqueIndex:ux_borrower_profiles_account" json:"-"`
	CreditScore  int             `gorm:"default:650" json:"credit_score"`
	AnnualIncome decimal.Decimal `gorm:"type:decimal(12,2)" json:"annual_income"`
	TotalLoans   int             `json:"total_loans"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"-"`
}

func (BorrowerProfile) TableName() string { return "borrower_profiles" }

// Actor is the resolved identity of a caller: exactly one of the profile
// pointers is set for a classified account. Resolve once at the boundary,
// never probe for profiles downstream.
type Actor struct {
	Account  *Account
	Investor *InvestorProfile
	Borrower *BorrowerProfile
}

func (a Actor) IsInvestor() bool { return a.Investor != nil }
func (a Actor) IsBorrower() bool { return a.Borrower != nil }
