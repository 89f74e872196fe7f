package mysql

import (
	"context"
	"database/sql"

	loanDomain "peerlend/internal/domain/loan"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvestmentRepository struct{ db *gorm.DB }

func NewInvestmentRepository(db *gorm.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

func (r *InvestmentRepository) Create(ctx context.Context, inv *loanDomain.Investment) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *InvestmentRepository) ListByLoanID(ctx context.Context, loanNumericID uint64) ([]loanDomain.Investment, error) {
	var out []loanDomain.Investment
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanNumericID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *InvestmentRepository) ListByInvestorID(ctx context.Context, investorID string) ([]loanDomain.Investment, error) {
	var out []loanDomain.Investment
	res := r.db.WithContext(ctx).
		Where("investor_id = ?", investorID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

// SumAmountByLoanID is the funded total the capacity check runs against.
// It must be read under the loan row lock to be race-safe.
func (r *InvestmentRepository) SumAmountByLoanID(ctx context.Context, loanNumericID uint64) (decimal.Decimal, error) {
	var raw sql.NullString
	res := r.db.WithContext(ctx).
		Model(&loanDomain.Investment{}).
		Where("loan_id = ?", loanNumericID).
		Select("SUM(amount)").
		Scan(&raw)
	if res.Error != nil {
		return decimal.Zero, res.Error
	}
	if !raw.Valid {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw.String)
}
