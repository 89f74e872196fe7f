package mysql

import (
	"context"
	"database/sql"
	"time"

	loanDomain "peerlend/internal/domain/loan"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) *PaymentRepository { return &PaymentRepository{db: db} }

func (r *PaymentRepository) CreateBatch(ctx context.Context, payments []loanDomain.LoanPayment) error {
	if len(payments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&payments).Error
}

func (r *PaymentRepository) ExistsForLoan(ctx context.Context, loanNumericID uint64) (bool, error) {
	var n int64
	res := r.db.WithContext(ctx).
		Model(&loanDomain.LoanPayment{}).
		Where("loan_id = ?", loanNumericID).
		Count(&n)
	return n > 0, res.Error
}

func (r *PaymentRepository) ListByLoanID(ctx context.Context, loanNumericID uint64) ([]loanDomain.LoanPayment, error) {
	var out []loanDomain.LoanPayment
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanNumericID).
		Order("payment_number ASC").
		Find(&out)
	return out, res.Error
}

func (r *PaymentRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*loanDomain.LoanPayment, error) {
	var out loanDomain.LoanPayment
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&out)
	return &out, res.Error
}

func (r *PaymentRepository) NextOutstandingForUpdate(ctx context.Context, loanNumericID uint64) (*loanDomain.LoanPayment, error) {
	var out loanDomain.LoanPayment
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ? AND status IN ?", loanNumericID, []loanDomain.PaymentStatus{loanDomain.PaymentPending, loanDomain.PaymentLate}).
		Order("payment_number ASC").
		First(&out)
	return &out, res.Error
}

func (r *PaymentRepository) CountOutstanding(ctx context.Context, loanNumericID uint64) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).
		Model(&loanDomain.LoanPayment{}).
		Where("loan_id = ? AND status IN ?", loanNumericID, []loanDomain.PaymentStatus{loanDomain.PaymentPending, loanDomain.PaymentLate}).
		Count(&n)
	return n, res.Error
}

func (r *PaymentRepository) Save(ctx context.Context, p *loanDomain.LoanPayment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *PaymentRepository) ListDueForReminder(ctx context.Context, from, to time.Time) ([]loanDomain.LoanPayment, error) {
	var out []loanDomain.LoanPayment
	res := r.db.WithContext(ctx).
		Where("status = ? AND due_date BETWEEN ? AND ? AND reminder_sent = ?",
			loanDomain.PaymentPending, from, to, false).
		Order("due_date ASC, payment_number ASC").
		Find(&out)
	return out, res.Error
}

func (r *PaymentRepository) ListOverdue(ctx context.Context, before time.Time) ([]loanDomain.LoanPayment, error) {
	var out []loanDomain.LoanPayment
	res := r.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", loanDomain.PaymentPending, before).
		Order("due_date ASC, payment_number ASC").
		Find(&out)
	return out, res.Error
}

func (r *PaymentRepository) ListAutoPayDue(ctx context.Context, by time.Time) ([]loanDomain.LoanPayment, error) {
	var out []loanDomain.LoanPayment
	res := r.db.WithContext(ctx).
		Where("status IN ? AND due_date <= ? AND auto_payment_enabled = ?",
			[]loanDomain.PaymentStatus{loanDomain.PaymentPending, loanDomain.PaymentLate}, by, true).
		Order("due_date ASC, payment_number ASC").
		Find(&out)
	return out, res.Error
}

func (r *PaymentRepository) SumInterestByLoanAndStatus(ctx context.Context, loanNumericID uint64, statuses []loanDomain.PaymentStatus) (decimal.Decimal, error) {
	var raw sql.NullString
	res := r.db.WithContext(ctx).
		Model(&loanDomain.LoanPayment{}).
		Where("loan_id = ? AND status IN ?", loanNumericID, statuses).
		Select("SUM(interest)").
		Scan(&raw)
	if res.Error != nil {
		return decimal.Zero, res.Error
	}
	if !raw.Valid {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw.String)
}
