package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound               = errors.New("loan not found")
	ErrPendingLoanExists      = errors.New("borrower already has a pending loan")
	ErrCapacityExceeded       = errors.New("investment exceeds remaining loan capacity")
	ErrInvalidStateTransition = errors.New("loan is not in a valid state for this operation")
	ErrNoOutstandingPayment   = errors.New("no outstanding payment for this loan")
	ErrScheduleNotReady       = errors.New("repayment schedule not generated yet")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusFunded    Status = "funded"
	StatusActive    Status = "active"
	StatusRepaid    Status = "repaid"
	StatusDefaulted Status = "defaulted"
	StatusCancelled Status = "cancelled"
)

type Purpose string

const (
	PurposePersonal          Purpose = "personal"
	PurposeBusiness          Purpose = "business"
	PurposeEducation         Purpose = "education"
	PurposeDebtConsolidation Purpose = "debt_consolidation"
	PurposeHomeImprovement   Purpose = "home_improvement"
	PurposeMedical           Purpose = "medical"
	PurposeCar               Purpose = "car"
	PurposeVacation          Purpose = "vacation"
	PurposeWedding           Purpose = "wedding"
	PurposeOther             Purpose = "other"
)

// Loan is the borrower's funding request and, once funded, the contract the
// schedule and repayments run against. Terminal states (repaid, defaulted,
// cancelled) end the lifecycle; loans are never deleted.
type Loan struct {
	ID          uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanID      string `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	BorrowerID  string `gorm:"size:32;index:idx_loans_borrower" json:"borrower_id"`
	Title       string `gorm:"size:100" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	Amount         decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`
	InterestRate   decimal.Decimal `gorm:"type:decimal(5,2)" json:"interest_rate"`
	TermMonths     int             `json:"term_months"`
	MonthlyPayment decimal.Decimal `gorm:"type:decimal(12,2)" json:"monthly_payment"`
	TotalRepayment decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_repayment"`
	RiskScore      int             `json:"risk_score"`
	Status         Status          `gorm:"size:10;default:'pending';index:idx_loans_status" json:"status"`

	Purpose            Purpose `gorm:"size:20;default:'other'" json:"purpose"`
	PurposeDescription string  `gorm:"type:text" json:"purpose_description,omitempty"`

	BorrowerVerified   bool `json:"borrower_verified"`
	EmploymentVerified bool `json:"employment_verified"`
	IncomeVerified     bool `json:"income_verified"`

	IsSecured             bool            `json:"is_secured"`
	CollateralDescription string          `gorm:"type:text" json:"collateral_description,omitempty"`
	CollateralValue       decimal.Decimal `gorm:"type:decimal(12,2)" json:"collateral_value"`

	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	DaysLateCount  int `json:"days_late_count"`
	TimesLateCount int `json:"times_late_count"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// Investment is immutable once created; there is no partial withdrawal of a
// funded investment.
type Investment struct {
	ID           uint64          `gorm:"primaryKey;column:id" json:"-"`
	InvestmentID string          `gorm:"size:32;uniqueIndex:ux_investments_investment_id" json:"investment_id"`
	LoanID       uint64          `gorm:"index:idx_investments_loan" json:"-"`
	InvestorID   string          `gorm:"size:32;index:idx_investments_investor" json:"investor_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Investment) TableName() string { return "investments" }

// Share is the investment's live fraction of the loan principal. Always
// derived, never stored, so a later reconciliation of Amount cannot drift
// against a cached percentage.
func (i Investment) Share(loanAmount decimal.Decimal) decimal.Decimal {
	if loanAmount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return i.Amount.Div(loanAmount)
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentLate      PaymentStatus = "late"
	PaymentDefaulted PaymentStatus = "defaulted"
)

// LoanPayment is one installment of the amortization schedule. Rows are
// generated once, in full, when the loan becomes funded and mutated in
// place afterwards. paid is terminal; late is reachable only from pending.
type LoanPayment struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID        uint64          `gorm:"uniqueIndex:ux_loan_payments_loan_number" json:"-"`
	PaymentNumber int             `gorm:"uniqueIndex:ux_loan_payments_loan_number" json:"payment_number"`
	DueDate       time.Time       `gorm:"index:idx_loan_payments_due" json:"due_date"`
	AmountDue     decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount_due"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount_paid"`
	Principal     decimal.Decimal `gorm:"type:decimal(12,2)" json:"principal"`
	Interest      decimal.Decimal `gorm:"type:decimal(12,2)" json:"interest"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty"`
	Status        PaymentStatus   `gorm:"size:10;default:'pending';index:idx_loan_payments_status" json:"status"`

	ReminderSent     bool            `json:"reminder_sent"`
	ReminderSentAt   *time.Time      `json:"reminder_sent_at,omitempty"`
	LateNoticeSent   bool            `json:"late_notice_sent"`
	LateNoticeSentAt *time.Time      `json:"late_notice_sent_at,omitempty"`
	LateFeeAmount    decimal.Decimal `gorm:"type:decimal(12,2)" json:"late_fee_amount"`
	AutoPayEnabled   bool            `gorm:"column:auto_payment_enabled" json:"auto_payment_enabled"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (LoanPayment) TableName() string { return "loan_payments" }

// Outstanding reports whether the installment still needs money.
func (p LoanPayment) Outstanding() bool {
	return p.Status == PaymentPending || p.Status == PaymentLate
}
