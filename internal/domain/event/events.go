package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is what the core emits toward the notification sink instead of
// dispatching notifications itself. Delivery channel choice lives outside
// the core.
type Event interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() string
	AggregateType() string
	OccurredAt() time.Time
	Payload() []byte
}

// Sink consumes emitted events. Implementations must be safe to call after
// the originating transaction committed; a failing sink never rolls back
// money movement.
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

type base struct {
	id            uuid.UUID
	eventType     string
	aggregateID   string
	aggregateType string
	occurredAt    time.Time
	payload       []byte
}

func newBase(eventType, aggregateID, aggregateType string, payload any) base {
	raw, _ := json.Marshal(payload)
	return base{
		id:            uuid.New(),
		eventType:     eventType,
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		occurredAt:    time.Now().UTC(),
		payload:       raw,
	}
}

func (b base) EventID() uuid.UUID    { return b.id }
func (b base) EventType() string     { return b.eventType }
func (b base) AggregateID() string   { return b.aggregateID }
func (b base) AggregateType() string { return b.aggregateType }
func (b base) OccurredAt() time.Time { return b.occurredAt }
func (b base) Payload() []byte       { return b.payload }

type ReminderDue struct{ base }

// NewReminderDue flags an installment due within the reminder window.
func NewReminderDue(loanID string, paymentNumber int, dueDate time.Time, amountDue string) ReminderDue {
	return ReminderDue{newBase("lending.reminder_due", loanID, "loan_payment", map[string]any{
		"loan_id":        loanID,
		"payment_number": paymentNumber,
		"due_date":       dueDate.Format(time.RFC3339),
		"amount_due":     amountDue,
	})}
}

type LateNoticeDue struct{ base }

// NewLateNoticeDue flags an installment that just went late, including the
// applied fee.
func NewLateNoticeDue(loanID string, paymentNumber int, daysOverdue int, lateFee, amountDue string) LateNoticeDue {
	return LateNoticeDue{newBase("lending.late_notice_due", loanID, "loan_payment", map[string]any{
		"loan_id":        loanID,
		"payment_number": paymentNumber,
		"days_overdue":   daysOverdue,
		"late_fee":       lateFee,
		"amount_due":     amountDue,
	})}
}

type LoanFunded struct{ base }

func NewLoanFunded(loanID string, amount string, investors int) LoanFunded {
	return LoanFunded{newBase("lending.loan_funded", loanID, "loan", map[string]any{
		"loan_id":   loanID,
		"amount":    amount,
		"investors": investors,
	})}
}

type LoanRepaid struct{ base }

func NewLoanRepaid(loanID string) LoanRepaid {
	return LoanRepaid{newBase("lending.loan_repaid", loanID, "loan", map[string]any{
		"loan_id": loanID,
	})}
}
