package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Expense is owned by its submitting user. ConvertedAmount is the amount
// in the owning company's currency and stays NULL when the expense was
// submitted in that currency already, or when conversion degraded.
type Expense struct {
	ID              int64            `json:"id" gorm:"primaryKey"`
	UserID          int64            `json:"user_id" gorm:"column:user_id;not null"`
	Amount          decimal.Decimal  `json:"amount" gorm:"type:numeric(10,2);not null"`
	Currency        string           `json:"currency" gorm:"not null;default:USD"`
	ConvertedAmount *decimal.Decimal `json:"converted_amount,omitempty" gorm:"column:converted_amount;type:numeric(10,2)"`
	Category        string           `json:"category" gorm:"not null"`
	Description     string           `json:"description"`
	ExpenseDate     time.Time        `json:"date" gorm:"column:expense_date;type:date;not null"`
	Status          string           `json:"status" gorm:"not null;default:pending"`
	ReceiptURL      *string          `json:"receipt_url,omitempty" gorm:"column:receipt_url"`
	CreatedAt       time.Time        `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt       time.Time        `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Expense) TableName() string {
	return "expenses"
}

func (e *Expense) IsPending() bool {
	return e.Status == StatusPending
}

// Approved and rejected are terminal states.
func (e *Expense) IsTerminal() bool {
	return e.Status == StatusApproved || e.Status == StatusRejected
}
