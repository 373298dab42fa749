package expense

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adiwardana/expense-approval/internal/currency"
)

// CreateExpenseDTO is the submission payload. Date is a calendar date in
// ISO form (2006-01-02).
type CreateExpenseDTO struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	ReceiptURL  *string         `json:"receipt_url,omitempty"`

	parsedDate time.Time
}

func (dto *CreateExpenseDTO) Validate() error {
	if dto.Amount.IsZero() || dto.Amount.IsNegative() {
		return errors.New("amount must be greater than 0")
	}
	if dto.Amount.Exponent() < -2 {
		return errors.New("amount cannot have more than 2 decimal places")
	}

	dto.Currency = strings.ToUpper(strings.TrimSpace(dto.Currency))
	if !currency.ValidCode(dto.Currency) {
		return errors.New("currency must be a 3-letter currency code")
	}

	dto.Category = strings.TrimSpace(dto.Category)
	if dto.Category == "" {
		return errors.New("category is required")
	}

	if len(dto.Description) > 1000 {
		return errors.New("description must be less than 1000 characters")
	}

	if dto.Date == "" {
		return errors.New("date is required")
	}
	parsed, err := time.Parse("2006-01-02", dto.Date)
	if err != nil {
		return errors.New("date must be in YYYY-MM-DD format")
	}
	dto.parsedDate = parsed

	return nil
}

// ExpenseDate returns the parsed calendar date; valid after Validate.
func (dto *CreateExpenseDTO) ExpenseDate() time.Time {
	return dto.parsedDate
}

var (
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrUnauthorizedAccess = errors.New("unauthorized access to expense")
)
