package currency

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type ConvertCurrencyDTO struct {
	Amount       decimal.Decimal `json:"amount"`
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
}

func (dto *ConvertCurrencyDTO) Validate() error {
	if dto.Amount.IsZero() {
		return errors.New("amount is required")
	}
	if dto.Amount.IsNegative() {
		return errors.New("amount must be greater than 0")
	}
	dto.FromCurrency = strings.ToUpper(strings.TrimSpace(dto.FromCurrency))
	dto.ToCurrency = strings.ToUpper(strings.TrimSpace(dto.ToCurrency))
	if !ValidCode(dto.FromCurrency) {
		return errors.New("from_currency must be a 3-letter currency code")
	}
	if !ValidCode(dto.ToCurrency) {
		return errors.New("to_currency must be a 3-letter currency code")
	}
	return nil
}

type ConvertCurrencyResponse struct {
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	FromCurrency    string          `json:"from_currency"`
	ToCurrency      string          `json:"to_currency"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
}
