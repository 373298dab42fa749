package currency

import (
	"encoding/json"
	"net/http"

	"github.com/adiwardana/expense-approval/internal/transport"
	"github.com/adiwardana/expense-approval/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Normalizer *Normalizer
}

func NewHandler(normalizer *Normalizer) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Normalizer:  normalizer,
	}
}

// GetCurrencies serves the static common-currency list.
func (h *Handler) GetCurrencies(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, CommonCurrencies())
}

// Convert performs an ad-hoc conversion. A degraded provider still
// answers 200 with the original amount, the same best-effort policy
// submissions get.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	var dto ConvertCurrencyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	converted, _ := h.Normalizer.Convert(dto.Amount, dto.FromCurrency, dto.ToCurrency)

	h.WriteJSON(w, http.StatusOK, ConvertCurrencyResponse{
		OriginalAmount:  dto.Amount,
		FromCurrency:    dto.FromCurrency,
		ToCurrency:      dto.ToCurrency,
		ConvertedAmount: converted,
	})
}
