package currency

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

// Normalizer converts amounts between currencies on a best-effort basis.
// Conversion never fails the caller: provider errors are logged and the
// original amount comes back unchanged.
type Normalizer struct {
	provider RateProvider
	logger   *slog.Logger
}

func NewNormalizer(provider RateProvider, logger *slog.Logger) *Normalizer {
	return &Normalizer{
		provider: provider,
		logger:   logger,
	}
}

// Convert converts amount from one currency to another, rounded to 2
// decimal places with round-half-up. The second return value reports
// whether a real conversion happened; it is false when the provider
// degraded and the original amount was returned.
func (n *Normalizer) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, bool) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	if from == to {
		return amount, true
	}

	rates, err := n.provider.GetRates(from)
	if err != nil {
		n.logger.Warn("currency conversion degraded, keeping original amount",
			"from", from,
			"to", to,
			"error", err)
		return amount, false
	}

	rate, ok := rates[to]
	if !ok {
		n.logger.Warn("currency conversion degraded, rate not found",
			"from", from,
			"to", to)
		return amount, false
	}

	// shopspring rounds half away from zero, which is half-up for the
	// positive amounts money validation guarantees.
	converted := amount.Mul(decimal.NewFromFloat(rate)).Round(2)
	return converted, true
}

// Rate returns the spot rate from one currency to another, falling back
// to 1.0 when the provider degrades.
func (n *Normalizer) Rate(from, to string) float64 {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	if from == to {
		return 1.0
	}

	rates, err := n.provider.GetRates(from)
	if err != nil {
		n.logger.Warn("rate lookup degraded, falling back to 1.0",
			"from", from,
			"to", to,
			"error", err)
		return 1.0
	}

	rate, ok := rates[to]
	if !ok {
		return 1.0
	}
	return rate
}
