package currency

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/adiwardana/expense-approval/internal"
)

// RateProvider supplies spot exchange rates keyed by currency code.
type RateProvider interface {
	GetRates(base string) (map[string]float64, error)
}

// RateClient talks to an exchangerate-api compatible provider:
// GET {base_url}/v4/latest/{BASE} -> {"base": "USD", "rates": {"EUR": 0.92}}.
type RateClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewRateClient(cfg internal.ExchangeRateConfig, logger *slog.Logger) *RateClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &RateClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type ratesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// GetRates fetches the latest rates for a base currency. A single attempt
// is made; callers are expected to degrade on error, not retry.
func (c *RateClient) GetRates(base string) (map[string]float64, error) {
	url := fmt.Sprintf("%s/v4/latest/%s", c.baseURL, strings.ToUpper(base))

	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("rate provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("rate provider returned status %d", resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode rate provider response: %w", err)
	}

	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("rate provider returned no rates for %s", base)
	}

	return body.Rates, nil
}
