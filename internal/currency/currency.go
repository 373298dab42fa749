package currency

// Currency is one entry of the static common-currency list.
type Currency struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func CommonCurrencies() []Currency {
	return []Currency{
		{Code: "USD", Name: "US Dollar"},
		{Code: "EUR", Name: "Euro"},
		{Code: "GBP", Name: "British Pound"},
		{Code: "JPY", Name: "Japanese Yen"},
		{Code: "CAD", Name: "Canadian Dollar"},
		{Code: "AUD", Name: "Australian Dollar"},
		{Code: "CHF", Name: "Swiss Franc"},
		{Code: "CNY", Name: "Chinese Yuan"},
		{Code: "INR", Name: "Indian Rupee"},
		{Code: "BRL", Name: "Brazilian Real"},
	}
}

// ValidCode checks the shape of an ISO 4217 code, not its existence.
func ValidCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
