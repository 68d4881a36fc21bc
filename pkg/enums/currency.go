package enums

// Currency is the ISO 4217 code amounts are denominated in. The engine
// tracks integer minor units in a single currency.
type Currency string

const (
	CurrencyUSD Currency = "USD"
)

// IsValid reports whether the value is a supported Currency.
func (c Currency) IsValid() bool {
	return c == CurrencyUSD
}
