package valueobject

// Currency is an ISO 4217 currency code
type Currency string

const (
	INR Currency = "INR"
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	AED Currency = "AED"
	SGD Currency = "SGD"
)

// DefaultCurrency is the home currency for Indian-compliance books
const DefaultCurrency = INR

// IsValid reports whether the currency is one of the supported codes
func (c Currency) IsValid() bool {
	switch c {
	case INR, USD, EUR, GBP, AED, SGD:
		return true
	}
	return false
}

// String returns the currency code
func (c Currency) String() string {
	return string(c)
}
