package types

import "time"

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyVND Currency = "VND"
)

func (c Currency) String() string {
	return string(c)
}

// RateType is the side of the bank's quote
type RateType string

const (
	RateTypeBUY      RateType = "BUY"      // cash buying
	RateTypeTRANSFER RateType = "TRANSFER" // transfer buying
	RateTypeSELL     RateType = "SELL"
)

func (r RateType) String() string {
	return string(r)
}

// Valid reports whether the rate type is a known quote side
func (r RateType) Valid() bool {
	switch r {
	case RateTypeBUY, RateTypeTRANSFER, RateTypeSELL:
		return true
	default:
		return false
	}
}

type Source string

const (
	SourceVietcombank Source = "Vietcombank" // https://portal.vietcombank.com.vn/
)

func (s Source) String() string {
	return string(s)
}

// ExchangeRate is a single quote: 1 Base is worth Rate Target
type ExchangeRate struct {
	AsOf      time.Time `json:"as_of"`
	FetchedAt time.Time `json:"fetched_at"`
	Base      Currency  `json:"base"`
	Target    Currency  `json:"target"`
	RateType  RateType  `json:"rate_type"`
	Source    Source    `json:"source"`
	Rate      float64   `json:"rate"`
}

type RateQuery struct {
	Target   *Currency `json:"target"`
	RateType *RateType `json:"rate_type"`
	Source   *Source   `json:"source"`
	Base     Currency  `json:"base"`
	Offset   int64     `json:"offset"`
	Limit    int32     `json:"limit"`
}

// Page wraps the results for pagination
type Page[T any] struct {
	Results []T   `json:"results"`
	Total   int64 `json:"total"`
}
