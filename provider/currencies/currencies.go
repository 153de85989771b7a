package currencies

import "github.com/sig-0/vcbrates/storage/types"

var (
	USD types.Currency = "USD"
	EUR types.Currency = "EUR"
	JPY types.Currency = "JPY"
	AUD types.Currency = "AUD"
	VND types.Currency = "VND"
)
