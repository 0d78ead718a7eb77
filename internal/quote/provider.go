package quote

import "context"

// Provider fetches the latest price of a symbol expressed in a reference currency.
type Provider interface {
	Quote(ctx context.Context, symbol string, convert string) (float64, error)
}
