package quote

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"lpreport/internal/token"
)

// Resolver prices tokens in a fixed reference currency, caching per symbol.
type Resolver struct {
	provider Provider
	currency string
	cache    *Cache
	logger   *zap.Logger
}

// NewResolver builds a Resolver. A nil cache gets a fresh one with DefaultTTL.
func NewResolver(provider Provider, currency string, cache *Cache, logger *zap.Logger) *Resolver {
	if cache == nil {
		cache = NewCache(DefaultTTL, nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		provider: provider,
		currency: currency,
		cache:    cache,
		logger:   logger,
	}
}

// ReferencedToken returns the currency code quotes are expressed in.
func (r *Resolver) ReferencedToken() string {
	return r.currency
}

// GetQuote returns the price of one unit of tok.
func (r *Resolver) GetQuote(ctx context.Context, tok token.Token) (float64, error) {
	if price, ok := r.cache.Get(tok.Symbol); ok {
		return price, nil
	}
	if r.provider == nil {
		return 0, fmt.Errorf("quote provider is nil")
	}

	price, err := r.provider.Quote(ctx, tok.Symbol, r.currency)
	if err != nil {
		return 0, err
	}
	r.cache.Set(tok.Symbol, price)
	r.logger.Debug("quote refreshed", zap.String("symbol", tok.Symbol), zap.String("currency", r.currency), zap.Float64("price", price))
	return price, nil
}
