package stats

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"

	"lpreport/internal/token"
)

// unscalePrecision bounds the decimal places kept when dividing by a scale correction.
const unscalePrecision = 36

// Resolver prices a token in the reference currency.
type Resolver interface {
	GetQuote(ctx context.Context, tok token.Token) (float64, error)
	ReferencedToken() string
}

// Amount is a quantity of a token that can be valued through a Resolver.
type Amount struct {
	Token    token.Token
	Amount   float64
	resolver Resolver
}

func NewAmount(tok token.Token, amount float64, resolver Resolver) Amount {
	return Amount{Token: tok, Amount: amount, resolver: resolver}
}

// NewAmountFromBig converts an on-chain integer to a float quantity.
func NewAmountFromBig(tok token.Token, amount *big.Int, resolver Resolver) Amount {
	var f float64
	if amount != nil {
		f, _ = new(big.Float).SetInt(amount).Float64()
	}
	return NewAmount(tok, f, resolver)
}

// ToReferencedQuote values the amount in the reference currency.
// Nothing is memoized here; the resolver's cache makes repeated calls cheap.
func (a Amount) ToReferencedQuote(ctx context.Context) (float64, error) {
	if a.resolver == nil {
		return 0, fmt.Errorf("%s amount has no resolver", a.Token.Symbol)
	}
	price, err := a.resolver.GetQuote(ctx, a.Token)
	if err != nil {
		return 0, fmt.Errorf("quote %s: %w", a.Token.Symbol, err)
	}
	return price * a.Amount, nil
}

// Describe renders "<amount> <symbol> (<value> <currency>)".
func (a Amount) Describe(ctx context.Context) (string, error) {
	value, err := a.ToReferencedQuote(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s (%s %s)",
		strconv.FormatFloat(a.Amount, 'f', -1, 64),
		a.Token.Symbol,
		strconv.FormatFloat(value, 'f', -1, 64),
		a.resolver.ReferencedToken(),
	), nil
}

// Unscale converts a raw integer amount into a token quantity:
// raw / 10^decimals / scale, computed exactly and rounded once to float64.
func Unscale(raw *big.Int, decimals uint8, scale decimal.Decimal) float64 {
	if raw == nil {
		return 0
	}
	value := decimal.NewFromBigInt(raw, -int32(decimals))
	if !scale.Equal(decimal.NewFromInt(1)) {
		value = value.DivRound(scale, unscalePrecision)
	}
	return value.InexactFloat64()
}
