package stats

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"lpreport/internal/dex"
	"lpreport/internal/model"
	"lpreport/internal/token"
)

// Token0Stats holds the token0 side of a position.
// RangeMin and RangeMax are reserved for range-bound amounts and stay nil.
type Token0Stats struct {
	RangeMin  *Amount
	RangeMax  *Amount
	Liquidity Amount
	Fee       Amount
}

// Token1Stats holds the token1 side of a position.
type Token1Stats struct {
	Liquidity Amount
	Fee       Amount
}

// PositionStats is one enriched liquidity position for a polling cycle.
type PositionStats struct {
	Owner    common.Address
	ID       string
	Position dex.Position
	Token0   Token0Stats
	Token1   Token1Stats
}

// NewPositionStats unscales the position's liquidity and uncollected fees into Amounts.
func NewPositionStats(owner common.Address, id *big.Int, position dex.Position, fees model.Fees, resolver Resolver, scales token.ScaleTable) (*PositionStats, error) {
	amount0, amount1, err := position.Amounts()
	if err != nil {
		return nil, fmt.Errorf("position %s amounts: %w", id, err)
	}

	tok0 := position.Pool.Token0
	tok1 := position.Pool.Token1
	scale0 := scales.Factor(tok0.Symbol)
	scale1 := scales.Factor(tok1.Symbol)

	return &PositionStats{
		Owner:    owner,
		ID:       id.String(),
		Position: position,
		Token0: Token0Stats{
			Liquidity: NewAmount(tok0, Unscale(amount0, tok0.Decimals, scale0), resolver),
			Fee:       NewAmount(tok0, Unscale(fees.Fee0, tok0.Decimals, scale0), resolver),
		},
		Token1: Token1Stats{
			Liquidity: NewAmount(tok1, Unscale(amount1, tok1.Decimals, scale1), resolver),
			Fee:       NewAmount(tok1, Unscale(fees.Fee1, tok1.Decimals, scale1), resolver),
		},
	}, nil
}

// TotalLiquidity is the reference-currency value of both liquidity sides.
func (p *PositionStats) TotalLiquidity(ctx context.Context) (float64, error) {
	return sumQuotes(ctx, p.Token0.Liquidity, p.Token1.Liquidity)
}

// TotalFees is the reference-currency value of both uncollected fee sides.
func (p *PositionStats) TotalFees(ctx context.Context) (float64, error) {
	return sumQuotes(ctx, p.Token0.Fee, p.Token1.Fee)
}

// InRange reports whether the pool tick is within [TickLower, TickUpper).
func (p *PositionStats) InRange() bool {
	return p.Position.InRange()
}

func sumQuotes(ctx context.Context, a, b Amount) (float64, error) {
	va, err := a.ToReferencedQuote(ctx)
	if err != nil {
		return 0, err
	}
	vb, err := b.ToReferencedQuote(ctx)
	if err != nil {
		return 0, err
	}
	return va + vb, nil
}
