package dex

import (
	"fmt"
	"math/big"
)

// Position is liquidity provided to a pool over [TickLower, TickUpper).
type Position struct {
	Pool      Pool
	Liquidity *big.Int
	TickLower int32
	TickUpper int32
}

// NewPosition validates the tick range and builds a Position.
func NewPosition(pool Pool, liquidity *big.Int, tickLower, tickUpper int32) (Position, error) {
	if tickLower >= tickUpper {
		return Position{}, fmt.Errorf("tick lower %d must be below tick upper %d", tickLower, tickUpper)
	}
	if tickLower < MinTick || tickUpper > MaxTick {
		return Position{}, fmt.Errorf("ticks out of range: [%d, %d)", tickLower, tickUpper)
	}
	if liquidity == nil {
		liquidity = new(big.Int)
	}
	if pool.SqrtPriceX96 == nil {
		return Position{}, fmt.Errorf("pool %s has no price", pool.Address.Hex())
	}
	return Position{
		Pool:      pool,
		Liquidity: new(big.Int).Set(liquidity),
		TickLower: tickLower,
		TickUpper: tickUpper,
	}, nil
}

// Amounts returns the raw token0 and token1 amounts the liquidity is worth at the pool price.
func (p Position) Amounts() (*big.Int, *big.Int, error) {
	sqrtLower, err := SqrtRatioAtTick(p.TickLower)
	if err != nil {
		return nil, nil, err
	}
	sqrtUpper, err := SqrtRatioAtTick(p.TickUpper)
	if err != nil {
		return nil, nil, err
	}

	tick := p.Pool.TickCurrent
	switch {
	case tick < p.TickLower:
		return Amount0Delta(sqrtLower, sqrtUpper, p.Liquidity), new(big.Int), nil
	case tick < p.TickUpper:
		return Amount0Delta(p.Pool.SqrtPriceX96, sqrtUpper, p.Liquidity),
			Amount1Delta(sqrtLower, p.Pool.SqrtPriceX96, p.Liquidity), nil
	default:
		return new(big.Int), Amount1Delta(sqrtLower, sqrtUpper, p.Liquidity), nil
	}
}

// InRange reports whether the pool tick lies in [TickLower, TickUpper).
func (p Position) InRange() bool {
	return p.Pool.TickCurrent >= p.TickLower && p.Pool.TickCurrent < p.TickUpper
}
