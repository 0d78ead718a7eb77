package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PoolMeta captures the immutable parameters of a V3 pool.
type PoolMeta struct {
	Factory             common.Address `json:"factory"`
	Token0              common.Address `json:"token0"`
	Token1              common.Address `json:"token1"`
	Fee                 uint32         `json:"fee"`
	TickSpacing         int32          `json:"tick_spacing"`
	MaxLiquidityPerTick *big.Int       `json:"max_liquidity_per_tick"`
}
