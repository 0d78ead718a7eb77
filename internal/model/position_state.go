package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PositionState mirrors NonfungiblePositionManager.positions(tokenId).
// TokensOwed lags behind accrual; Fees from a simulated collect is authoritative.
type PositionState struct {
	Nonce                    *big.Int       `json:"nonce"`
	Operator                 common.Address `json:"operator"`
	Token0                   common.Address `json:"token0"`
	Token1                   common.Address `json:"token1"`
	Fee                      uint32         `json:"fee"`
	TickLower                int32          `json:"tick_lower"`
	TickUpper                int32          `json:"tick_upper"`
	Liquidity                *big.Int       `json:"liquidity"`
	FeeGrowthInside0LastX128 *big.Int       `json:"fee_growth_inside0_last_x128"`
	FeeGrowthInside1LastX128 *big.Int       `json:"fee_growth_inside1_last_x128"`
	TokensOwed0              *big.Int       `json:"tokens_owed0"`
	TokensOwed1              *big.Int       `json:"tokens_owed1"`
}

// Fees are the raw uncollected amounts claimable for a position.
type Fees struct {
	Fee0 *big.Int `json:"fee0"`
	Fee1 *big.Int `json:"fee1"`
}
