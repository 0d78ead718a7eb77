package model

import "math/big"

// PoolState is the live state of a V3 pool: slot0 plus in-range liquidity.
type PoolState struct {
	Liquidity                  *big.Int `json:"liquidity"`
	SqrtPriceX96               *big.Int `json:"sqrt_price_x96"`
	Tick                       int32    `json:"tick"`
	ObservationIndex           uint16   `json:"observation_index"`
	ObservationCardinality     uint16   `json:"observation_cardinality"`
	ObservationCardinalityNext uint16   `json:"observation_cardinality_next"`
	FeeProtocol                uint8    `json:"fee_protocol"`
	Unlocked                   bool     `json:"unlocked"`
}
