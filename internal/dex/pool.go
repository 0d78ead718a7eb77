package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"lpreport/internal/model"
	"lpreport/internal/token"
)

// Pool is a V3 pool with resolved tokens and its current price.
type Pool struct {
	Address      common.Address
	Token0       token.Token
	Token1       token.Token
	Fee          uint32
	SqrtPriceX96 *big.Int
	Liquidity    *big.Int
	TickCurrent  int32
}

// FetchPool reads immutables and live state of a pool and resolves its tokens.
func FetchPool(ctx context.Context, caller Caller, address common.Address) (Pool, error) {
	meta, err := FetchPoolMeta(ctx, caller, address)
	if err != nil {
		return Pool{}, err
	}
	state, err := FetchPoolState(ctx, caller, address)
	if err != nil {
		return Pool{}, err
	}

	token0, err := token.ByAddress(meta.Token0)
	if err != nil {
		return Pool{}, err
	}
	token1, err := token.ByAddress(meta.Token1)
	if err != nil {
		return Pool{}, err
	}

	return Pool{
		Address:      address,
		Token0:       token0,
		Token1:       token1,
		Fee:          meta.Fee,
		SqrtPriceX96: state.SqrtPriceX96,
		Liquidity:    state.Liquidity,
		TickCurrent:  state.Tick,
	}, nil
}

// FetchPoolMeta loads the immutable pool parameters.
func FetchPoolMeta(ctx context.Context, caller Caller, pool common.Address) (model.PoolMeta, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("parse pool abi: %w", err)
	}

	call := func(method string) (interface{}, error) {
		values, err := callMethod(ctx, caller, pool, common.Address{}, poolABI, method)
		if err != nil {
			return nil, err
		}
		return values[0], nil
	}

	var meta model.PoolMeta

	value, err := call("factory")
	if err != nil {
		return model.PoolMeta{}, err
	}
	if meta.Factory, err = asAddress(value); err != nil {
		return model.PoolMeta{}, fmt.Errorf("factory: %w", err)
	}

	value, err = call("token0")
	if err != nil {
		return model.PoolMeta{}, err
	}
	if meta.Token0, err = asAddress(value); err != nil {
		return model.PoolMeta{}, fmt.Errorf("token0: %w", err)
	}

	value, err = call("token1")
	if err != nil {
		return model.PoolMeta{}, err
	}
	if meta.Token1, err = asAddress(value); err != nil {
		return model.PoolMeta{}, fmt.Errorf("token1: %w", err)
	}

	value, err = call("fee")
	if err != nil {
		return model.PoolMeta{}, err
	}
	if meta.Fee, err = asUint24(value); err != nil {
		return model.PoolMeta{}, fmt.Errorf("fee: %w", err)
	}

	value, err = call("tickSpacing")
	if err != nil {
		return model.PoolMeta{}, err
	}
	if meta.TickSpacing, err = asInt24(value); err != nil {
		return model.PoolMeta{}, fmt.Errorf("tick spacing: %w", err)
	}

	value, err = call("maxLiquidityPerTick")
	if err != nil {
		return model.PoolMeta{}, err
	}
	if meta.MaxLiquidityPerTick, err = asBigInt(value); err != nil {
		return model.PoolMeta{}, fmt.Errorf("max liquidity per tick: %w", err)
	}

	return meta, nil
}

// FetchPoolState loads slot0 and the active liquidity of a pool.
func FetchPoolState(ctx context.Context, caller Caller, pool common.Address) (model.PoolState, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return model.PoolState{}, fmt.Errorf("parse pool abi: %w", err)
	}

	var state model.PoolState

	values, err := callMethod(ctx, caller, pool, common.Address{}, poolABI, "liquidity")
	if err != nil {
		return model.PoolState{}, err
	}
	if state.Liquidity, err = asBigInt(values[0]); err != nil {
		return model.PoolState{}, fmt.Errorf("liquidity: %w", err)
	}

	slot, err := callMethod(ctx, caller, pool, common.Address{}, poolABI, "slot0")
	if err != nil {
		return model.PoolState{}, err
	}
	if state.SqrtPriceX96, err = asBigInt(slot[0]); err != nil {
		return model.PoolState{}, fmt.Errorf("sqrt price: %w", err)
	}
	if state.Tick, err = asInt24(slot[1]); err != nil {
		return model.PoolState{}, fmt.Errorf("tick: %w", err)
	}
	if state.ObservationIndex, err = asUint16(slot[2]); err != nil {
		return model.PoolState{}, fmt.Errorf("observation index: %w", err)
	}
	if state.ObservationCardinality, err = asUint16(slot[3]); err != nil {
		return model.PoolState{}, fmt.Errorf("observation cardinality: %w", err)
	}
	if state.ObservationCardinalityNext, err = asUint16(slot[4]); err != nil {
		return model.PoolState{}, fmt.Errorf("observation cardinality next: %w", err)
	}
	feeProtocol, err := asBigInt(slot[5])
	if err != nil {
		return model.PoolState{}, fmt.Errorf("fee protocol: %w", err)
	}
	state.FeeProtocol = uint8(feeProtocol.Uint64())
	unlocked, ok := slot[6].(bool)
	if !ok {
		return model.PoolState{}, fmt.Errorf("unlocked: unsupported type %T", slot[6])
	}
	state.Unlocked = unlocked

	return state, nil
}
