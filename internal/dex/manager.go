package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"lpreport/internal/model"
)

// Mainnet deployment addresses.
var (
	DefaultPositionManagerAddress = common.HexToAddress("0xC36442b4a4522E871399CD717aBDD847Ab11FE88")
	DefaultFactoryAddress         = common.HexToAddress("0x1F98431c8aD98523631AE4a59f267346ea31F984")
)

// PositionManager reads the NonfungiblePositionManager registry.
type PositionManager struct {
	caller  Caller
	address common.Address
}

func NewPositionManager(caller Caller, address common.Address) *PositionManager {
	return &PositionManager{caller: caller, address: address}
}

// BalanceOf returns the number of position tokens owned by owner.
func (m *PositionManager) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	parsed, err := PositionManagerABI()
	if err != nil {
		return nil, fmt.Errorf("parse position manager abi: %w", err)
	}
	values, err := callMethod(ctx, m.caller, m.address, common.Address{}, parsed, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// TokenOfOwnerByIndex returns the position token id at index in owner's enumeration.
func (m *PositionManager) TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index *big.Int) (*big.Int, error) {
	parsed, err := PositionManagerABI()
	if err != nil {
		return nil, fmt.Errorf("parse position manager abi: %w", err)
	}
	values, err := callMethod(ctx, m.caller, m.address, common.Address{}, parsed, "tokenOfOwnerByIndex", owner, index)
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// Positions returns the stored state of a position token.
func (m *PositionManager) Positions(ctx context.Context, tokenID *big.Int) (model.PositionState, error) {
	parsed, err := PositionManagerABI()
	if err != nil {
		return model.PositionState{}, fmt.Errorf("parse position manager abi: %w", err)
	}
	values, err := callMethod(ctx, m.caller, m.address, common.Address{}, parsed, "positions", tokenID)
	if err != nil {
		return model.PositionState{}, err
	}

	var state model.PositionState
	if state.Nonce, err = asBigInt(values[0]); err != nil {
		return model.PositionState{}, fmt.Errorf("nonce: %w", err)
	}
	if state.Operator, err = asAddress(values[1]); err != nil {
		return model.PositionState{}, fmt.Errorf("operator: %w", err)
	}
	if state.Token0, err = asAddress(values[2]); err != nil {
		return model.PositionState{}, fmt.Errorf("token0: %w", err)
	}
	if state.Token1, err = asAddress(values[3]); err != nil {
		return model.PositionState{}, fmt.Errorf("token1: %w", err)
	}
	if state.Fee, err = asUint24(values[4]); err != nil {
		return model.PositionState{}, fmt.Errorf("fee: %w", err)
	}
	if state.TickLower, err = asInt24(values[5]); err != nil {
		return model.PositionState{}, fmt.Errorf("tick lower: %w", err)
	}
	if state.TickUpper, err = asInt24(values[6]); err != nil {
		return model.PositionState{}, fmt.Errorf("tick upper: %w", err)
	}
	if state.Liquidity, err = asBigInt(values[7]); err != nil {
		return model.PositionState{}, fmt.Errorf("liquidity: %w", err)
	}
	if state.FeeGrowthInside0LastX128, err = asBigInt(values[8]); err != nil {
		return model.PositionState{}, fmt.Errorf("fee growth 0: %w", err)
	}
	if state.FeeGrowthInside1LastX128, err = asBigInt(values[9]); err != nil {
		return model.PositionState{}, fmt.Errorf("fee growth 1: %w", err)
	}
	if state.TokensOwed0, err = asBigInt(values[10]); err != nil {
		return model.PositionState{}, fmt.Errorf("tokens owed 0: %w", err)
	}
	if state.TokensOwed1, err = asBigInt(values[11]); err != nil {
		return model.PositionState{}, fmt.Errorf("tokens owed 1: %w", err)
	}
	return state, nil
}

// CollectParams is the tuple argument of collect.
type CollectParams struct {
	TokenId    *big.Int
	Recipient  common.Address
	Amount0Max *big.Int
	Amount1Max *big.Int
}

// SimulateCollect runs collect as an eth_call from owner and returns the claimable fees.
// Nothing is mutated on chain.
func (m *PositionManager) SimulateCollect(ctx context.Context, owner common.Address, tokenID *big.Int) (model.Fees, error) {
	parsed, err := PositionManagerABI()
	if err != nil {
		return model.Fees{}, fmt.Errorf("parse position manager abi: %w", err)
	}
	// Some tokens revert on transfer to the zero address, so the owner is the recipient.
	params := CollectParams{
		TokenId:    tokenID,
		Recipient:  owner,
		Amount0Max: MaxUint128(),
		Amount1Max: MaxUint128(),
	}
	values, err := callMethod(ctx, m.caller, m.address, owner, parsed, "collect", params)
	if err != nil {
		return model.Fees{}, err
	}

	fee0, err := asBigInt(values[0])
	if err != nil {
		return model.Fees{}, fmt.Errorf("amount0: %w", err)
	}
	fee1, err := asBigInt(values[1])
	if err != nil {
		return model.Fees{}, fmt.Errorf("amount1: %w", err)
	}
	return model.Fees{Fee0: fee0, Fee1: fee1}, nil
}

// Factory resolves pools from the V3 factory.
type Factory struct {
	caller  Caller
	address common.Address
}

func NewFactory(caller Caller, address common.Address) *Factory {
	return &Factory{caller: caller, address: address}
}

// GetPool returns the pool for the token pair and fee tier.
func (f *Factory) GetPool(ctx context.Context, token0, token1 common.Address, fee uint32) (common.Address, error) {
	parsed, err := FactoryABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse factory abi: %w", err)
	}
	values, err := callMethod(ctx, f.caller, f.address, common.Address{}, parsed, "getPool", token0, token1, new(big.Int).SetUint64(uint64(fee)))
	if err != nil {
		return common.Address{}, err
	}
	pool, err := asAddress(values[0])
	if err != nil {
		return common.Address{}, fmt.Errorf("pool: %w", err)
	}
	if pool == (common.Address{}) {
		return common.Address{}, fmt.Errorf("no pool for %s/%s fee %d", token0.Hex(), token1.Hex(), fee)
	}
	return pool, nil
}
