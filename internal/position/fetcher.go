package position

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"lpreport/internal/dex"
	"lpreport/internal/stats"
	"lpreport/internal/token"
)

// Config holds the contracts and corrections used by the Fetcher.
type Config struct {
	PositionManager common.Address
	Factory         common.Address
	Scales          token.ScaleTable
}

// Fetcher reads every V3 position owned by a wallet.
type Fetcher struct {
	cfg     Config
	caller  dex.Caller
	manager *dex.PositionManager
	factory *dex.Factory
	logger  *zap.Logger
}

// NewFetcher builds a Fetcher. Zero contract addresses fall back to mainnet deployments.
func NewFetcher(cfg Config, caller dex.Caller, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PositionManager == (common.Address{}) {
		cfg.PositionManager = dex.DefaultPositionManagerAddress
	}
	if cfg.Factory == (common.Address{}) {
		cfg.Factory = dex.DefaultFactoryAddress
	}
	return &Fetcher{
		cfg:     cfg,
		caller:  caller,
		manager: dex.NewPositionManager(caller, cfg.PositionManager),
		factory: dex.NewFactory(caller, cfg.Factory),
		logger:  logger,
	}
}

// GetAllPositions returns one enriched record per position token of owner, in registry order.
// Reads are sequential; the first failure aborts the whole call.
func (f *Fetcher) GetAllPositions(ctx context.Context, owner common.Address, resolver stats.Resolver) ([]*stats.PositionStats, error) {
	if f.caller == nil {
		return nil, fmt.Errorf("chain client is nil")
	}

	count, err := f.manager.BalanceOf(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("position count: %w", err)
	}
	if !count.IsUint64() {
		return nil, fmt.Errorf("position count does not fit in uint64: %s", count)
	}
	f.logger.Debug("positions owned", zap.String("owner", owner.Hex()), zap.Uint64("count", count.Uint64()))

	positions := make([]*stats.PositionStats, 0, count.Uint64())
	for i := uint64(0); i < count.Uint64(); i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		tokenID, err := f.manager.TokenOfOwnerByIndex(ctx, owner, new(big.Int).SetUint64(i))
		if err != nil {
			return nil, fmt.Errorf("position index %d: %w", i, err)
		}

		record, err := f.fetchPosition(ctx, owner, tokenID, resolver)
		if err != nil {
			return nil, fmt.Errorf("position %s: %w", tokenID, err)
		}
		positions = append(positions, record)
	}

	return positions, nil
}

func (f *Fetcher) fetchPosition(ctx context.Context, owner common.Address, tokenID *big.Int, resolver stats.Resolver) (*stats.PositionStats, error) {
	state, err := f.manager.Positions(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	poolAddress, err := f.factory.GetPool(ctx, state.Token0, state.Token1, state.Fee)
	if err != nil {
		return nil, err
	}

	pool, err := dex.FetchPool(ctx, f.caller, poolAddress)
	if err != nil {
		return nil, fmt.Errorf("pool %s: %w", poolAddress.Hex(), err)
	}

	pos, err := dex.NewPosition(pool, state.Liquidity, state.TickLower, state.TickUpper)
	if err != nil {
		return nil, err
	}

	fees, err := f.manager.SimulateCollect(ctx, owner, tokenID)
	if err != nil {
		return nil, fmt.Errorf("collect fees: %w", err)
	}

	record, err := stats.NewPositionStats(owner, tokenID, pos, fees, resolver, f.cfg.Scales)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("position loaded",
		zap.String("id", record.ID),
		zap.String("pool", poolAddress.Hex()),
		zap.String("pair", pool.Token0.Symbol+"/"+pool.Token1.Symbol),
		zap.Uint32("fee", pool.Fee),
		zap.Int32("tick", pool.TickCurrent),
		zap.Int32("tick_lower", pos.TickLower),
		zap.Int32("tick_upper", pos.TickUpper),
		zap.Bool("in_range", record.InRange()),
	)

	return record, nil
}
