package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"lpreport/internal/chain"
	"lpreport/internal/config"
	"lpreport/internal/position"
	"lpreport/internal/quote"
	"lpreport/internal/report"
	"lpreport/internal/storage"
	"lpreport/internal/token"
)

type app struct {
	owner  common.Address
	chain  *chain.Client
	runner *report.Runner
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	owner, err := config.ParseAddress("wallet", cfg.Address)
	if err != nil {
		return nil, err
	}
	manager, err := config.ParseAddress("position manager", cfg.PositionManager)
	if err != nil {
		return nil, err
	}
	factory, err := config.ParseAddress("factory", cfg.Factory)
	if err != nil {
		return nil, err
	}

	scales, err := token.NewScaleTable(cfg.ScaleCorrections)
	if err != nil {
		return nil, err
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL, chain.Options{RateLimit: cfg.RPCRateLimit})
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}

	chainID, err := chainClient.GetChainID(ctx)
	if err != nil {
		chainClient.Close()
		return nil, fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() || chainID.Uint64() != token.MainnetChainID {
		chainClient.Close()
		return nil, fmt.Errorf("unsupported chain id %s, want %d", chainID, token.MainnetChainID)
	}

	provider := quote.NewCoinMarketCap(quote.CoinMarketCapOptions{
		BaseURL: cfg.CMCBaseURL,
		APIKey:  cfg.CMCAPIKey,
		Timeout: cfg.QuoteTimeout,
	}, logger.Named("cmc"))
	resolver := quote.NewResolver(provider, cfg.CompareToken, quote.NewCache(cfg.QuoteTTL, nil), logger.Named("quote"))

	fetcher := position.NewFetcher(position.Config{
		PositionManager: manager,
		Factory:         factory,
		Scales:          scales,
	}, chainClient, logger.Named("position"))

	runner := report.NewRunner(report.RunConfig{
		Owner:    owner,
		Interval: cfg.Interval,
	}, fetcher, resolver, storage.NewFileSink(cfg.Out, cfg.AtomicWrite), logger.Named("report"))

	return &app{owner: owner, chain: chainClient, runner: runner}, nil
}

func (a *app) Close() {
	if a.chain != nil {
		a.chain.Close()
	}
}
