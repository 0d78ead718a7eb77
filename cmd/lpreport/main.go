package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lpreport/internal/config"
	"lpreport/internal/dex"
	"lpreport/internal/quote"
	"lpreport/internal/report"
	"lpreport/internal/token"
)

func main() {
	root := &cobra.Command{
		Use:          "lpreport",
		Short:        "Uniswap V3 liquidity position reporter",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Rewrite the report on every interval until interrupted",
		RunE:  runLoop,
	}
	addReportFlags(runCmd.Flags())
	runCmd.Flags().Duration("interval", report.DefaultInterval, "delay between report cycles")
	root.AddCommand(runCmd)

	onceCmd := &cobra.Command{
		Use:   "once",
		Short: "Write the report a single time",
		RunE:  runOnce,
	}
	addReportFlags(onceCmd.Flags())
	root.AddCommand(onceCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addReportFlags(flags *pflag.FlagSet) {
	flags.String("address", "", "wallet address owning the positions")
	flags.String("cmc-api-key", "", "CoinMarketCap API key")
	flags.String("compare-token", "", "reference currency symbol (e.g. EUR)")
	flags.String("out", "", "report output path")
	flags.String("rpc", "", "Ethereum RPC URL")
	flags.String("position-manager", dex.DefaultPositionManagerAddress.Hex(), "NonfungiblePositionManager address")
	flags.String("factory", dex.DefaultFactoryAddress.Hex(), "UniswapV3Factory address")
	flags.String("cmc-base-url", quote.DefaultCoinMarketCapURL, "CoinMarketCap API base URL")
	flags.Duration("quote-ttl", quote.DefaultTTL, "how long a fetched quote stays fresh")
	flags.Duration("quote-timeout", quote.DefaultTimeout, "CoinMarketCap request timeout")
	flags.String("scale-corrections", "", "per-symbol amount divisors (comma-separated SYMBOL=factor)")
	flags.Float64("rpc-rate-limit", 0, "max RPC calls per second, 0 disables limiting")
	flags.Bool("atomic-write", false, "write to a temp file and rename, keeping the last good report on failure")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

func runLoop(cmd *cobra.Command, _ []string) error {
	return execute(cmd, func(ctx context.Context, runner *report.Runner) error {
		err := runner.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
}

func runOnce(cmd *cobra.Command, _ []string) error {
	return execute(cmd, func(ctx context.Context, runner *report.Runner) error {
		_, err := runner.RunOnce(ctx)
		return err
	})
}

func execute(cmd *cobra.Command, fn func(context.Context, *report.Runner) error) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", zap.Error(err))
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return err
	}
	defer app.Close()

	logger.Info("lpreport start",
		zap.String("address", app.owner.Hex()),
		zap.String("compare_token", cfg.CompareToken),
		zap.String("out", cfg.Out),
		zap.Duration("interval", cfg.Interval),
		zap.Duration("quote_ttl", cfg.QuoteTTL),
		zap.Bool("atomic_write", cfg.AtomicWrite),
		zap.Int("known_tokens", len(token.Known())),
	)

	if err := fn(ctx, app.runner); err != nil {
		logger.Error("report cycle failed", zap.Error(err))
		return err
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
