package report

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"lpreport/internal/stats"
	"lpreport/internal/storage"
)

// DefaultInterval is the delay between report cycles.
const DefaultInterval = 2 * time.Minute

// PositionSource lists the enriched positions of a wallet.
type PositionSource interface {
	GetAllPositions(ctx context.Context, owner common.Address, resolver stats.Resolver) ([]*stats.PositionStats, error)
}

// RunConfig holds runtime settings for the report loop.
type RunConfig struct {
	Owner    common.Address
	Interval time.Duration
}

// Runner periodically rewrites the positions report.
type Runner struct {
	cfg      RunConfig
	source   PositionSource
	resolver stats.Resolver
	sink     storage.Sink
	logger   *zap.Logger
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, source PositionSource, resolver stats.Resolver, sink storage.Sink, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Runner{
		cfg:      cfg,
		source:   source,
		resolver: resolver,
		sink:     sink,
		logger:   logger,
	}
}

func (r *Runner) validate() error {
	if r.source == nil {
		return fmt.Errorf("position source is nil")
	}
	if r.resolver == nil {
		return fmt.Errorf("quote resolver is nil")
	}
	if r.sink == nil {
		return fmt.Errorf("report sink is nil")
	}
	return nil
}

// RunOnce executes a single cycle. The destination is opened before positions
// are fetched, so with a truncating sink a failed cycle leaves the report empty
// or partial.
func (r *Runner) RunOnce(ctx context.Context) (Totals, error) {
	if err := r.validate(); err != nil {
		return Totals{}, err
	}

	dest, err := r.sink.Open()
	if err != nil {
		return Totals{}, fmt.Errorf("open report: %w", err)
	}

	positions, err := r.source.GetAllPositions(ctx, r.cfg.Owner, r.resolver)
	if err != nil {
		r.discard(dest)
		return Totals{}, fmt.Errorf("get positions: %w", err)
	}

	totals, err := Write(ctx, dest, positions, r.resolver.ReferencedToken())
	if err != nil {
		r.discard(dest)
		return Totals{}, fmt.Errorf("write report: %w", err)
	}

	if err := dest.Commit(); err != nil {
		return Totals{}, fmt.Errorf("commit report: %w", err)
	}

	r.logger.Info("refreshed",
		zap.Int("positions", len(positions)),
		zap.Float64("liquidity", totals.Liquidity),
		zap.Float64("fees", totals.Fees),
		zap.String("currency", r.resolver.ReferencedToken()),
	)
	return totals, nil
}

// Run repeats RunOnce until ctx is cancelled or a cycle fails.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.validate(); err != nil {
		return err
	}

	for {
		if _, err := r.RunOnce(ctx); err != nil {
			return err
		}

		timer := time.NewTimer(r.cfg.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (r *Runner) discard(dest storage.Destination) {
	if err := dest.Discard(); err != nil {
		r.logger.Warn("discard report failed", zap.Error(err))
	}
}
