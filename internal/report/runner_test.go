package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"lpreport/internal/stats"
	"lpreport/internal/storage"
)

type stubSource struct {
	positions []*stats.PositionStats
	err       error
	calls     int
	owner     common.Address
	onCall    func()
}

func (s *stubSource) GetAllPositions(_ context.Context, owner common.Address, _ stats.Resolver) ([]*stats.PositionStats, error) {
	s.calls++
	s.owner = owner
	if s.onCall != nil {
		s.onCall()
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.positions, nil
}

func readReport(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	return string(data)
}

func TestRunOnceWritesReport(t *testing.T) {
	prices := newPrices()
	owner := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	source := &stubSource{positions: samplePositions(prices)}
	path := filepath.Join(t.TempDir(), "report.txt")

	runner := NewRunner(RunConfig{Owner: owner}, source, prices, storage.NewFileSink(path, false), nil)
	if _, err := runner.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	if got := readReport(t, path); got != sampleReport {
		t.Fatalf("unexpected report:\n%q", got)
	}
	if source.owner != owner {
		t.Fatalf("positions fetched for %s", source.owner.Hex())
	}
}

func TestRunOnceFailureTruncatesReport(t *testing.T) {
	prices := newPrices()
	source := &stubSource{positions: samplePositions(prices)}
	path := filepath.Join(t.TempDir(), "report.txt")
	runner := NewRunner(RunConfig{}, source, prices, storage.NewFileSink(path, false), nil)

	if _, err := runner.RunOnce(context.Background()); err != nil {
		t.Fatalf("first cycle: %v", err)
	}

	source.err = errors.New("rpc down")
	if _, err := runner.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected cycle error")
	}
	if got := readReport(t, path); got != "" {
		t.Fatalf("expected truncated report, got %q", got)
	}
}

func TestRunOnceAtomicKeepsLastReport(t *testing.T) {
	prices := newPrices()
	source := &stubSource{positions: samplePositions(prices)}
	path := filepath.Join(t.TempDir(), "report.txt")
	runner := NewRunner(RunConfig{}, source, prices, storage.NewFileSink(path, true), nil)

	if _, err := runner.RunOnce(context.Background()); err != nil {
		t.Fatalf("first cycle: %v", err)
	}

	prices.err = errors.New("quota exceeded")
	if _, err := runner.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected cycle error")
	}
	if got := readReport(t, path); got != sampleReport {
		t.Fatalf("last good report lost: %q", got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	prices := newPrices()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := &stubSource{positions: samplePositions(prices), onCall: cancel}
	path := filepath.Join(t.TempDir(), "report.txt")
	runner := NewRunner(RunConfig{Interval: time.Hour}, source, prices, storage.NewFileSink(path, false), nil)

	err := runner.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected one cycle, got %d", source.calls)
	}
	if got := readReport(t, path); got != sampleReport {
		t.Fatalf("unexpected report: %q", got)
	}
}

func TestRunRepeatsAndPropagatesErrors(t *testing.T) {
	prices := newPrices()
	source := &stubSource{positions: samplePositions(prices)}
	source.onCall = func() {
		if source.calls == 3 {
			source.err = errors.New("boom")
		}
	}
	path := filepath.Join(t.TempDir(), "report.txt")
	runner := NewRunner(RunConfig{Interval: time.Millisecond}, source, prices, storage.NewFileSink(path, false), nil)

	err := runner.Run(context.Background())
	if err == nil || err.Error() != "get positions: boom" {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.calls != 3 {
		t.Fatalf("expected three cycles, got %d", source.calls)
	}
}

func TestRunnerValidates(t *testing.T) {
	runner := NewRunner(RunConfig{}, nil, newPrices(), storage.NewFileSink("x", false), nil)
	if _, err := runner.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected error for missing source")
	}
}
