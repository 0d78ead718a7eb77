package stats

import (
	"context"
	"math"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"lpreport/internal/dex"
	"lpreport/internal/model"
	"lpreport/internal/token"
)

type fixedResolver struct {
	prices map[string]float64
	calls  int
}

func (r *fixedResolver) GetQuote(_ context.Context, tok token.Token) (float64, error) {
	r.calls++
	return r.prices[tok.Symbol], nil
}

func (r *fixedResolver) ReferencedToken() string { return "EUR" }

func lookup(t *testing.T, addr string) token.Token {
	t.Helper()
	tok, err := token.ByAddress(common.HexToAddress(addr))
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return tok
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-12*math.Max(1, math.Abs(b))
}

var (
	usdcAddr = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	wethAddr = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
)

func TestAmountToReferencedQuote(t *testing.T) {
	resolver := &fixedResolver{prices: map[string]float64{"USDC": 0.5}}
	amount := NewAmount(lookup(t, usdcAddr), 1234.5, resolver)

	for i := 0; i < 2; i++ {
		got, err := amount.ToReferencedQuote(context.Background())
		if err != nil {
			t.Fatalf("quote: %v", err)
		}
		if got != 617.25 {
			t.Fatalf("value mismatch: %v", got)
		}
	}
	if resolver.calls != 2 {
		t.Fatalf("every call must consult the resolver, got %d", resolver.calls)
	}

	desc, err := amount.Describe(context.Background())
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if desc != "1234.5 USDC (617.25 EUR)" {
		t.Fatalf("describe mismatch: %q", desc)
	}
}

func TestNewAmountFromBig(t *testing.T) {
	raw, _ := new(big.Int).SetString("123456789012345678901", 10)
	amount := NewAmountFromBig(lookup(t, wethAddr), raw, nil)
	if amount.Amount != 123456789012345678901.0 {
		t.Fatalf("amount mismatch: %v", amount.Amount)
	}
	if _, err := amount.ToReferencedQuote(context.Background()); err == nil {
		t.Fatalf("expected error without resolver")
	}
}

func TestUnscale(t *testing.T) {
	one := decimal.NewFromInt(1)
	if got := Unscale(big.NewInt(1234567), 6, one); got != 1.234567 {
		t.Fatalf("default scale mismatch: %v", got)
	}

	fee := big.NewInt(5_000_000_000_000_000) // 0.005 WETH in wei
	weth := token.DefaultScaleTable().Factor("WETH")
	want := 5e15 / math.Pow(10, 8) / 1e10
	if got := Unscale(fee, 8, weth); !almostEqual(got, want) {
		t.Fatalf("weth scale mismatch: %v != %v", got, want)
	}

	if got := Unscale(big.NewInt(1), 8, weth); !almostEqual(got, 1e-18) {
		t.Fatalf("smallest unit lost: %v", got)
	}
	if got := Unscale(nil, 6, one); got != 0 {
		t.Fatalf("nil amount: %v", got)
	}
}

func testPosition(t *testing.T, tick int32) dex.Position {
	t.Helper()
	sqrt, err := dex.SqrtRatioAtTick(tick)
	if err != nil {
		t.Fatalf("sqrt: %v", err)
	}
	pool := dex.Pool{
		Token0:       lookup(t, usdcAddr),
		Token1:       lookup(t, wethAddr),
		Fee:          3000,
		SqrtPriceX96: sqrt,
		TickCurrent:  tick,
	}
	pos, err := dex.NewPosition(pool, big.NewInt(1e15), tick-600, tick+600)
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	return pos
}

func TestNewPositionStats(t *testing.T) {
	resolver := &fixedResolver{prices: map[string]float64{"USDC": 1, "WETH": 2000}}
	pos := testPosition(t, 200000)
	fees := model.Fees{
		Fee0: big.NewInt(2_500_000),                // 2.5 USDC
		Fee1: big.NewInt(1_000_000_000_000_000), // 0.001 WETH
	}
	owner := common.HexToAddress("0x1234567890123456789012345678901234567890")

	stats, err := NewPositionStats(owner, big.NewInt(42), pos, fees, resolver, token.DefaultScaleTable())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ID != "42" || stats.Owner != owner {
		t.Fatalf("identity mismatch: %s %s", stats.ID, stats.Owner.Hex())
	}
	if stats.Token0.RangeMin != nil || stats.Token0.RangeMax != nil {
		t.Fatalf("range placeholders must stay empty")
	}
	if stats.Token0.Fee.Amount != 2.5 {
		t.Fatalf("fee0 mismatch: %v", stats.Token0.Fee.Amount)
	}
	if !almostEqual(stats.Token1.Fee.Amount, 0.001) {
		t.Fatalf("fee1 mismatch: %v", stats.Token1.Fee.Amount)
	}

	amount0, amount1, err := pos.Amounts()
	if err != nil {
		t.Fatalf("amounts: %v", err)
	}
	want0, _ := new(big.Float).SetInt(amount0).Float64()
	want1, _ := new(big.Float).SetInt(amount1).Float64()
	if !almostEqual(stats.Token0.Liquidity.Amount, want0/1e6) {
		t.Fatalf("liquidity0 mismatch: %v", stats.Token0.Liquidity.Amount)
	}
	if !almostEqual(stats.Token1.Liquidity.Amount, want1/1e8/1e10) {
		t.Fatalf("liquidity1 mismatch: %v", stats.Token1.Liquidity.Amount)
	}

	totalFees, err := stats.TotalFees(context.Background())
	if err != nil {
		t.Fatalf("total fees: %v", err)
	}
	if !almostEqual(totalFees, 2.5+2) {
		t.Fatalf("total fees mismatch: %v", totalFees)
	}

	totalLiquidity, err := stats.TotalLiquidity(context.Background())
	if err != nil {
		t.Fatalf("total liquidity: %v", err)
	}
	wantLiquidity := stats.Token0.Liquidity.Amount*1 + stats.Token1.Liquidity.Amount*2000
	if !almostEqual(totalLiquidity, wantLiquidity) {
		t.Fatalf("total liquidity mismatch: %v != %v", totalLiquidity, wantLiquidity)
	}
	if !stats.InRange() {
		t.Fatalf("expected in range")
	}
}

func TestPositionStatsInRangeEdges(t *testing.T) {
	pos := testPosition(t, 0)
	cases := []struct {
		tick int32
		want bool
	}{
		{tick: pos.TickLower, want: true},
		{tick: pos.TickUpper, want: false},
		{tick: pos.TickLower - 1, want: false},
		{tick: pos.TickUpper - 1, want: true},
	}
	for _, tc := range cases {
		p := pos
		p.Pool.TickCurrent = tc.tick
		stats := &PositionStats{Position: p}
		if stats.InRange() != tc.want {
			t.Fatalf("tick %d: got %v want %v", tc.tick, stats.InRange(), tc.want)
		}
	}
}
