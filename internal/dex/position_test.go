package dex

import (
	"math/big"
	"testing"
)

func poolAtTick(t *testing.T, tick int32) Pool {
	t.Helper()
	sqrt, err := SqrtRatioAtTick(tick)
	if err != nil {
		t.Fatalf("sqrt ratio: %v", err)
	}
	return Pool{SqrtPriceX96: sqrt, TickCurrent: tick}
}

func TestPositionAmountsBelowRange(t *testing.T) {
	pos, err := NewPosition(poolAtTick(t, -200), big.NewInt(1e18), -60, 60)
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	amount0, amount1, err := pos.Amounts()
	if err != nil {
		t.Fatalf("amounts: %v", err)
	}
	if amount0.Sign() <= 0 || amount1.Sign() != 0 {
		t.Fatalf("below range must be all token0: %s %s", amount0, amount1)
	}
	if pos.InRange() {
		t.Fatalf("expected out of range")
	}
}

func TestPositionAmountsAboveRange(t *testing.T) {
	pos, err := NewPosition(poolAtTick(t, 200), big.NewInt(1e18), -60, 60)
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	amount0, amount1, err := pos.Amounts()
	if err != nil {
		t.Fatalf("amounts: %v", err)
	}
	if amount0.Sign() != 0 || amount1.Sign() <= 0 {
		t.Fatalf("above range must be all token1: %s %s", amount0, amount1)
	}
}

func TestPositionAmountsSymmetricInRange(t *testing.T) {
	pos, err := NewPosition(poolAtTick(t, 0), big.NewInt(1e18), -60, 60)
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	amount0, amount1, err := pos.Amounts()
	if err != nil {
		t.Fatalf("amounts: %v", err)
	}
	if amount0.Sign() <= 0 || amount1.Sign() <= 0 {
		t.Fatalf("in range must hold both tokens: %s %s", amount0, amount1)
	}
	diff := new(big.Int).Sub(amount0, amount1)
	if diff.CmpAbs(big.NewInt(1000)) > 0 {
		t.Fatalf("symmetric range amounts diverge: %s vs %s", amount0, amount1)
	}
	if !pos.InRange() {
		t.Fatalf("expected in range")
	}
}

func TestPositionInRangeEdges(t *testing.T) {
	cases := []struct {
		tick int32
		want bool
	}{
		{tick: -60, want: true},
		{tick: 60, want: false},
		{tick: -61, want: false},
		{tick: 59, want: true},
	}
	for _, tc := range cases {
		pos, err := NewPosition(poolAtTick(t, tc.tick), big.NewInt(1), -60, 60)
		if err != nil {
			t.Fatalf("position: %v", err)
		}
		if pos.InRange() != tc.want {
			t.Fatalf("tick %d: in range %v, want %v", tc.tick, pos.InRange(), tc.want)
		}
	}
}

func TestNewPositionInvalidTicks(t *testing.T) {
	if _, err := NewPosition(poolAtTick(t, 0), big.NewInt(1), 60, 60); err == nil {
		t.Fatalf("expected error for empty range")
	}
	if _, err := NewPosition(poolAtTick(t, 0), big.NewInt(1), MinTick-1, 0); err == nil {
		t.Fatalf("expected error for tick below min")
	}
}
