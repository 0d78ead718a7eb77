package report

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"

	"lpreport/internal/stats"
)

// epsilon is the gap between 1 and the next float64, added before rounding so
// values like 1.005 round up.
var epsilon = math.Nextafter(1, 2) - 1

// Round rounds v to places decimals, halves toward positive infinity.
func Round(v float64, places int) float64 {
	p := math.Pow10(places)
	scaled := float64((v + epsilon) * p)
	r := math.Floor(scaled)
	if scaled-r >= 0.5 {
		r++
	}
	return r / p
}

// FormatNumber rounds v and renders it with the shortest exact representation.
func FormatNumber(v float64, places int) string {
	r := Round(v, places)
	if r == 0 {
		r = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// Totals are the reference-currency sums across every reported position.
type Totals struct {
	Liquidity float64
	Fees      float64
}

func (t Totals) Grand() float64 {
	return t.Liquidity + t.Fees
}

// Write renders the positions report.
//
// Each position takes two lines, one per token, followed by a blank line. The
// totals line and the grand total close the report without a trailing newline.
func Write(ctx context.Context, w io.Writer, positions []*stats.PositionStats, currency string) (Totals, error) {
	var totals Totals

	for _, pos := range positions {
		refLiquid0, err := pos.Token0.Liquidity.ToReferencedQuote(ctx)
		if err != nil {
			return totals, fmt.Errorf("position %s: %w", pos.ID, err)
		}
		refLiquid1, err := pos.Token1.Liquidity.ToReferencedQuote(ctx)
		if err != nil {
			return totals, fmt.Errorf("position %s: %w", pos.ID, err)
		}
		refFee0, err := pos.Token0.Fee.ToReferencedQuote(ctx)
		if err != nil {
			return totals, fmt.Errorf("position %s: %w", pos.ID, err)
		}
		refFee1, err := pos.Token1.Fee.ToReferencedQuote(ctx)
		if err != nil {
			return totals, fmt.Errorf("position %s: %w", pos.ID, err)
		}
		totals.Liquidity += refLiquid0 + refLiquid1
		totals.Fees += refFee0 + refFee1

		if err := writeTokenLine(w, pos.Token0.Liquidity, pos.Token0.Fee, pos.Position.Pool.Token0.Symbol, refLiquid0, refFee0, currency, "\n"); err != nil {
			return totals, err
		}
		if err := writeTokenLine(w, pos.Token1.Liquidity, pos.Token1.Fee, pos.Position.Pool.Token1.Symbol, refLiquid1, refFee1, currency, "\n\n"); err != nil {
			return totals, err
		}
	}

	if _, err := fmt.Fprintf(w, "              [u][b]%-7s[/b][/u] %s            [u][b]%-7s[/b][/u]\n\n",
		FormatNumber(totals.Liquidity, 2), currency, FormatNumber(totals.Fees, 2)); err != nil {
		return totals, fmt.Errorf("write totals: %w", err)
	}
	if _, err := fmt.Fprintf(w, "                       [s=1.4][u][b]%-7s[/b] %s[/u][/s]",
		FormatNumber(totals.Grand(), 2), currency); err != nil {
		return totals, fmt.Errorf("write grand total: %w", err)
	}

	return totals, nil
}

func writeTokenLine(w io.Writer, liquidity, fee stats.Amount, symbol string, refLiquid, refFee float64, currency, end string) error {
	_, err := fmt.Fprintf(w, "%-7s %-4s ([b]%-7s[/b] %s)  %-7s ([b]%-7s[/b])%s",
		FormatNumber(liquidity.Amount, 3), symbol,
		FormatNumber(refLiquid, 2), currency,
		FormatNumber(fee.Amount, 3),
		FormatNumber(refFee, 2),
		end,
	)
	if err != nil {
		return fmt.Errorf("write %s line: %w", symbol, err)
	}
	return nil
}
