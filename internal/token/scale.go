package token

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultScaleCorrections holds the built-in per-symbol divisors.
// WETH is declared with 8 decimals while the chain uses 18.
var DefaultScaleCorrections = map[string]string{
	"WETH": "10000000000",
}

// ScaleTable maps a token symbol to the divisor applied after unscaling raw amounts.
type ScaleTable struct {
	factors map[string]decimal.Decimal
}

// NewScaleTable parses symbol=factor pairs. Factors must be positive.
func NewScaleTable(entries map[string]string) (ScaleTable, error) {
	factors := make(map[string]decimal.Decimal, len(entries))
	for symbol, raw := range entries {
		symbol = strings.TrimSpace(symbol)
		if symbol == "" {
			continue
		}
		factor, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return ScaleTable{}, fmt.Errorf("scale correction %s: %w", symbol, err)
		}
		if !factor.IsPositive() {
			return ScaleTable{}, fmt.Errorf("scale correction %s must be positive: %s", symbol, raw)
		}
		factors[symbol] = factor
	}
	return ScaleTable{factors: factors}, nil
}

// DefaultScaleTable returns the table built from DefaultScaleCorrections.
func DefaultScaleTable() ScaleTable {
	table, err := NewScaleTable(DefaultScaleCorrections)
	if err != nil {
		panic("invalid default scale corrections: " + err.Error())
	}
	return table
}

// Factor returns the divisor for symbol, 1 when none is configured.
func (s ScaleTable) Factor(symbol string) decimal.Decimal {
	if factor, ok := s.factors[symbol]; ok {
		return factor
	}
	return decimal.NewFromInt(1)
}
