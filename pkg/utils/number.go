package utils

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Finite troca NaN e infinitos por zero
func Finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func RoundWithTwoDecimalPlace(f float64) float64 {
	f = Finite(f)
	if f == 0 {
		return 0
	}

	rounded, _ := decimal.NewFromFloat(f).Round(2).Float64()
	return rounded
}

// FormatCurrency formata o valor em reais com duas casas ("R$ 1.234,56")
func FormatCurrency(f float64) string {
	return "R$ " + formatBR(decimal.NewFromFloat(Finite(f)), 2)
}

// FormatPercent formata uma fração como percentual (0.375, 1 -> "37,5 %"; 0.375, 0 -> "38 %")
func FormatPercent(f float64, places int32) string {
	return formatBR(decimal.NewFromFloat(Finite(f)).Mul(decimal.NewFromInt(100)), places) + " %"
}

// formatBR usa ponto como separador de milhar e vírgula como separador decimal
func formatBR(d decimal.Decimal, places int32) string {
	fixed := d.StringFixed(places)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	intPart, fracPart := fixed, ""
	if i := strings.IndexByte(fixed, '.'); i >= 0 {
		intPart, fracPart = fixed[:i], fixed[i+1:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	if fracPart != "" {
		b.WriteByte(',')
		b.WriteString(fracPart)
	}

	if sign != "" && strings.Trim(b.String(), "0.,") == "" {
		sign = ""
	}

	return sign + b.String()
}
