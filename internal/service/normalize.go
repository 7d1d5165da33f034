package service

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var letterSizes = []string{"XS", "S", "M", "L", "XL", "XXL"}

func normalizeColour(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// normalizeSize upper-cases letter sizes and canonicalises numeric ones, so
// "42", 42 and "42.0" compare equal.
func normalizeSize(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if slices.Contains(letterSizes, s) {
		return s, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func oneOf(v string, allowed []string) bool { return slices.Contains(allowed, v) }

func lineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}
