package main

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatNumber formats a count with en-US thousands separators, e.g. 3,700,000.
// Output does not depend on the process locale.
func FormatNumber(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	d := decimal.NewFromFloat(n).Round(3)
	s := d.String()

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return sign + b.String()
}

// FormatPercentage formats n with a fixed number of decimals and a % sign
func FormatPercentage(n float64, decimals int) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return "n/a"
	}
	return decimal.NewFromFloat(n).StringFixed(int32(decimals)) + "%"
}

// FormatMillions formats a $M headline value with one decimal, e.g. $21.0M
func FormatMillions(m float64) string {
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return "n/a"
	}
	return "$" + decimal.NewFromFloat(m).StringFixed(1) + "M"
}

// FormatMoney formats dollars compactly: $1.25M, $850k, $640
func FormatMoney(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "n/a"
	}
	d := decimal.NewFromFloat(amount)
	abs := d.Abs()
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	switch {
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1000000)):
		return sign + "$" + abs.Div(decimal.NewFromInt(1000000)).StringFixed(2) + "M"
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1000)):
		return sign + "$" + abs.Div(decimal.NewFromInt(1000)).StringFixed(0) + "k"
	}
	return sign + "$" + abs.StringFixed(0)
}

// plainNumber renders n the way the CSV export writes raw values: shortest
// round-trip representation, no grouping, no exponent for ordinary values.
func plainNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
