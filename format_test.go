package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{14500, "14,500"},
		{3700000, "3,700,000"},
		{-1234567, "-1,234,567"},
		{1234.5, "1,234.5"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatNumber(tc.in), "FormatNumber(%v)", tc.in)
	}
}

func TestFormatMillions(t *testing.T) {
	assert.Equal(t, "$21.0M", FormatMillions(21.0))
	assert.Equal(t, "$3.5M", FormatMillions(3.5))
	assert.Equal(t, "$0.0M", FormatMillions(0))
	assert.Equal(t, "n/a", FormatMillions(math.NaN()))
	assert.Equal(t, "n/a", FormatMillions(math.Inf(1)))
}

func TestFormatPercentage(t *testing.T) {
	assert.Equal(t, "8.2%", FormatPercentage(8.2, 1))
	assert.Equal(t, "50%", FormatPercentage(50, 0))
	assert.Equal(t, "13.24%", FormatPercentage(13.24, 2))
	assert.Equal(t, "n/a", FormatPercentage(math.NaN(), 0))
	assert.Equal(t, "n/a", FormatPercentage(math.Inf(-1), 1))
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{640, "$640"},
		{850000, "$850k"},
		{1250000, "$1.25M"},
		{-2400, "-$2k"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatMoney(tc.in), "FormatMoney(%v)", tc.in)
	}
}

func TestPlainNumber(t *testing.T) {
	assert.Equal(t, "21", plainNumber(21.0))
	assert.Equal(t, "674", plainNumber(674))
	assert.Equal(t, "3.5", plainNumber(3.5))
	assert.Equal(t, "3700000", plainNumber(3700000))
}
