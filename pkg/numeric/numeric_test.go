package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{name: "in-range", input: 0.534, want: 0.53},
		{name: "round-half-up", input: 0.535, want: 0.54},
		{name: "below-min", input: 0.0001, want: 0.01},
		{name: "zero", input: 0, want: 0.01},
		{name: "negative", input: -3, want: 0.01},
		{name: "above-max", input: 1.2, want: 0.99},
		{name: "max-boundary", input: 0.999, want: 0.99},
		{name: "nan", input: math.NaN(), want: 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPrice(tt.input))
		})
	}
}

func TestFormatPrice_AlwaysInsideBoundsWithTwoDecimals(t *testing.T) {
	for i := -50; i <= 1100; i++ {
		p := float64(i) / 1000
		got := FormatPrice(p)

		assert.GreaterOrEqual(t, got, MinPrice, "price %f", p)
		assert.LessOrEqual(t, got, MaxPrice, "price %f", p)
		assert.InDelta(t, math.Round(got*100)/100, got, 1e-12, "price %f has more than 2 decimals", p)
	}
}

func TestFloorShares(t *testing.T) {
	assert.Equal(t, 1.2345, FloorShares(1.23456789))
	assert.Equal(t, 0.3, FloorShares(0.1+0.2))
	assert.Equal(t, 10.0, FloorShares(10))
	assert.Equal(t, 0.0, FloorShares(0.00009))
	assert.Equal(t, 0.0, FloorShares(-1))
	assert.Equal(t, 0.0, FloorShares(math.Inf(1)))
}

func TestFloorShares_NeverExceedsInput(t *testing.T) {
	for i := 1; i < 5000; i++ {
		s := float64(i) * 0.0123457
		assert.LessOrEqual(t, FloorShares(s), s)
	}
}

func TestOrderCost(t *testing.T) {
	assert.Equal(t, 0.5, OrderCost(1, 0.5))
	assert.Equal(t, 0.53, OrderCost(1.05, 0.5)) // 0.525 rounds up
	assert.Equal(t, 0.01, OrderCost(0.001, 0.5))
	assert.Equal(t, 50.0, OrderCost(100, 0.5))
	assert.Equal(t, 0.0, OrderCost(0, 0.5))
}

func TestNotional(t *testing.T) {
	assert.Equal(t, 0.525, Notional(1.05, 0.5))
	assert.Equal(t, 1.2345, Notional(2.469, 0.5)) // 1.2345 exactly
	assert.Equal(t, 0.1234, Notional(0.12345, 1))
	assert.Equal(t, 0.0, Notional(-1, 0.5))
}

func TestFeeMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, FeeMultiplier(0))
	assert.Equal(t, 1.05, FeeMultiplier(500))
	assert.Equal(t, 1.0, FeeMultiplier(-10))
}

func TestIsDust(t *testing.T) {
	assert.True(t, IsDust(0))
	assert.True(t, IsDust(0.00005))
	assert.False(t, IsDust(0.0001))
	assert.False(t, IsDust(1))
}

func TestExceedsTolerance(t *testing.T) {
	tests := []struct {
		name      string
		price     float64
		reference float64
		tolerance float64
		want      bool
	}{
		{name: "exactly-at-tolerance-above", price: 0.55, reference: 0.50, tolerance: 0.05, want: false},
		{name: "exactly-at-tolerance-below", price: 0.45, reference: 0.50, tolerance: 0.05, want: false},
		{name: "one-tick-beyond", price: 0.56, reference: 0.50, tolerance: 0.05, want: true},
		{name: "inside", price: 0.52, reference: 0.50, tolerance: 0.05, want: false},
		{name: "zero-tolerance-same-price", price: 0.3, reference: 0.3, tolerance: 0, want: false},
		{name: "nan-price", price: math.NaN(), reference: 0.5, tolerance: 0.05, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExceedsTolerance(tt.price, tt.reference, tt.tolerance))
		})
	}
}

func TestToRawAmount(t *testing.T) {
	assert.Equal(t, "525000", ToRawAmount(0.525))
	assert.Equal(t, "10000000", ToRawAmount(10))
	assert.Equal(t, "1234", ToRawAmount(0.0012345))
	assert.Equal(t, "0", ToRawAmount(-1))
}

func TestParsePositive(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{input: "0.55", want: 0.55, wantOK: true},
		{input: "120", want: 120, wantOK: true},
		{input: "0", wantOK: false},
		{input: "-0.5", wantOK: false},
		{input: "", wantOK: false},
		{input: "abc", wantOK: false},
		{input: "NaN", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParsePositive(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
