package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maxviazov/tennis-players-service/internal/analytics"
)

func TestRound2(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{24.691358, 24.69},
		{2.345, 2.35},
		{1.005, 1.01},
		{-2.345, -2.35},
		{0, 0},
		{10, 10},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, analytics.Round2(tc.in), "Round2(%v)", tc.in)
	}
}

func TestCalculateBMI(t *testing.T) {
	bmi, ok := analytics.CalculateBMI(80000, 180)
	assert.True(t, ok)
	assert.Equal(t, 24.69, bmi)

	_, ok = analytics.CalculateBMI(80000, 0)
	assert.False(t, ok, "zero height has no BMI")

	_, ok = analytics.CalculateBMI(80000, -10)
	assert.False(t, ok)
}

func TestAverage(t *testing.T) {
	assert.Equal(t, 25.0, analytics.Average([]float64{10, 20, 30, 40}))
	assert.Equal(t, 0.0, analytics.Average(nil))
	assert.Equal(t, 0.33, analytics.Average([]float64{0, 0, 1}))
}

func TestMedian(t *testing.T) {
	cases := []struct {
		name string
		in   []float64
		want float64
		ok   bool
	}{
		{"odd", []float64{1, 3, 5, 7, 9}, 5, true},
		{"even", []float64{1, 2, 3, 4}, 2.5, true},
		{"unsorted", []float64{9, 1, 5}, 5, true},
		{"single", []float64{42}, 42, true},
		{"empty", nil, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := analytics.Median(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMedian_DoesNotReorderInput(t *testing.T) {
	in := []float64{3, 1, 2}
	_, _ = analytics.Median(in)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestMinMax(t *testing.T) {
	lo, hi := analytics.MinMax([]float64{185, 170, 196, 178})
	assert.Equal(t, 170.0, lo)
	assert.Equal(t, 196.0, hi)

	lo, hi = analytics.MinMax(nil)
	assert.Zero(t, lo)
	assert.Zero(t, hi)
}
