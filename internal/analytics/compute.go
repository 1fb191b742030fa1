// Package analytics holds the pure arithmetic behind the player statistics endpoints.
// Nothing here touches storage or logging, so the service layer can feed it whatever
// slice it loaded and tests can pin exact values.
package analytics

import (
	"math"
	"sort"
)

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	// The epsilon absorbs binary representation error, e.g. 1.005*100 = 100.49999...
	shifted := v * 100
	if shifted >= 0 {
		return math.Floor(shifted+0.5+1e-9) / 100
	}
	return -math.Floor(-shifted+0.5+1e-9) / 100
}

// CalculateBMI converts grams and centimeters to kg/m^2. The second return value is
// false when height is not positive and the index is undefined.
func CalculateBMI(weightGrams, heightCm float64) (float64, bool) {
	kg := weightGrams / 1000
	m := heightCm / 100
	if m <= 0 {
		return 0, false
	}
	return Round2(kg / (m * m)), true
}

// Average returns the mean rounded to 2 decimals, or 0 for no input.
func Average(numbers []float64) float64 {
	if len(numbers) == 0 {
		return 0
	}
	var sum float64
	for _, n := range numbers {
		sum += n
	}
	return Round2(sum / float64(len(numbers)))
}

// Median sorts a copy of numbers. ok is false for empty input.
func Median(numbers []float64) (float64, bool) {
	if len(numbers) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(numbers))
	copy(sorted, numbers)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return Round2((sorted[mid-1] + sorted[mid]) / 2), true
}

// MinMax returns the extremes of numbers; both are 0 for empty input.
func MinMax(numbers []float64) (lo, hi float64) {
	if len(numbers) == 0 {
		return 0, 0
	}
	lo, hi = numbers[0], numbers[0]
	for _, n := range numbers[1:] {
		if n < lo {
			lo = n
		}
		if n > hi {
			hi = n
		}
	}
	return lo, hi
}
