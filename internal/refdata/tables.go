// Package refdata holds the fixed reference tables the scoring engine
// compares listings against. The tables are hand-authored, versioned and
// immutable: they are loaded once and passed by reference into each run.
package refdata

import "sort"

// Version identifies the revision of the built-in tables. Bump it whenever
// the curves are recalibrated so stored scores can be traced to a table set.
const Version = "2024.1"

// TypicalMileage maps car age in years to the expected odometer reading in
// miles for a typically driven car.
var TypicalMileage = map[int]int{
	1:  10000,
	2:  20000,
	3:  30000,
	4:  40000,
	5:  48000,
	6:  56000,
	7:  64000,
	8:  72000,
	9:  80000,
	10: 88000,
	11: 95000,
	12: 102000,
	13: 109000,
	14: 115000,
	15: 121000,
	16: 127000,
	17: 133000,
	18: 138000,
	19: 143000,
	20: 148000,
}

// Depreciation maps car age in years to the fraction of the original price a
// typical car retains. The table is sparse above age 10.
var Depreciation = map[int]float64{
	0:  1.00,
	1:  0.80,
	2:  0.70,
	3:  0.60,
	4:  0.50,
	5:  0.42,
	6:  0.36,
	7:  0.31,
	8:  0.27,
	9:  0.24,
	10: 0.21,
	12: 0.18,
	14: 0.15,
	16: 0.13,
	18: 0.11,
	20: 0.10,
}

// extraMileagePerYear is added for every year past the oldest tabulated age.
const extraMileagePerYear = 5000

var (
	mileageAges      = sortedKeys(TypicalMileage)
	depreciationAges = sortedKeysFloat(Depreciation)
)

// ExpectedMileage returns the expected mileage for a car of the given age.
// Untabulated ages within the table span are linearly interpolated. Ages
// below the youngest tabulated age scale proportionally; ages above the
// oldest grow by a fixed per-year increment. A negative age returns ok=false.
func ExpectedMileage(age int) (float64, bool) {
	if age < 0 {
		return 0, false
	}

	if miles, ok := TypicalMileage[age]; ok {
		return float64(miles), true
	}

	youngest := mileageAges[0]
	oldest := mileageAges[len(mileageAges)-1]

	switch {
	case age < youngest:
		return float64(TypicalMileage[youngest]) * (float64(age) / float64(youngest)), true
	case age > oldest:
		return float64(TypicalMileage[oldest]) + float64(extraMileagePerYear*(age-oldest)), true
	}

	for i := 0; i < len(mileageAges)-1; i++ {
		lo, hi := mileageAges[i], mileageAges[i+1]
		if lo <= age && age < hi {
			fraction := float64(age-lo) / float64(hi-lo)
			return float64(TypicalMileage[lo]) + fraction*float64(TypicalMileage[hi]-TypicalMileage[lo]), true
		}
	}

	return float64(TypicalMileage[oldest]), true
}

// NearestRetention returns the retention fraction of the tabulated age
// closest to the given age. Ties resolve to the younger age.
func NearestRetention(age int) float64 {
	closest := depreciationAges[0]
	for _, tabulated := range depreciationAges {
		if abs(tabulated-age) < abs(closest-age) {
			closest = tabulated
		}
	}
	return Depreciation[closest]
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func sortedKeysFloat(m map[int]float64) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
