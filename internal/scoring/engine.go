// Package scoring converts raw vehicle listings into explainable 0-100 deal
// quality scores and letter grades. The engine is pure: one listing plus the
// market table in, one result out, no I/O and no shared mutable state.
package scoring

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/autosniper/autosniper/internal/listing"
	"github.com/autosniper/autosniper/internal/parallel"
	"github.com/autosniper/autosniper/internal/refdata"
)

// Weights of the sub-scores in the overall blend.
const (
	priceWeight   = 0.6
	mileageWeight = 0.4
)

const defaultWorkers = 4

// now is swapped in tests to pin the current year.
var now = time.Now

// Engine scores listings against the market table and the reference curves.
// Construct one per run; the market table is immutable while it is held.
type Engine struct {
	market refdata.MarketData
	logger *zap.Logger

	// Workers bounds the fan-out of BatchScore. Zero means the default.
	Workers int
}

// New creates a scoring engine. market may be nil, in which case every price
// score falls back to the depreciation curve. logger may be nil.
func New(market refdata.MarketData, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{market: market, logger: logger}
}

// Result is a scored listing. Sub-scores and Overall are rounded to one
// decimal; a suspicious listing always carries Overall 0 and GradeF.
type Result struct {
	Listing      *listing.Listing `json:"listing"`
	PriceScore   float64          `json:"price_score"`
	MileageScore float64          `json:"mileage_score"`
	Overall      float64          `json:"overall_score"`
	Grade        Grade            `json:"grade"`
	Suspicious   bool             `json:"suspicious"`
	Reasons      []string         `json:"reasons,omitempty"`
}

// ScoreListing scores a single listing. It never fails: missing optional
// fields yield neutral sub-scores and suspicious listings short-circuit to
// zero.
func (e *Engine) ScoreListing(l *listing.Listing) *Result {
	if reasons := suspiciousReasons(l); len(reasons) > 0 {
		return &Result{
			Listing:    l,
			Grade:      GradeF,
			Suspicious: true,
			Reasons:    reasons,
		}
	}

	priceScore := e.priceScore(l)
	mileageScore := mileageScore(l)
	overall := round1(priceWeight*priceScore + mileageWeight*mileageScore)

	return &Result{
		Listing:      l,
		PriceScore:   round1(priceScore),
		MileageScore: round1(mileageScore),
		Overall:      overall,
		Grade:        GradeFor(overall),
	}
}

// BatchScore scores every listing in the collection. The batch always
// completes: a panic while scoring one item is recovered and logged, and the
// item is carried through with a nil result. Results keep input order
// regardless of worker completion order.
func (e *Engine) BatchScore(ls *listing.Listings) []*Result {
	results := make([]*Result, ls.Len())

	workers := e.Workers
	if workers == 0 {
		workers = defaultWorkers
	}

	parallel.ForEach(ls.Len(), workers, func(i int) {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("scoring listing failed",
					zap.String("listing_id", ls.Items[i].ID()),
					zap.Any("panic", r),
				)
				results[i] = nil
			}
		}()
		results[i] = e.ScoreListing(ls.Items[i])
	})

	return results
}

// suspiciousReasons applies the fixed price-floor heuristics. A non-empty
// return means the listing is too good to be true or missing its identity.
func suspiciousReasons(l *listing.Listing) []string {
	var reasons []string

	if l.Price > 0 && l.Price < 500 {
		reasons = append(reasons, "price below 500")
	}

	if l.Make == "" || l.Model == "" {
		reasons = append(reasons, "make or model missing")
	}

	if l.Year > 0 && l.Price > 0 {
		age := now().Year() - l.Year
		if age <= 3 && l.Price < 3000 {
			reasons = append(reasons, "price below 3000 for a car 3 years old or newer")
		}
		if age <= 10 && l.Price < 1000 {
			reasons = append(reasons, "price below 1000 for a car 10 years old or newer")
		}
	}

	return reasons
}

// priceScore rates the asking price against the market average for the
// make/model/year, falling back to the depreciation curve when the market
// table has no entry.
func (e *Engine) priceScore(l *listing.Listing) float64 {
	if l.Price == 0 || l.Make == "" || l.Model == "" || l.Year == 0 {
		return 50
	}

	if average, ok := e.market.Average(l.Make, l.Model, l.Year); ok && average > 0 {
		return marketRatioScore(float64(l.Price) / average)
	}

	age := now().Year() - l.Year
	if age < 0 {
		// A model year in the future is almost certainly a data error.
		return 50
	}

	// No market entry: estimate the original price from the listing's own
	// price via the retention curve, then re-derive the expected price for
	// this age. The arithmetic mirrors the historical behavior exactly.
	retention := refdata.NearestRetention(age)
	estimatedOriginal := float64(l.Price) / retention
	expected := estimatedOriginal * retention

	return depreciationRatioScore(float64(l.Price) / expected)
}

// marketRatioScore maps price/market-average onto 0-100 through a piecewise
// linear curve with seams at 0.5, 0.9, 1.1 and 1.5.
func marketRatioScore(ratio float64) float64 {
	switch {
	case ratio <= 0.5:
		return 100
	case ratio <= 0.9:
		return 90 - (ratio-0.5)*75
	case ratio <= 1.1:
		return 60 - (ratio-0.9)*100
	case ratio <= 1.5:
		return 40 - (ratio-1.1)*75
	default:
		return 10
	}
}

// depreciationRatioScore is the coarser five-step mapping used on the
// fallback path, where the expected price is itself an estimate.
func depreciationRatioScore(ratio float64) float64 {
	switch {
	case ratio <= 0.7:
		return 90
	case ratio <= 0.9:
		return 70
	case ratio <= 1.1:
		return 50
	case ratio <= 1.3:
		return 30
	default:
		return 10
	}
}

// mileageScore rates the odometer reading against the expected mileage for
// the car's age.
func mileageScore(l *listing.Listing) float64 {
	if l.Mileage == 0 || l.Year == 0 {
		return 50
	}

	age := now().Year() - l.Year
	expected, ok := refdata.ExpectedMileage(age)
	if !ok || expected <= 0 {
		// Future model years and age-0 cars have no meaningful expectation.
		return 50
	}

	return mileageRatioScore(float64(l.Mileage) / expected)
}

// mileageRatioScore shares the seam structure of the price curve but is
// flatter: mileage moves the score less than price does.
func mileageRatioScore(ratio float64) float64 {
	switch {
	case ratio <= 0.5:
		return 90
	case ratio <= 0.9:
		return 55 + (0.9-ratio)*87.5
	case ratio <= 1.1:
		return 55 - (ratio-0.9)*50
	case ratio <= 1.5:
		return 45 - (ratio-1.1)*87.5
	default:
		return 10
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
