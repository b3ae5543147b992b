package scoring

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/autosniper/autosniper/internal/listing"
	"github.com/autosniper/autosniper/internal/refdata"
)

// pinYear fixes the clock so car ages are deterministic.
func pinYear(t *testing.T, year int) {
	t.Helper()
	previous := now
	now = func() time.Time {
		return time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC)
	}
	t.Cleanup(func() { now = previous })
}

func TestScoreListingAgainstMarket(t *testing.T) {
	pinYear(t, 2025)

	engine := New(refdata.SampleMarket(), nil)
	result := engine.ScoreListing(&listing.Listing{
		Make:    "Ford",
		Model:   "Focus",
		Year:    2018,
		Price:   7500,
		Mileage: 45000,
	})

	if result.Suspicious {
		t.Fatalf("did not expect a suspicious result: %v", result.Reasons)
	}

	// price ratio 7500/12000 = 0.625 -> 90 - 0.125*75 = 80.625
	if result.PriceScore != 80.6 {
		t.Fatalf("expected price score 80.6, got %v", result.PriceScore)
	}

	// age 7 -> expected 64000 miles, ratio ~0.703 -> 55 + 0.197*87.5
	if result.MileageScore != 72.2 {
		t.Fatalf("expected mileage score 72.2, got %v", result.MileageScore)
	}

	// 0.6*80.625 + 0.4*72.227 = 77.266 -> 77.3
	if result.Overall != 77.3 {
		t.Fatalf("expected overall 77.3, got %v", result.Overall)
	}
	if result.Grade != GradeB {
		t.Fatalf("expected grade B, got %s", result.Grade)
	}
}

func TestScoreListingIsPure(t *testing.T) {
	pinYear(t, 2025)

	engine := New(refdata.SampleMarket(), nil)
	l := &listing.Listing{Make: "Ford", Model: "Focus", Year: 2018, Price: 7500, Mileage: 45000}

	first := engine.ScoreListing(l)
	second := engine.ScoreListing(l)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results on repeated calls: %+v vs %+v", first, second)
	}
}

func TestSuspiciousListings(t *testing.T) {
	pinYear(t, 2025)

	cases := []struct {
		name string
		l    *listing.Listing
	}{
		{"price below 500", &listing.Listing{Make: "Ford", Model: "Focus", Year: 2022, Price: 499, Mileage: 5000}},
		{"missing make", &listing.Listing{Model: "Focus", Year: 2018, Price: 7500}},
		{"missing model", &listing.Listing{Make: "Ford", Year: 2018, Price: 7500}},
		{"nearly new too cheap", &listing.Listing{Make: "Ford", Model: "Focus", Year: 2023, Price: 2500}},
		{"under ten years too cheap", &listing.Listing{Make: "Ford", Model: "Focus", Year: 2017, Price: 900}},
	}

	engine := New(refdata.SampleMarket(), nil)
	for _, tc := range cases {
		result := engine.ScoreListing(tc.l)
		if !result.Suspicious {
			t.Fatalf("%s: expected suspicious", tc.name)
		}
		if result.Overall != 0 || result.Grade != GradeF {
			t.Fatalf("%s: expected score 0 grade F, got %v %s", tc.name, result.Overall, result.Grade)
		}
		if len(result.Reasons) == 0 {
			t.Fatalf("%s: expected recorded reasons", tc.name)
		}
	}
}

func TestSuspiciousIgnoresMileage(t *testing.T) {
	pinYear(t, 2025)

	engine := New(refdata.SampleMarket(), nil)
	result := engine.ScoreListing(&listing.Listing{
		Make: "Ford", Model: "Focus", Year: 2024, Price: 450, Mileage: 1,
	})

	if !result.Suspicious || result.Overall != 0 || result.Grade != GradeF {
		t.Fatalf("expected score 0 grade F regardless of mileage, got %+v", result)
	}
}

func TestMissingFieldsScoreNeutral(t *testing.T) {
	pinYear(t, 2025)

	engine := New(refdata.SampleMarket(), nil)

	// No year: both sub-scores fall back to the neutral 50.
	result := engine.ScoreListing(&listing.Listing{
		Make: "Ford", Model: "Focus", Price: 7500, Mileage: 45000,
	})
	if result.PriceScore != 50 || result.MileageScore != 50 {
		t.Fatalf("expected neutral sub-scores, got %v / %v", result.PriceScore, result.MileageScore)
	}
	if result.Overall != 50 {
		t.Fatalf("expected overall 50, got %v", result.Overall)
	}
}

func TestFutureModelYearScoresNeutral(t *testing.T) {
	pinYear(t, 2025)

	engine := New(nil, nil)
	result := engine.ScoreListing(&listing.Listing{
		Make: "Ford", Model: "Focus", Year: 2027, Price: 25000, Mileage: 100,
	})

	if result.PriceScore != 50 || result.MileageScore != 50 {
		t.Fatalf("expected neutral scores for a future model year, got %+v", result)
	}
}

func TestDepreciationFallbackPath(t *testing.T) {
	pinYear(t, 2025)

	// Mercedes S Class is absent from the sample market table, so the price
	// score goes through the retention-curve fallback, whose derived ratio
	// is always ~1.0.
	engine := New(refdata.SampleMarket(), nil)
	result := engine.ScoreListing(&listing.Listing{
		Make: "Mercedes", Model: "S Class", Year: 2018, Price: 35000, Mileage: 25000,
	})

	if result.PriceScore != 50 {
		t.Fatalf("expected fallback price score 50, got %v", result.PriceScore)
	}
}

func TestMarketInterpolationFeedsPriceScore(t *testing.T) {
	pinYear(t, 2025)

	market := refdata.MarketData{"ford_focus": {2016: 9000, 2018: 12000}}
	engine := New(market, nil)

	// 2017 interpolates to 10500; 10500/10500 = 1.0 -> 60 - 0.1*100 = 50.
	result := engine.ScoreListing(&listing.Listing{
		Make: "Ford", Model: "Focus", Year: 2017, Price: 10500, Mileage: 72000,
	})

	if result.PriceScore != 50 {
		t.Fatalf("expected price score 50 at market average, got %v", result.PriceScore)
	}
}

func TestPriceCurveContinuityAtSeams(t *testing.T) {
	// The formulas on both sides of each interior seam must agree there.
	for _, seam := range []float64{0.9, 1.1, 1.5} {
		left := marketRatioScore(seam)
		right := marketRatioScore(seam + 1e-9)
		if math.Abs(left-right) > 1e-6 {
			t.Fatalf("price curve discontinuous at %v: %v vs %v", seam, left, right)
		}
	}
}

func TestMileageCurveContinuityAtSeams(t *testing.T) {
	for _, seam := range []float64{0.5, 0.9, 1.1, 1.5} {
		left := mileageRatioScore(seam)
		right := mileageRatioScore(seam + 1e-9)
		if math.Abs(left-right) > 1e-6 {
			t.Fatalf("mileage curve discontinuous at %v: %v vs %v", seam, left, right)
		}
	}
}

func TestBatchScoreKeepsInputOrder(t *testing.T) {
	pinYear(t, 2025)

	engine := New(refdata.SampleMarket(), nil)
	ls := &listing.Listings{Items: []*listing.Listing{
		{Make: "Ford", Model: "Focus", Year: 2018, Price: 7500, Mileage: 45000},
		{Make: "Ford", Model: "Focus", Year: 2022, Price: 500, Mileage: 5000},
		{Make: "Volkswagen", Model: "Golf", Year: 2019, Price: 16500, Mileage: 25000},
	}}

	results := engine.BatchScore(ls)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Listing != ls.Items[0] || results[2].Listing != ls.Items[2] {
		t.Fatalf("results out of input order")
	}
	if !results[1].Suspicious {
		t.Fatalf("expected the middle listing to be suspicious")
	}
}

func TestBatchScoreSerialAndParallelAgree(t *testing.T) {
	pinYear(t, 2025)

	ls := &listing.Listings{Items: []*listing.Listing{
		{Make: "Ford", Model: "Focus", Year: 2018, Price: 7500, Mileage: 45000},
		{Make: "BMW", Model: "3 Series", Year: 2017, Price: 10000, Mileage: 80000},
		{Make: "Volkswagen", Model: "Golf", Year: 2019, Price: 16500, Mileage: 25000},
	}}

	serial := New(refdata.SampleMarket(), nil)
	serial.Workers = 1
	concurrent := New(refdata.SampleMarket(), nil)
	concurrent.Workers = 8

	if !reflect.DeepEqual(serial.BatchScore(ls), concurrent.BatchScore(ls)) {
		t.Fatalf("parallel batch scoring diverged from serial")
	}
}
