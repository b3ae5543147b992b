package refdata

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAverageExactYear(t *testing.T) {
	market := SampleMarket()

	avg, ok := market.Average("Ford", "Focus", 2018)
	if !ok {
		t.Fatalf("expected a market average for ford focus 2018")
	}
	if avg != 12000 {
		t.Fatalf("expected 12000, got %v", avg)
	}
}

func TestAverageIsCaseInsensitive(t *testing.T) {
	market := MarketData{"ford_focus": {2018: 12000}}

	if _, ok := market.Average("FORD", "FOCUS", 2018); !ok {
		t.Fatalf("expected lookup to normalize case")
	}
}

func TestAverageInterpolatesBetweenYears(t *testing.T) {
	market := MarketData{"ford_focus": {2016: 9000, 2018: 12000}}

	avg, ok := market.Average("ford", "focus", 2017)
	if !ok {
		t.Fatalf("expected interpolated average")
	}
	if avg != 10500 {
		t.Fatalf("expected 10500, got %v", avg)
	}
}

func TestAverageOutsideTabulatedSpan(t *testing.T) {
	market := MarketData{"ford_focus": {2016: 9000, 2018: 12000}}

	if _, ok := market.Average("ford", "focus", 2015); ok {
		t.Fatalf("did not expect extrapolation below the span")
	}
	if _, ok := market.Average("ford", "focus", 2019); ok {
		t.Fatalf("did not expect extrapolation above the span")
	}
}

func TestAverageUnknownModel(t *testing.T) {
	market := SampleMarket()

	if _, ok := market.Average("Mercedes", "S Class", 2018); ok {
		t.Fatalf("did not expect an average for an unknown model")
	}
}

func TestLoadMarket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market.json")
	doc := `{"Ford_Focus": {"2018": 12000, "2019": 14000}}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	market, err := LoadMarket(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	avg, ok := market.Average("ford", "focus", 2018)
	if !ok || avg != 12000 {
		t.Fatalf("expected 12000 after load, got %v (ok=%v)", avg, ok)
	}
}

func TestLoadMarketBadYear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market.json")
	doc := `{"ford_focus": {"twenty18": 12000}}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if _, err := LoadMarket(path); err == nil {
		t.Fatalf("expected an error for a non-numeric year key")
	}
}
