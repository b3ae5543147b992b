package refdata

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// MarketData maps a normalized "make_model" key to average prices by year.
// It is refreshed by an external job on its own cadence and treated as
// immutable for the duration of a run.
type MarketData map[string]map[int]float64

// Key normalizes a make/model pair into the lookup key used by MarketData.
func Key(make, model string) string {
	return strings.ToLower(strings.TrimSpace(make)) + "_" + strings.ToLower(strings.TrimSpace(model))
}

// Average returns the market average price for a make/model/year. An exact
// year hit is returned as-is; a year between two tabulated years is linearly
// interpolated. Years outside the tabulated span are not extrapolated.
func (m MarketData) Average(makeName, model string, year int) (float64, bool) {
	if len(m) == 0 {
		return 0, false
	}

	prices, ok := m[Key(makeName, model)]
	if !ok || len(prices) == 0 {
		return 0, false
	}

	if price, ok := prices[year]; ok {
		return price, true
	}

	years := make([]int, 0, len(prices))
	for y := range prices {
		years = append(years, y)
	}
	sort.Ints(years)

	if year < years[0] || year > years[len(years)-1] {
		return 0, false
	}

	for i := 0; i < len(years)-1; i++ {
		lo, hi := years[i], years[i+1]
		if lo <= year && year < hi {
			fraction := float64(year-lo) / float64(hi-lo)
			return prices[lo] + fraction*(prices[hi]-prices[lo]), true
		}
	}

	return 0, false
}

// LoadMarket reads market data from a JSON file. The upstream refresher
// writes year keys as strings, so the document is decoded loosely and the
// keys parsed here.
func LoadMarket(path string) (MarketData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening market data: %w", err)
	}
	defer file.Close()

	var raw map[string]map[string]float64
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding market data %q: %w", path, err)
	}

	data := make(MarketData, len(raw))
	for key, prices := range raw {
		byYear := make(map[int]float64, len(prices))
		for yearStr, price := range prices {
			year, err := strconv.Atoi(strings.TrimSpace(yearStr))
			if err != nil {
				return nil, fmt.Errorf("market data %q: bad year %q for %q", path, yearStr, key)
			}
			byYear[year] = price
		}
		data[strings.ToLower(strings.TrimSpace(key))] = byYear
	}

	return data, nil
}

// SampleMarket returns the built-in market table used for demos and tests.
func SampleMarket() MarketData {
	return MarketData{
		"ford_focus": {
			2015: 8000, 2016: 9000, 2017: 10500, 2018: 12000,
			2019: 14000, 2020: 16000, 2021: 18000, 2022: 20000,
		},
		"volkswagen_golf": {
			2015: 9000, 2016: 10500, 2017: 12000, 2018: 14000,
			2019: 16000, 2020: 18000, 2021: 20000, 2022: 22000,
		},
		"bmw_3 series": {
			2015: 12000, 2016: 14000, 2017: 16000, 2018: 19000,
			2019: 22000, 2020: 25000, 2021: 29000, 2022: 33000,
		},
	}
}
