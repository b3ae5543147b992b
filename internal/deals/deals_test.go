package deals

import (
	"testing"

	"github.com/autosniper/autosniper/internal/listing"
	"github.com/autosniper/autosniper/internal/refdata"
	"github.com/autosniper/autosniper/internal/scoring"
)

func newManager() *Manager {
	market := refdata.SampleMarket()
	return NewManager(scoring.New(market, nil), market, nil)
}

func snapshot() *listing.Listings {
	return &listing.Listings{Items: []*listing.Listing{
		{Make: "BMW", Model: "3 Series", Year: 2017, Price: 11000, Mileage: 60000,
			URL: "https://example.com/bargain"},
		{Make: "BMW", Model: "3 Series", Year: 2017, Price: 19500, Mileage: 60000,
			URL: "https://example.com/dear"},
		{Make: "Ford", Model: "Focus", Year: 2018, Price: 400, Mileage: 30000,
			URL: "https://example.com/scam"},
	}}
}

func TestTopDropsSuspiciousAndSortsDescending(t *testing.T) {
	deals := newManager().Top(snapshot(), 10, true)

	if len(deals) != 2 {
		t.Fatalf("expected the suspicious listing dropped, got %d deals", len(deals))
	}
	if deals[0].Result.Listing.URL != "https://example.com/bargain" {
		t.Fatalf("expected the bargain first, got %s", deals[0].Result.Listing.URL)
	}
	if deals[0].Result.Overall < deals[1].Result.Overall {
		t.Fatalf("deals not sorted best-first: %v then %v",
			deals[0].Result.Overall, deals[1].Result.Overall)
	}
}

func TestTopAnnotatesDiscount(t *testing.T) {
	deals := newManager().Top(snapshot(), 10, true)

	// 2017 BMW 3 Series averages 16000; 11000 is 31.25% under.
	bargain := deals[0]
	if bargain.MarketAverage != 16000 {
		t.Fatalf("unexpected market average %v", bargain.MarketAverage)
	}
	if bargain.DiscountPercent != 31.25 {
		t.Fatalf("unexpected discount %v", bargain.DiscountPercent)
	}

	dear := deals[1]
	if dear.DiscountPercent >= 0 {
		t.Fatalf("an above-market price must show a negative discount, got %v", dear.DiscountPercent)
	}
}

func TestTopTruncates(t *testing.T) {
	deals := newManager().Top(snapshot(), 1, true)
	if len(deals) != 1 {
		t.Fatalf("expected truncation to 1 deal, got %d", len(deals))
	}

	all := newManager().Top(snapshot(), 0, true)
	if len(all) != 2 {
		t.Fatalf("max<=0 must return everything, got %d", len(all))
	}
}

func TestTopServesCacheWithinTTL(t *testing.T) {
	m := newManager()

	first := m.Top(snapshot(), 10, false)
	if len(first) != 2 {
		t.Fatalf("expected 2 deals, got %d", len(first))
	}

	// A changed snapshot is invisible until the cache expires or a refresh
	// is forced.
	cached := m.Top(&listing.Listings{}, 10, false)
	if len(cached) != 2 {
		t.Fatalf("expected the cached deals, got %d", len(cached))
	}

	refreshed := m.Top(&listing.Listings{}, 10, true)
	if len(refreshed) != 0 {
		t.Fatalf("forced refresh must rescore, got %d deals", len(refreshed))
	}
}
