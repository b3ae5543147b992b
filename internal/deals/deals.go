// Package deals selects the best-scoring listings across the whole snapshot,
// independent of any user preference. It backs the "deals of the week"
// report and keeps a short-lived cache so repeated requests within a day do
// not rescore the same snapshot.
package deals

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/autosniper/autosniper/internal/listing"
	"github.com/autosniper/autosniper/internal/refdata"
	"github.com/autosniper/autosniper/internal/scoring"
)

const cacheTTL = 24 * time.Hour

// Deal is a top-scored listing annotated with its market context.
type Deal struct {
	Result *scoring.Result `json:"result"`

	// MarketAverage and DiscountPercent are set when the market table has an
	// entry for the listing; otherwise both are zero.
	MarketAverage   float64 `json:"market_average,omitempty"`
	DiscountPercent float64 `json:"discount_percent,omitempty"`
}

// Manager computes and caches the top deals.
type Manager struct {
	scorer *scoring.Engine
	market refdata.MarketData
	logger *zap.Logger

	mu       sync.Mutex
	cached   []*Deal
	cachedAt time.Time
}

// NewManager creates a deals manager. logger may be nil.
func NewManager(scorer *scoring.Engine, market refdata.MarketData, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{scorer: scorer, market: market, logger: logger}
}

// Top returns up to max deals, best first. Suspicious listings and listings
// that failed to score are dropped. Results are cached for a day unless
// forceRefresh is set.
func (m *Manager) Top(ls *listing.Listings, max int, forceRefresh bool) []*Deal {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !forceRefresh && m.cached != nil {
		age := time.Since(m.cachedAt)
		if age < cacheTTL {
			m.logger.Info("using cached deals",
				zap.Int("count", len(m.cached)),
				zap.Duration("cache_age", age),
			)
			return truncate(m.cached, max)
		}
	}

	results := m.scorer.BatchScore(ls)

	deals := make([]*Deal, 0, len(results))
	for _, result := range results {
		if result == nil || result.Suspicious {
			continue
		}
		deals = append(deals, m.annotate(result))
	}

	sort.SliceStable(deals, func(i, j int) bool {
		return deals[i].Result.Overall > deals[j].Result.Overall
	})

	m.cached = deals
	m.cachedAt = time.Now()

	m.logger.Info("refreshed deals",
		zap.Int("scored", len(results)),
		zap.Int("deals", len(deals)),
	)

	return truncate(deals, max)
}

func (m *Manager) annotate(result *scoring.Result) *Deal {
	deal := &Deal{Result: result}

	l := result.Listing
	if average, ok := m.market.Average(l.Make, l.Model, l.Year); ok && average > 0 && l.Price > 0 {
		deal.MarketAverage = average
		deal.DiscountPercent = (average - float64(l.Price)) / average * 100
	}

	return deal
}

func truncate(deals []*Deal, max int) []*Deal {
	if max <= 0 || max >= len(deals) {
		return deals
	}
	return deals[:max]
}
