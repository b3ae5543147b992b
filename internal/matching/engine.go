// Package matching ranks scored listings against standing user preferences
// and produces per-user ordered match sets. Like scoring, it is pure: one
// snapshot of listings and active preferences in, one match map out.
package matching

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/autosniper/autosniper/internal/listing"
	"github.com/autosniper/autosniper/internal/scoring"
)

// Match is a scored listing paired with the preference it satisfied. All
// mandatory criteria passed; the soft ones are recorded in Details. Result
// is nil only for legacy rows that were never scored.
type Match struct {
	Listing      *listing.Listing `json:"listing"`
	Result       *scoring.Result  `json:"result,omitempty"`
	PreferenceID string           `json:"preference_id"`
	UserID       string           `json:"user_id"`
	Details      Details          `json:"match_details"`
}

// Engine matches listings to preferences, delegating unscored listings to
// the scoring engine first.
type Engine struct {
	scorer *scoring.Engine
	logger *zap.Logger
}

// New creates a matching engine around the given scorer. logger may be nil.
func New(scorer *scoring.Engine, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{scorer: scorer, logger: logger}
}

// FindMatches evaluates every (listing, preference) pair and returns matches
// grouped by user, each user's list ranked best-first. Users with no matches
// are absent from the map. Preferences without a user ID are skipped with a
// warning; they cannot be delivered anywhere.
func (e *Engine) FindMatches(ls *listing.Listings, prefs []*listing.Preference) map[string][]*Match {
	results := e.scorer.BatchScore(ls)

	matches := make(map[string][]*Match)
	for _, pref := range prefs {
		if pref.UserID == "" {
			e.logger.Warn("preference missing user_id, skipping", zap.String("preference_id", pref.ID))
			continue
		}

		userMatches := e.matchPreference(results, pref)
		if len(userMatches) == 0 {
			e.logger.Debug("no matches for preference",
				zap.String("user_id", pref.UserID),
				zap.String("preference_id", pref.ID),
			)
			continue
		}

		matches[pref.UserID] = append(matches[pref.UserID], userMatches...)

		e.logger.Info("matched preference",
			zap.String("user_id", pref.UserID),
			zap.String("preference_id", pref.ID),
			zap.Int("initial", ls.Len()),
			zap.Int("matched", len(userMatches)),
		)
	}

	for userID := range matches {
		rank(matches[userID])
	}

	return matches
}

// matchPreference evaluates all scored listings against one preference.
func (e *Engine) matchPreference(results []*scoring.Result, pref *listing.Preference) []*Match {
	var found []*Match

	for _, result := range results {
		if result == nil {
			// Scoring failed for this item; it contributes nothing this run.
			continue
		}

		l := result.Listing
		if l.NotifiedToUser(pref.UserID) {
			continue
		}

		details, ok := evaluate(result, pref)
		if !ok {
			continue
		}

		found = append(found, &Match{
			Listing:      l,
			Result:       result,
			PreferenceID: pref.ID,
			UserID:       pref.UserID,
			Details:      details,
		})
	}

	return found
}

// evaluate checks one (listing, preference) pair. Mandatory criteria
// short-circuit in order; soft criteria only annotate the details.
func evaluate(result *scoring.Result, pref *listing.Preference) (Details, bool) {
	if result.Suspicious {
		return Details{}, false
	}

	l := result.Listing

	if !fieldMatches(pref.Make, l.Make) {
		return Details{}, false
	}
	if !fieldMatches(pref.Model, l.Model) {
		return Details{}, false
	}

	minYear, maxYear := pref.YearRange()
	if l.Year != 0 && (l.Year < minYear || l.Year > maxYear) {
		return Details{}, false
	}

	minPrice, maxPrice := pref.PriceRange()
	if l.Price != 0 && (l.Price < minPrice || l.Price > maxPrice) {
		return Details{}, false
	}

	return Details{
		Make:         true,
		Model:        true,
		Year:         true,
		Price:        true,
		Location:     locationMatches(pref.Location, l.Location),
		FuelType:     softMatches(pref.FuelType, l.FuelType),
		Transmission: softMatches(pref.Transmission, l.Transmission),
	}, true
}

// fieldMatches is the mandatory make/model rule: a wildcard preference or an
// absent listing value passes, otherwise two-way containment decides.
func fieldMatches(pref, value string) bool {
	if wildcard(pref) || value == "" {
		return true
	}
	return containsEitherWay(pref, value)
}

// locationMatches compares the normalized city segments of both locations.
// When either side cannot be extracted the criterion is satisfied rather
// than filtered on.
func locationMatches(pref, value string) bool {
	if wildcard(pref) {
		return true
	}

	prefCity := normalizeLocation(pref)
	valueCity := normalizeLocation(value)
	if prefCity == "" || valueCity == "" {
		return true
	}

	return containsEitherWay(prefCity, valueCity)
}

// softMatches is the fuel/transmission rule: the preference value must
// appear in the listing value when both are present.
func softMatches(pref, value string) bool {
	if wildcard(pref) || value == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(strings.TrimSpace(pref)))
}

// rank orders a user's matches best-first: by overall score descending when
// scored, else by price ascending for unscored legacy rows. The sort is
// stable so ties keep input order and reruns are reproducible.
func rank(matches []*Match) {
	if len(matches) == 0 {
		return
	}

	if matches[0].Result != nil {
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].Result.Overall > matches[j].Result.Overall
		})
		return
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Listing.Price < matches[j].Listing.Price
	})
}
