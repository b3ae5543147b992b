package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/autosniper/autosniper/internal/ai"
	"github.com/autosniper/autosniper/internal/ai/gemini"
	"github.com/autosniper/autosniper/internal/listing"
	"github.com/autosniper/autosniper/internal/matching"
	"github.com/autosniper/autosniper/internal/refdata"
	"github.com/autosniper/autosniper/internal/scoring"
	"github.com/autosniper/autosniper/internal/secrets"
)

// tickOutcome is everything one engine invocation produced, kept together so
// the caller can report and mark notifications afterwards.
type tickOutcome struct {
	listings *listing.Listings
	notified *listing.NotifiedListings
	matches  map[string][]*matching.Match
}

// executeTick loads a full snapshot of inputs and runs the engine once. All
// inputs are reloaded every tick, so market data and preferences hot-swap
// between runs while staying immutable within one.
func executeTick(cfg *Config, logger *zap.Logger) (*tickOutcome, error) {
	market, err := loadMarket(cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.SnapshotFile == "" {
		return nil, fmt.Errorf("snapshot-file is required")
	}
	listings, err := listing.LoadSnapshot(cfg.SnapshotFile)
	if err != nil {
		return nil, fmt.Errorf("loading listings: %w", err)
	}

	if cfg.PreferencesFile == "" {
		return nil, fmt.Errorf("preferences-file is required")
	}
	prefs, err := listing.LoadPreferences(cfg.PreferencesFile)
	if err != nil {
		return nil, fmt.Errorf("loading preferences: %w", err)
	}
	active := listing.Active(prefs)

	notified := &listing.NotifiedListings{}
	if cfg.NotifiedFile != "" {
		notified, err = listing.NotifiedFromFile(cfg.NotifiedFile)
		if err != nil {
			return nil, fmt.Errorf("loading notified markers: %w", err)
		}
		notified.Apply(listings)
	}

	logger.Info("starting engine run",
		zap.Int("listings", listings.Len()),
		zap.Int("preferences", len(prefs)),
		zap.Int("active_preferences", len(active)),
		zap.Int("notified_markers", len(notified.Items)),
		zap.String("tables_version", refdata.Version),
	)

	scorer := scoring.New(market, logger)
	scorer.Workers = cfg.Workers

	engine := matching.New(scorer, logger)
	matches := engine.FindMatches(listings, active)

	logger.Info("engine run finished", zap.Int("users_with_matches", len(matches)))

	return &tickOutcome{listings: listings, notified: notified, matches: matches}, nil
}

func loadMarket(cfg *Config, logger *zap.Logger) (refdata.MarketData, error) {
	if cfg.MarketFile == "" {
		logger.Warn("market-file not configured, using the built-in sample table")
		return refdata.SampleMarket(), nil
	}

	market, err := refdata.LoadMarket(cfg.MarketFile)
	if err != nil {
		return nil, fmt.Errorf("loading market data: %w", err)
	}

	logger.Info("loaded market data",
		zap.String("path", cfg.MarketFile),
		zap.Int("models", len(market)),
	)
	return market, nil
}

// markNotified records every matched (listing, user) pair and persists the
// notified file so the next run skips them.
func (o *tickOutcome) markNotified(cfg *Config, logger *zap.Logger) error {
	if cfg.NotifiedFile == "" {
		logger.Warn("notified-file not configured, matches will repeat next run")
		return nil
	}

	count := 0
	for userID, userMatches := range o.matches {
		for _, match := range userMatches {
			o.notified.Add(match.Listing.ID(), userID)
			count++
		}
	}

	if err := o.notified.ToFile(cfg.NotifiedFile); err != nil {
		return fmt.Errorf("writing notified markers: %w", err)
	}

	logger.Info("marked matches as notified",
		zap.Int("pairs", count),
		zap.String("path", cfg.NotifiedFile),
	)
	return nil
}

// matchReport is the downstream-facing shape of one match.
type matchReport struct {
	Listing    string           `json:"listing"`
	URL        string           `json:"url,omitempty"`
	Price      int              `json:"price"`
	Score      float64          `json:"score"`
	Grade      string           `json:"grade"`
	Details    matching.Details `json:"match_details"`
	Commentary string           `json:"commentary,omitempty"`
}

// buildReport renders the match map for output. When a commentator is
// configured, the top match of every user gets a verdict; commentary
// failures degrade to none.
func buildReport(ctx context.Context, matches map[string][]*matching.Match, commentator ai.Commentator, logger *zap.Logger) map[string][]matchReport {
	report := make(map[string][]matchReport, len(matches))

	for userID, userMatches := range matches {
		entries := make([]matchReport, 0, len(userMatches))
		for i, match := range userMatches {
			entry := matchReport{
				Listing: describeListing(match.Listing),
				URL:     match.Listing.URL,
				Price:   match.Listing.Price,
				Details: match.Details,
			}
			if match.Result != nil {
				entry.Score = match.Result.Overall
				entry.Grade = match.Result.Grade.String()
			}

			if i == 0 && commentator != nil {
				commentary, err := commentator.Comment(ctx, match)
				if err != nil {
					logger.Warn("commentary failed",
						zap.String("user_id", userID),
						zap.String("listing_id", match.Listing.ID()),
						zap.Error(err),
					)
				} else {
					entry.Commentary = commentary.Verdict
				}
			}

			entries = append(entries, entry)
		}
		report[userID] = entries
	}

	return report
}

func describeListing(l *listing.Listing) string {
	parts := make([]string, 0, 3)
	if l.Make != "" {
		parts = append(parts, l.Make)
	}
	if l.Model != "" {
		parts = append(parts, l.Model)
	}
	if l.Year != 0 {
		parts = append(parts, fmt.Sprintf("(%d)", l.Year))
	}
	if len(parts) == 0 {
		return l.ID()
	}
	return strings.Join(parts, " ")
}

// newCommentator builds the optional Gemini commentator from config.
// A disabled or absent AI section returns nil without error.
func newCommentator(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Commentator, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}
	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.LoadFile("gemini api key", cfg.Gemini.APIKeyFile)
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file)", err)
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewCommentator(generator, cfg.Gemini.MaxLogLength, genLogger), nil
}
