package cmd

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/autosniper/autosniper/internal/listing"
	"github.com/autosniper/autosniper/internal/logger"
	"github.com/autosniper/autosniper/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a listings snapshot without matching, for curve calibration",
	Run: func(_ *cobra.Command, _ []string) {
		runScore()
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func runScore() {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	market, err := loadMarket(config, logger)
	if err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}

	listings, err := listing.LoadSnapshot(config.SnapshotFile)
	if err != nil {
		logger.Fatal("loading listings", zap.Error(err))
	}

	scorer := scoring.New(market, logger)
	scorer.Workers = config.Workers

	results := scorer.BatchScore(listings)

	scored := 0
	for _, result := range results {
		if result != nil {
			scored++
		}
	}
	logger.Info("scored snapshot",
		zap.Int("listings", listings.Len()),
		zap.Int("scored", scored),
	)

	pretty, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(pretty))
}
