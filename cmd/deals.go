package cmd

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/autosniper/autosniper/internal/deals"
	"github.com/autosniper/autosniper/internal/listing"
	"github.com/autosniper/autosniper/internal/logger"
	"github.com/autosniper/autosniper/internal/scoring"
)

var dealsCmd = &cobra.Command{
	Use:   "deals",
	Short: "Print the top deals of the week across the whole snapshot",
	Run: func(cmd *cobra.Command, _ []string) {
		runDeals(cmd)
	},
}

func init() {
	rootCmd.AddCommand(dealsCmd)

	dealsCmd.Flags().IntP("max", "m", 10, "maximum number of deals to print")
}

func runDeals(cmd *cobra.Command) {
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

	max, err := cmd.Flags().GetInt("max")
	if err != nil || max <= 0 {
		max = 10
	}

	scorer := scoring.New(market, logger)
	scorer.Workers = config.Workers

	manager := deals.NewManager(scorer, market, logger)
	top := manager.Top(listings, max, true)

	pretty, _ := json.MarshalIndent(top, "", "  ")
	fmt.Println(string(pretty))
}
