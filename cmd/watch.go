package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/autosniper/autosniper/internal/ai"
	"github.com/autosniper/autosniper/internal/logger"
)

const defaultInterval = 15 * time.Minute

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run a tick on a fixed interval until interrupted",
	Run: func(cmd *cobra.Command, _ []string) {
		watch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationP("interval", "i", defaultInterval, "time between ticks")
}

// watch is the scheduler shell around the stateless engine: every interval
// it reloads all inputs, runs one tick, marks notifications, and logs the
// report. The engine keeps no state between ticks.
func watch(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	interval, err := cmd.Flags().GetDuration("interval")
	if err != nil || interval <= 0 {
		interval = defaultInterval
	}

	commentator, err := newCommentator(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("skipping ai commentary", zap.Error(err))
	}

	logger.Info("starting autosniper watch",
		zap.String("version", version),
		zap.Duration("interval", interval),
	)

	for {
		tickOnce(ctx, config, commentator, logger)

		select {
		case <-ctx.Done():
			logger.Info("exiting", zap.String("reason", "interrupted"))
			return
		case <-time.After(interval):
		}
	}
}

// tickOnce runs one tick and logs instead of aborting on failure; the next
// interval gets a fresh chance with freshly loaded inputs.
func tickOnce(ctx context.Context, config *Config, commentator ai.Commentator, logger *zap.Logger) {
	outcome, err := executeTick(config, logger)
	if err != nil {
		logger.Error("tick failed", zap.Error(err))
		return
	}

	if len(outcome.matches) == 0 {
		logger.Info("tick produced no matches")
		return
	}

	report := buildReport(ctx, outcome.matches, commentator, logger)
	for userID, entries := range report {
		logger.Info("matches for user",
			zap.String("user_id", userID),
			zap.Int("count", len(entries)),
			zap.Any("matches", entries),
		)
	}

	if err := outcome.markNotified(config, logger); err != nil {
		logger.Error("marking notified failed", zap.Error(err))
	}
}
