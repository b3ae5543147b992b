package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/autosniper/autosniper/internal/listing"
	"github.com/autosniper/autosniper/internal/logger"
	"github.com/autosniper/autosniper/internal/matching"
)

const (
	PromptAccept       = "Accept matches and mark notified"
	PromptExit         = "Exit without marking"
	PromptReportByUser = "Report by user"
	PromptDumpMatches  = "Dump matched listings to file"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptAccept, PromptExit, PromptReportByUser, PromptDumpMatches},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one scoring and matching tick over the current snapshot",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "mark matches notified and print the report without asking")
	runCmd.Flags().StringP("notified-file", "n", "", "file carrying already-notified markers between runs")

	viper.BindPFlag("notified-file", runCmd.Flags().Lookup("notified-file"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting autosniper", zap.String("version", version))

	if config == nil {
		logger.Fatal("config is required")
	}

	commentator, err := newCommentator(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("skipping ai commentary", zap.Error(err))
	}

	outcome, err := executeTick(config, logger)
	if err != nil {
		logger.Fatal("engine run failed", zap.Error(err))
	}

	if len(outcome.matches) == 0 {
		logger.Info("exiting", zap.String("reason", "no matches found"))
		return
	}

	report := buildReport(ctx, outcome.matches, commentator, logger)

	if cmd.Flag("auto-approve").Value.String() == "true" {
		printReport(report)
		if err := outcome.markNotified(config, logger); err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, outcome, report, config, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, outcome *tickOutcome, report map[string][]matchReport, config *Config, logger *zap.Logger) error {
	switch action {
	case PromptAccept:
		printReport(report)
		if err := outcome.markNotified(config, logger); err != nil {
			return err
		}
		return errExit
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptReportByUser:
		printReport(report)
		return nil
	case PromptDumpMatches:
		filename, err := matchedListings(outcome.matches).DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump matches to file: %w", err)
		}
		logger.Info("dumped matched listings", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func printReport(report map[string][]matchReport) {
	pretty, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(pretty))
}

// matchedListings flattens the match map into a deduplicated collection.
func matchedListings(matches map[string][]*matching.Match) *listing.Listings {
	seen := make(map[string]struct{})
	ls := &listing.Listings{}

	for _, userMatches := range matches {
		for _, match := range userMatches {
			id := match.Listing.ID()
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ls.Items = append(ls.Items, match.Listing)
		}
	}

	return ls
}
