// Package analyze implements the one-shot video analysis command.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crowdwatch/crowdwatch-go/internal/analysis"
	"github.com/crowdwatch/crowdwatch-go/internal/conf"
	"github.com/crowdwatch/crowdwatch-go/internal/datastore"
	"github.com/crowdwatch/crowdwatch-go/internal/inference"
	"github.com/crowdwatch/crowdwatch-go/internal/logging"
)

// Command creates the analyze command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [video-id]",
		Short: "Analyze a stored video",
		Long:  "Run the analysis pipeline for a stored video and print the generated results as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings, args[0])
		},
	}
}

func run(settings *conf.Settings, videoID string) error {
	ds := datastore.New(settings)
	if ds == nil {
		return fmt.Errorf("no database output enabled in configuration")
	}
	if err := ds.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() {
		if err := ds.Close(); err != nil {
			logging.Error("Failed to close datastore", "error", err)
		}
	}()

	processor := analysis.New(settings, ds, inference.NewRandomProvider(), nil, nil)

	result, err := processor.ProcessVideo(context.Background(), videoID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
