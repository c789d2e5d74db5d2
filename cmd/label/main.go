package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-research/internal/config"
	"github.com/rxtech-lab/argo-research/internal/datasource"
	"github.com/rxtech-lab/argo-research/internal/labeling"
	"github.com/rxtech-lab/argo-research/internal/logger"
	"github.com/urfave/cli/v3"
)

// labelAction runs the feature engine and all enabled detectors over the bar
// table, builds the label table, and writes it out.
func labelAction(ctx context.Context, cmd *cli.Command) error {
	barsPath := cmd.String("bars")
	outputPath := cmd.String("output")
	configPath := cmd.String("config")

	pipelineConfig := config.DefaultConfig()

	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		pipelineConfig = loaded
	}

	if cmd.IsSet("negative-ratio") {
		pipelineConfig.Labeling.NegativeRatio = int(cmd.Int("negative-ratio"))
	}

	if cmd.IsSet("seed") {
		pipelineConfig.Labeling.Seed = cmd.Int("seed")
	}

	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = appLogger.Sync() }()

	source, err := datasource.NewDuckDBDataSource("", appLogger)
	if err != nil {
		return fmt.Errorf("failed to open data source: %w", err)
	}
	defer source.Close()

	if err := source.InitializeBars(barsPath); err != nil {
		return fmt.Errorf("failed to load bars from %s: %w", barsPath, err)
	}

	bars, err := source.ReadBars(optional.None[time.Time](), optional.None[time.Time]())
	if err != nil {
		return fmt.Errorf("failed to read bars: %w", err)
	}

	featureEngine, err := pipelineConfig.BuildFeatureEngine(appLogger)
	if err != nil {
		return fmt.Errorf("failed to build feature engine: %w", err)
	}

	features, err := featureEngine.ComputeAll(ctx, bars)
	if err != nil {
		return fmt.Errorf("feature computation failed: %w", err)
	}

	registry, err := pipelineConfig.BuildDetectorRegistry(appLogger)
	if err != nil {
		return fmt.Errorf("failed to build detector registry: %w", err)
	}

	signals, err := registry.RunAll(ctx, features)
	if err != nil {
		return fmt.Errorf("signal detection failed: %w", err)
	}

	pipeline, err := labeling.NewPipeline(pipelineConfig.Labeling, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create labeling pipeline: %w", err)
	}

	labels, err := pipeline.Build(signals, features)
	if err != nil {
		return fmt.Errorf("labeling failed: %w", err)
	}

	if err := source.WriteLabels(outputPath, labels); err != nil {
		return fmt.Errorf("failed to write labels to %s: %w", outputPath, err)
	}

	log.Printf("Label table written: %d signals, %d labels, at %s",
		len(signals), len(labels), outputPath)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "label",
		Usage: "Compute features, detect signals and build the training label table",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "bars",
				Aliases:  []string{"b"},
				Usage:    "Path to the bar table (csv or parquet)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Path for the label table (csv or parquet)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the pipeline config (yaml); defaults apply when omitted",
			},
			&cli.IntFlag{
				Name:  "negative-ratio",
				Usage: "Negative examples synthesized per positive label",
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "Seed for deterministic negative sampling",
			},
		},
		Action: labelAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
