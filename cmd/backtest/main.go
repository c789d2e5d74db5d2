package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-research/internal/backtest"
	"github.com/rxtech-lab/argo-research/internal/datasource"
	"github.com/rxtech-lab/argo-research/internal/logger"
	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/urfave/cli/v3"
)

// backtestAction is the core logic executed by the CLI command. It loads the
// bar and label tables, replays every label, and writes the result artifact.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	barsPath := cmd.String("bars")
	labelsPath := cmd.String("labels")
	outputPath := cmd.String("output")

	simConfig := backtest.SimulatorConfig{
		InitialCapital:   cmd.Float("initial-capital"),
		Commission:       cmd.Float("commission"),
		Slippage:         cmd.Float("slippage"),
		PositionFraction: cmd.Float("position-fraction"),
		BarDuration:      cmd.Duration("bar-duration"),
		Tiebreak:         backtest.TiebreakPolicy(cmd.String("tiebreak")),
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

	if err := source.InitializeLabels(labelsPath); err != nil {
		return fmt.Errorf("failed to load labels from %s: %w", labelsPath, err)
	}

	bars, err := source.ReadBars(optional.None[time.Time](), optional.None[time.Time]())
	if err != nil {
		return fmt.Errorf("failed to read bars: %w", err)
	}

	labels, err := source.ReadLabels()
	if err != nil {
		return fmt.Errorf("failed to read labels: %w", err)
	}

	engine, err := backtest.NewEngine(simConfig, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create backtest engine: %w", err)
	}

	engine.SetProgress(true)

	results, metrics, err := engine.Run(ctx, bars, labels)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	artifact := engine.BuildArtifact(results, metrics)
	if err := types.WriteBacktestArtifact(outputPath, artifact); err != nil {
		return fmt.Errorf("failed to write artifact to %s: %w", outputPath, err)
	}

	log.Printf("Backtest complete: %d trades, win rate %.2f%%, artifact at %s",
		metrics.TotalTrades, metrics.WinRate*100, outputPath)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Replay a label table against historical bars and write the result artifact",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "bars",
				Aliases:  []string{"b"},
				Usage:    "Path to the bar table (csv or parquet)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "labels",
				Aliases:  []string{"l"},
				Usage:    "Path to the label table (csv or parquet)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Path for the result artifact (yaml)",
				Required: true,
			},
			&cli.FloatFlag{
				Name:  "initial-capital",
				Usage: "Starting capital in dollars",
				Value: 100_000,
			},
			&cli.FloatFlag{
				Name:  "commission",
				Usage: "Per-leg commission as a fraction of notional",
				Value: 0.001,
			},
			&cli.FloatFlag{
				Name:  "slippage",
				Usage: "Adverse entry slippage as a fraction of price",
				Value: 0,
			},
			&cli.FloatFlag{
				Name:  "position-fraction",
				Usage: "Fraction of capital risked per trade",
				Value: 0.02,
			},
			&cli.DurationFlag{
				Name:  "bar-duration",
				Usage: "Fixed duration of one bar, e.g. 1m",
				Value: time.Minute,
			},
			&cli.StringFlag{
				Name:  "tiebreak",
				Usage: "Same-bar stop/target resolution: stop_loss or take_profit",
				Value: string(backtest.TiebreakStopLoss),
			},
		},
		Action: backtestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
