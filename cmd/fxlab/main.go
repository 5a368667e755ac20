package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/fxlab-research/fxlab/internal/alert"
	"github.com/fxlab-research/fxlab/internal/feed"
	"github.com/fxlab-research/fxlab/internal/logger"
	"github.com/fxlab-research/fxlab/internal/report"
	"github.com/fxlab-research/fxlab/internal/validation"
	"github.com/fxlab-research/fxlab/internal/version"
)

// runAction loads the config and data, runs the walk-forward harness, and
// writes the report plus per-fold ledger artifacts.
func runAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	config, err := validation.LoadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	source := feed.NewCSVSource(log)

	bars, err := source.LoadBars(cmd.String("bars"))
	if err != nil {
		return err
	}

	signals, err := source.LoadSignals(cmd.String("signals"))
	if err != nil {
		return err
	}

	harness, err := validation.NewHarness(config, log)
	if err != nil {
		return err
	}

	if !cmd.Bool("quiet") {
		harness.EnableProgress()
	}

	result, err := harness.Run(ctx, bars, signals)
	if err != nil {
		return err
	}

	writer, err := report.NewWriter(log, report.Format(cmd.String("format")))
	if err != nil {
		return err
	}

	runDir, err := writer.Write(cmd.String("output"), result)
	if err != nil {
		return err
	}

	// Fan-out point for additional sinks (webhooks, chat channels).
	notifier := alert.NewMultiNotifier(alert.NewLogNotifier(log))
	for _, artifact := range result.Artifacts {
		if artifact == nil {
			continue
		}

		if err := alert.NotifyAll(ctx, notifier, artifact.Ledger.RiskEvents()); err != nil {
			log.Warn("Failed to deliver risk notifications", zap.Error(err))
		}
	}

	log.Info("Walk-forward run finished",
		zap.String("run_dir", runDir),
		zap.Int("folds", len(result.Report.Folds)),
		zap.Int("failed_folds", result.Report.Aggregate.FailedFolds),
		zap.Float64("mean_sharpe", result.Report.Aggregate.MeanSharpe),
		zap.Float64("p_value", result.Report.Aggregate.PValue),
	)

	return nil
}

// schemaAction prints the JSON schema of the run configuration.
func schemaAction(_ context.Context, _ *cli.Command) error {
	config := validation.EmptyConfig()

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "fxlab",
		Usage:   "Walk-forward forex backtest validation",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a walk-forward validation over a bar/signal feed",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the YAML run configuration",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "bars",
						Aliases:  []string{"b"},
						Usage:    "Path to the OHLCV bar CSV",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "signals",
						Aliases:  []string{"s"},
						Usage:    "Path to the signal CSV",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Directory to write the run report and artifacts into",
						Value:   "results",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Ledger artifact format: parquet or csv",
						Value: string(report.FormatParquet),
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "Disable the fold progress bar",
					},
				},
				Action: runAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the run configuration",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
