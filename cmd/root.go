package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"sdg-collector/apperr"
	"sdg-collector/config"
	"sdg-collector/scraper/unsdg"
	"sdg-collector/services"
	"sdg-collector/storage"
	"sdg-collector/utils"
)

var rootCmd = &cobra.Command{
	Use:   "sdg-collector",
	Short: "Collect SDG indicator values per country into one JSON document",
	Long: "Fetches one value per goal from the UN SDG API for every country listed in the\n" +
		"M49/ISO3 mapping file and writes a document keyed by ISO3 code.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	config.RegisterFlags(rootCmd.Flags())
}

// reportedError marks an error that has already been logged.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Execute runs the root command. Errors not yet logged by the run itself
// (flag parsing, configuration) are printed to stderr.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	var reported *reportedError
	if err != nil && !errors.As(err, &reported) {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	logger := utils.NewLogger()
	logger.SetLevel(utils.ParseLevel(cfg.LogLevel))

	logger.Info("=== SDG collector starting ===")
	logger.Info("Config — year: %d | mapping: %s | output: %s | api: %s",
		cfg.TargetYear, cfg.MappingCSVPath, cfg.OutputJSONPath, cfg.APIBaseURL)

	ctx := cmd.Context()
	client := unsdg.New(cfg, logger)
	pipeline := services.NewPipeline(cfg, client, logger).WithReport(cmd.OutOrStdout())

	if !cfg.NoProgress {
		pipeline.WithProgress(func(total int) services.Progress {
			return progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Processing countries"),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		})
	}

	if cfg.CSVOutputPath != "" {
		pipeline.WithSinks(storage.NewCSVWriter(cfg.CSVOutputPath))
	}

	if cfg.PostgresEnabled {
		pgWriter, err := storage.NewPostgresWriter(ctx, cfg.DSN(), logger)
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL, continuing without mirror: %v", err)
		} else {
			defer pgWriter.Close()
			pipeline.WithSinks(pgWriter)
		}
	}

	if _, err := pipeline.Run(ctx); err != nil {
		switch {
		case apperr.IsConfiguration(err):
			logger.Error("%v", err)
		case errors.Is(err, apperr.ErrRemoteUnavailable):
			logger.Error("Failed to fetch geo area list: %v", err)
		default:
			logger.Error("Run failed: %v", err)
		}
		return &reportedError{err: err}
	}
	return nil
}
