package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gridwise/microgrid/app"
	"github.com/gridwise/microgrid/config"
	"github.com/gridwise/microgrid/infra/logger"
	"github.com/gridwise/microgrid/pkg/export"
)

var (
	cfgPath    string
	csvOut     string
	jsonOut    string
	summaryOut string
)

var rootCmd = &cobra.Command{
	Use:   "microgrid",
	Short: "Hospital microgrid dispatch simulator",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.Flags().StringVar(&csvOut, "csv", "", "write step records to a CSV file")
	rootCmd.Flags().StringVar(&jsonOut, "json", "", "write step records to a JSON file")
	rootCmd.Flags().StringVar(&summaryOut, "summary", "", "write the run summary to a JSON file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	if err := svc.Run(ctx); err != nil {
		return err
	}
	return writeResults(svc)
}

func writeResults(svc *app.Service) error {
	if csvOut != "" {
		f, err := os.Create(csvOut)
		if err != nil {
			return fmt.Errorf("create csv: %w", err)
		}
		defer f.Close()
		if err := export.WriteCSV(f, svc.Records()); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	if jsonOut != "" {
		f, err := os.Create(jsonOut)
		if err != nil {
			return fmt.Errorf("create json: %w", err)
		}
		defer f.Close()
		if err := export.WriteJSON(f, svc.Records()); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
	}
	if summaryOut != "" {
		f, err := os.Create(summaryOut)
		if err != nil {
			return fmt.Errorf("create summary: %w", err)
		}
		defer f.Close()
		if err := export.WriteSummaryJSON(f, svc.Summary()); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	return nil
}
