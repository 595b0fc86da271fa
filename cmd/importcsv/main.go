package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"reviewhub/database"
	"reviewhub/internal/config"
	"reviewhub/internal/importer"
	"reviewhub/internal/logger"
)

var (
	dataDir     string
	clearTables bool
)

var rootCmd = &cobra.Command{
	Use:   "importcsv",
	Short: "importcsv - load ReviewHub CSV exports into the database",
	Long: `importcsv loads users, categories, genres, titles, genre links, reviews
and comments from CSV files in the data directory. Each file is loaded in its
own transaction; a failing file is reported and the rest still run.

It reads the same environment as the api server, and the schema must
exist (start the api server once, it migrates on boot).`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		logg := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		results := importer.New(pool, dataDir, clearTables, logg).Run(ctx, importer.DefaultSources)
		return report(results, logg)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&dataDir, "dir", "d", "static/data", "directory holding the CSV files")
	rootCmd.Flags().BoolVar(&clearTables, "clear", false, "empty every table except users before loading it")
}

func report(results []importer.Result, logg *slog.Logger) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			color.Red("Error while import data from %q: %v.", r.File, r.Err)
			continue
		}
		color.Green("Data imported from %q successfully (%d rows).", r.File, r.Rows)
	}
	if failed > 0 {
		logg.Warn("import finished with failures", slog.Int("failed", failed), slog.Int("files", len(results)))
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
