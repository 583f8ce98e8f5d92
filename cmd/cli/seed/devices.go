// Package seed holds the CLI commands for loading reference data.
package seed

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/TulasiR141/otopilot/internal/catalog"
	"github.com/TulasiR141/otopilot/internal/errors"
	"github.com/TulasiR141/otopilot/internal/models"
	"github.com/TulasiR141/otopilot/internal/sqlite"
)

var Group = &cobra.Group{
	ID:    "seed",
	Title: "Reference data",
}

var (
	sqliteURL   string
	devicesFile string
)

func init() {
	Devices.Flags().StringVar(&sqliteURL, "sqlite-url", "./otopilot.sqlite", "SQLite URL")
	Devices.Flags().StringVar(&devicesFile, "file", "./data/hearing-aids.json", "path to the hearing aid JSON document")
}

var Devices = &cobra.Command{
	Use:     "seed-devices",
	GroupID: "seed",
	Short:   "Load hearing aid catalog entries from a JSON document",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		data, err := os.ReadFile(devicesFile)
		if err != nil {
			return errors.Wrap(err, "read device document", slog.String("path", devicesFile))
		}
		var aids []models.HearingAid
		if err = json.Unmarshal(data, &aids); err != nil {
			return errors.Wrap(err, "decode device document", slog.String("path", devicesFile))
		}

		dbs, err := sqlite.NewDatabase(ctx, sqliteURL, logger)
		if err != nil {
			return errors.Wrap(err, "open database", slog.String("url", sqliteURL))
		}
		defer func() {
			if closeErr := dbs.Close(); closeErr != nil {
				logger.LogAttrs(ctx, slog.LevelError, "could not close database", errors.SlogError(closeErr))
			}
		}()

		repo := catalog.NewRepository(dbs, logger)
		for _, aid := range aids {
			if _, err = repo.Insert(ctx, aid); err != nil {
				return errors.Wrap(err, "insert device")
			}
		}
		cmd.Printf("seeded %d devices into %s\n", len(aids), sqliteURL)
		return nil
	},
}
