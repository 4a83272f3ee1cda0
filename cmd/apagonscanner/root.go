package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"ApagonScanner/internal/app"
	"ApagonScanner/internal/config"
	"ApagonScanner/internal/infrastructure/storage"
	"ApagonScanner/internal/logging"
	"ApagonScanner/internal/plants"
	"ApagonScanner/internal/usecase"
)

func newRootCmd() *cobra.Command {
	var (
		daysLookback int
		analizeAll   bool
	)

	cmd := &cobra.Command{
		Use:           "apagonscanner",
		Short:         "Extracts and accumulates daily reports on Cuban grid outages",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger := logging.New(cfg.Logging.Level, cfg.Logging.File)

			application, err := app.New(cfg, logger)
			if err != nil {
				logger.Error("configuration error", "error", err)
				return err
			}
			defer application.Close()

			ctx := cmd.Context()
			if analizeAll {
				err = application.RunBackfill(ctx)
			} else {
				err = application.RunDaily(ctx, daysLookback)
			}

			if errors.Is(err, usecase.ErrNothingToDo) {
				logger.Info("nothing to do: no new articles to process")
				return nil
			}
			if err != nil {
				logger.Error("pipeline failed", "error", err)
				return err
			}
			logger.Info("pipeline completed successfully")
			return nil
		},
	}

	cmd.Flags().IntVar(&daysLookback, "days_lookback", 1, "number of days to look back when scraping")
	cmd.Flags().BoolVar(&analizeAll, "analize_all", false, "re-extract the whole raw corpus instead of scraping")

	cmd.AddCommand(newStatsCmd())
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print a summary of the accumulated store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger := logging.New(cfg.Logging.Level, "")

			repo := storage.NewJSONStore(cfg.StorePath(), logger.With("component", "store"))
			s, err := repo.Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Registros totales: %d\n\n", s.Len())
			for _, row := range s.Counts() {
				fmt.Fprintf(out, "%s / %-12s %d\n", row.Year, row.Month, row.Count)
			}

			tally := s.PlantasEnAveria(plants.Canonical)
			if len(tally) == 0 {
				return nil
			}

			names := make([]string, 0, len(tally))
			for name := range tally {
				names = append(names, name)
			}
			sort.Slice(names, func(i, j int) bool {
				if tally[names[i]] != tally[names[j]] {
					return tally[names[i]] > tally[names[j]]
				}
				return names[i] < names[j]
			})

			fmt.Fprintf(out, "\nPlantas en avería más reportadas:\n")
			for _, name := range names {
				fmt.Fprintf(out, "%-28s %d\n", name, tally[name])
			}
			return nil
		},
	}
}
