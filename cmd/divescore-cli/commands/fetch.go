package commands

import (
	"log/slog"

	"divescore-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var fetchForce *bool

func init() {
	fetchForce = fetchCmd.Flags().Bool("force", false, "Refetch even when a record already exists.")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <number>...",
	Short: "Fetches, grades and persists the record of each given diver number.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		service, _ := createService()

		for _, number := range args {
			if !*fetchForce {
				exists, err := service.Store().Exists(cmd.Context(), number)
				if err != nil {
					serviceutil.Fatal("existence check failed", err)
				}
				if exists {
					slog.Info("record already exists, skipping", "number", number)
					continue
				}
			}

			record, err := service.CreateDiver(cmd.Context(), number)
			if err != nil {
				slog.Error("failed to fetch diver", "number", number, "err", err)
				continue
			}
			slog.Info(
				"fetched diver",
				"number", number,
				"name", record.Profile.Name,
				"overall_grade", record.Rankings.OverallAverageGrade,
			)
		}
	},
}
