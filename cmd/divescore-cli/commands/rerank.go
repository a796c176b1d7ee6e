package commands

import (
	"log/slog"

	"divescore-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rerankCmd)
}

var rerankCmd = &cobra.Command{
	Use:   "rerank",
	Short: "Recomputes the rankings of every persisted record from its stored scoreboard.",
	Run: func(cmd *cobra.Command, args []string) {
		service, _ := createService()

		stats, err := service.Store().RecomputeAll(cmd.Context())
		if err != nil {
			serviceutil.Fatal("rerank failed", err)
		}
		slog.Info("rerank done", "updated", stats.Updated, "skipped", stats.Skipped)
	},
}
