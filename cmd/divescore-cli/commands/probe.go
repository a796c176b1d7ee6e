package commands

import (
	"log/slog"
	"strconv"

	"divescore-backend/lib/serviceutil"
	"divescore-backend/services/discovery"

	"github.com/spf13/cobra"
)

var probeWorkers *int

func init() {
	probeWorkers = probeCmd.Flags().Int("workers", 8, "Number of concurrent probe workers.")
	rootCmd.AddCommand(probeCmd)
}

var probeCmd = &cobra.Command{
	Use:   "probe <start> <end> [--workers <n>]",
	Short: "Sweeps an id range and fetches every diver that has recorded statistics.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		start, err := strconv.Atoi(args[0])
		if err != nil {
			serviceutil.Fatal("invalid start id", err)
		}
		end, err := strconv.Atoi(args[1])
		if err != nil {
			serviceutil.Fatal("invalid end id", err)
		}

		service, scraper := createService()
		prober := discovery.NewProber(scraper, service, discovery.ProberOptions{
			Workers: *probeWorkers,
		})

		stats, err := prober.Probe(cmd.Context(), start, end)
		if err != nil {
			serviceutil.Fatal("probe sweep failed", err)
		}
		slog.Info(
			"probe done",
			"probed", stats.Probed,
			"created", stats.Created,
			"skipped", stats.Skipped,
			"failed", stats.Failed,
		)
	},
}
