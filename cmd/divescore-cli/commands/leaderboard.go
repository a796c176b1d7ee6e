package commands

import (
	"os"
	"sort"

	"divescore-backend/lib/serviceutil"
	"divescore-backend/services/divers"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(leaderboardCmd)
}

func eventGrade(record divers.Record, event string) any {
	ranking, ok := record.Rankings.Events[event]
	if !ok || ranking.AverageGrade == nil {
		return "-"
	}
	return *ranking.AverageGrade
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Prints every persisted diver sorted by overall grade.",
	Run: func(cmd *cobra.Command, args []string) {
		service, _ := createService()

		records, err := service.Store().List(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to list records", err)
		}

		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Rankings.OverallAverageGrade > records[j].Rankings.OverallAverageGrade
		})

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Number", "Name", "Overall", "1 Meter", "3 Meter", "Platform"})
		for _, r := range records {
			t.AppendRow(table.Row{
				r.Profile.Number,
				r.Profile.Name,
				r.Rankings.OverallAverageGrade,
				eventGrade(r, "1 Meter"),
				eventGrade(r, "3 Meter"),
				eventGrade(r, "Platform"),
			})
		}
		t.Render()
	},
}
