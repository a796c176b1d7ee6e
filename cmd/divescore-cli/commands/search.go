package commands

import (
	"os"

	"divescore-backend/lib/scrapers/divemeets"
	"divescore-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <first> <last>",
	Short: "Searches the member list for divers by name.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		_, scraper := createService()

		members, err := scraper.SearchMembers(cmd.Context(), args[0], args[1])
		if err != nil {
			serviceutil.Fatal("member search failed", err)
		}

		best, _ := divemeets.BestMatch(members, args[0], args[1])

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Number", "Name", "Best match"})
		for _, m := range members {
			marker := ""
			if m.Number == best.Number {
				marker = "*"
			}
			t.AppendRow(table.Row{m.Number, m.Name, marker})
		}
		t.Render()
	},
}
