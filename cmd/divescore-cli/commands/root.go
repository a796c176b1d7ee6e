package commands

import (
	"context"
	"fmt"
	"os"

	"divescore-backend/lib/restyutil"
	"divescore-backend/lib/scrapers/divemeets"
	"divescore-backend/lib/serviceutil"
	"divescore-backend/lib/sqliteutil"
	"divescore-backend/lib/telemetry"
	"divescore-backend/services/divers"
	diversdb "divescore-backend/services/divers/db"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "divescore-cli",
	Short: "divescore-cli scrapes and grades diver performance records.",
}

var dbPath *string
var baseUrl *string
var verbose *bool
var restyDump *string

func init() {
	dbPath = rootCmd.PersistentFlags().String("db", "divers.db", "The database holding persisted diver records.")
	baseUrl = rootCmd.PersistentFlags().String("base-url", "", "Override the results site base url.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging.")
	restyDump = rootCmd.PersistentFlags().String("resty-dump", "", "Dump every http request/response pair to this directory.")
}

func ExecuteContext(ctx context.Context) {
	cobra.OnInitialize(func() {
		telemetry.InitSlog(*verbose)
	})
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func createService() (divers.Service, *divemeets.Client) {
	database, err := sqliteutil.OpenDB(diversdb.Schema, *dbPath)
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}

	scraper, err := divemeets.NewClient(divemeets.ClientOptions{
		BaseUrl: *baseUrl,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize divemeets client", err)
	}
	if *restyDump != "" {
		scraper.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(*restyDump))
	}

	service, err := divers.NewService(database, scraper, divers.ServiceOptions{})
	if err != nil {
		serviceutil.Fatal("failed to initialize divers service", err)
	}
	return service, scraper
}
