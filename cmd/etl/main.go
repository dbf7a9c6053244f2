package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "etl",
	Short: "River gauge export ingestion",
	Long: `etl turns a station's raw gauge CSV exports into daily aggregate Parquet
files plus a station metadata document.

Settings come from the environment (and .env when present); flags override them.`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("data-root", "", "directory holding the parameter subdirectories (DATA_ROOT)")
	flags.String("out-root", "", "output directory for artifacts and metadata (OUT_ROOT)")
	flags.String("station-id", "", "station number to ingest (STATION_ID)")
	flags.String("start-date", "", "drop rows dated before YYYY-MM-DD (START_DATE)")
	flags.String("mirror-to", "", "copy the output tree to this directory after a run (MIRROR_DIR)")

	rootCmd.AddCommand(ingestCommand())
	rootCmd.AddCommand(serveCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
