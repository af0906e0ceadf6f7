package cmd

import (
	"context"
	"fmt"
	"mlbids/lib/serviceutil"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(downloadCmd)
}

var downloadCmd = &cobra.Command{
	Use:       "download <excel|csv|changelog> <path>",
	Short:     "Downloads the player id map (or its changelog) as is and prints where it was saved.",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"excel", "csv", "changelog"},
	Run: func(cmd *cobra.Command, args []string) {
		var save func(context.Context, string) (string, error)
		switch args[0] {
		case "excel":
			save = reader.SaveExcel
		case "csv":
			save = reader.SaveCSV
		case "changelog":
			save = reader.SaveChangelogCSV
		default:
			fmt.Fprintf(os.Stderr, "unknown download %q, expected excel, csv or changelog\n", args[0])
			serviceutil.Exit(1)
		}

		path, err := save(cmd.Context(), args[1])
		if err != nil {
			serviceutil.Fatal("failed to download", err)
		}
		fmt.Println(path)
	},
}
