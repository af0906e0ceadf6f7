package cmd

import (
	"mlbids/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(urlsCmd)
}

var urlsCmd = &cobra.Command{
	Use:   "urls",
	Short: "Prints the current player id map urls linked from the tools page.",
	Run: func(cmd *cobra.Command, args []string) {
		urls, err := reader.URLs(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to resolve urls", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Name", "URL"})
		t.AppendRows([]table.Row{
			{"Excel download", urls.ExcelDownload},
			{"Web view", urls.WebView},
			{"CSV download", urls.CSVDownload},
			{"Changelog web view", urls.ChangelogWebView},
			{"Changelog CSV download", urls.ChangelogCSVDownload},
		})
		t.Render()
	},
}
