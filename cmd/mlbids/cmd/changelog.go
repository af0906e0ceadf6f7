package cmd

import (
	"fmt"
	"mlbids/internal/normalize"
	"mlbids/internal/playeridmap"
	"mlbids/lib/serviceutil"

	"github.com/spf13/cobra"
)

var changelogLimit *int

func init() {
	changelogLimit = changelogCmd.Flags().IntP("limit", "n", 20, "The amount of entries to print, 0 prints every entry.")
	rootCmd.AddCommand(changelogCmd)
	rootCmd.AddCommand(lastUpdateCmd)
}

var changelogCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Prints the changelog of the player id map, most recent first.",
	Run: func(cmd *cobra.Command, args []string) {
		changelog, err := reader.ReadChangelog(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to read changelog", err)
		}
		renderTable(changelog, *changelogLimit, false)
	},
}

var lastUpdateCmd = &cobra.Command{
	Use:   "last-update",
	Short: "Prints the date of the most recent change to the player id map.",
	Run: func(cmd *cobra.Command, args []string) {
		changelog, err := reader.ReadChangelog(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to read changelog", err)
		}
		lastUpdate, err := playeridmap.FromTables(normalize.Table{}, changelog).LastUpdate()
		if err != nil {
			serviceutil.Fatal("failed to get last update", err)
		}
		fmt.Println(normalize.Format(lastUpdate))
	},
}
