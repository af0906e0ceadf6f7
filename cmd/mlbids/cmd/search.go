package cmd

import (
	"fmt"
	"mlbids/internal/playeridmap"
	"mlbids/lib/serviceutil"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var searchLimit *int

func init() {
	searchLimit = searchCmd.Flags().IntP("limit", "n", 10, "The amount of matches to print.")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <name>",
	Short: "Finds players by name, the closest matches are printed first.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m, err := playeridmap.New(cmd.Context(), reader, tel)
		if err != nil {
			serviceutil.Fatal("failed to read player id map", err)
		}
		matches, err := m.Search(strings.Join(args, " "), *searchLimit)
		if err != nil {
			serviceutil.Fatal("failed to search", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"PlayerID", "PlayerName", "Similarity"})
		for _, match := range matches {
			t.AppendRow(table.Row{
				match.PlayerID,
				match.PlayerName,
				fmt.Sprintf("%.3f", match.Similarity),
			})
		}
		t.Render()
	},
}
