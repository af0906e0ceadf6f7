package cmd

import (
	"fmt"
	"mlbids/internal/normalize"
	"mlbids/internal/playeridmap"
	"mlbids/lib/serviceutil"
	"strings"

	"github.com/spf13/cobra"
)

var (
	showLimit *int
	showCSV   *bool
)

func init() {
	showLimit = showCmd.Flags().IntP("limit", "n", 20, "The amount of rows to print, 0 prints every row.")
	showCSV = showCmd.Flags().Bool("csv", false, "Print the rows as csv.")
	rootCmd.AddCommand(showCmd)
}

func providerNames() string {
	names := []string{}
	for _, p := range playeridmap.Providers() {
		names = append(names, strings.ToLower(p.String()))
	}
	return strings.Join(names, ", ")
}

func project(m playeridmap.Map, view string) (normalize.Table, error) {
	switch strings.ToLower(view) {
	case "info":
		return m.Info()
	case "general":
		return m.General()
	case "data", "all":
		return m.Data()
	}
	provider, err := playeridmap.ProviderByName(view)
	if err != nil {
		return normalize.Table{}, err
	}
	return m.Projection(provider)
}

var showCmd = &cobra.Command{
	Use:   "show <info|general|all|provider>",
	Short: "Prints a projection of the player id map.",
	Long: fmt.Sprintf(
		"Prints a projection of the player id map.\n\nProviders: %s",
		providerNames(),
	),
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m, err := playeridmap.New(cmd.Context(), reader, tel)
		if err != nil {
			serviceutil.Fatal("failed to read player id map", err)
		}
		tbl, err := project(m, args[0])
		if err != nil {
			serviceutil.Fatal(fmt.Sprintf("failed to project %q", args[0]), err)
		}
		renderTable(tbl, *showLimit, *showCSV)
	},
}
