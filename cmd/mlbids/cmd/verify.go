package cmd

import (
	"context"
	"fmt"
	"mlbids/internal/normalize"
	"mlbids/lib/serviceutil"
	"os"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/panjf2000/ants/v2"
	"github.com/spf13/cobra"
)

var verifyWorkers *int

func init() {
	verifyWorkers = verifyCmd.Flags().Int("workers", 4, "The number of downloads to run at once.")
	rootCmd.AddCommand(verifyCmd)
}

type readFunc func(context.Context) (normalize.Table, error)

type verifyPair struct {
	name      string
	html, csv readFunc
}

type readResult struct {
	table normalize.Table
	err   error
}

// readAll runs every read on a pool of `workers` goroutines, results are in
// the order of `reads`.
func readAll(ctx context.Context, workers int, reads []readFunc) ([]readResult, error) {
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make([]readResult, len(reads))
	var wg sync.WaitGroup
	for i, read := range reads {
		i, read := i, read
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			tbl, err := read(ctx)
			results[i] = readResult{table: tbl, err: err}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit read to worker pool: %w", err)
		}
	}
	wg.Wait()
	return results, nil
}

var verifyCmd = &cobra.Command{
	Use:   "verify [--workers <n>]",
	Short: "Checks that the web view and the csv download of both datasets agree.",
	Run: func(cmd *cobra.Command, args []string) {
		pairs := []verifyPair{
			{name: "player id map", html: reader.ReadMain, csv: reader.ReadMainCSV},
			{name: "changelog", html: reader.ReadChangelog, csv: reader.ReadChangelogCSV},
		}
		reads := make([]readFunc, 0, len(pairs)*2)
		for _, pair := range pairs {
			reads = append(reads, pair.html, pair.csv)
		}

		results, err := readAll(cmd.Context(), *verifyWorkers, reads)
		if err != nil {
			serviceutil.Fatal("failed to start downloads", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Dataset", "Rows", "Result"})
		failed := false
		for i, pair := range pairs {
			html, csv := results[2*i], results[2*i+1]
			if html.err != nil {
				serviceutil.Fatal(fmt.Sprintf("failed to read %s", pair.name), html.err)
			}
			if csv.err != nil {
				serviceutil.Fatal(fmt.Sprintf("failed to read %s csv", pair.name), csv.err)
			}

			if !normalize.Equal(html.table, csv.table) {
				failed = true
				t.AppendRow(table.Row{pair.name, html.table.Len(), "MISMATCH"})
				fmt.Fprintf(os.Stderr, "%s (-html +csv):\n%s\n", pair.name, normalize.Diff(html.table, csv.table))
				continue
			}
			t.AppendRow(table.Row{pair.name, html.table.Len(), "ok"})
		}
		t.Render()

		if failed {
			serviceutil.Exit(1)
		}
	},
}
