package cmd

import (
	"context"
	"fmt"
	"mlbids/internal/components/telemetry"
	"mlbids/internal/config"
	"mlbids/internal/dataset"
	"mlbids/internal/schema"
	"mlbids/internal/scrapers/sfbb"
	"mlbids/lib/restyutil"
	"mlbids/lib/serviceutil"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
	dumpDir    *string
)

var (
	cfg    config.Config
	tel    telemetry.API = telemetry.SlogAPI{}
	reader dataset.Reader
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", config.DefaultPath, "The config file to read, a missing file means defaults. Without the flag the nearest mlbids.json5 in the working directory or its parents is used.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log requests and other debug output.")
	dumpDir = rootCmd.PersistentFlags().String("dump", "", "Write every http exchange to this directory.")
}

var rootCmd = &cobra.Command{
	Use:   "mlbids",
	Short: "mlbids reads the Smart Fantasy Baseball player id map and maps players across sites.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)

		path := *configPath
		if !cmd.Flag("config").Changed {
			wd, err := os.Getwd()
			if err == nil {
				path = config.Locate(wd)
			}
		}

		var err error
		cfg, err = config.Load(path)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		cfg, err = cfg.WithOverrides(config.Config{DumpDir: *dumpDir})
		if err != nil {
			serviceutil.Fatal("invalid flags", err)
		}

		shutdownTracing, err := telemetry.SetupTracing(cmd.Context(), "mlbids", cfg.Otlp)
		if err != nil {
			serviceutil.Fatal("failed to setup tracing", err)
		}
		// failed runs exit through serviceutil and still flush their spans
		serviceutil.AtExit(func() {
			err := shutdownTracing(context.Background())
			if err != nil {
				tel.ReportWarning("tracing.shutdown", err)
			}
		})

		reader, err = newReader(cfg)
		if err != nil {
			serviceutil.Fatal("failed to create dataset reader", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		serviceutil.RunExitHooks()
	},
}

func newReader(cfg config.Config) (dataset.Reader, error) {
	clientOpts := cfg.ClientOptions()
	if cfg.DumpDir != "" {
		output, err := restyutil.NewDirOutput(cfg.DumpDir)
		if err != nil {
			return dataset.Reader{}, err
		}
		clientOpts.Dump = output
	}
	client := sfbb.NewClient(clientOpts, tel)
	tools, err := sfbb.NewTools(client, cfg.ToolsURL, tel)
	if err != nil {
		return dataset.Reader{}, err
	}

	opts := dataset.Options{}
	if cfg.SchemaDir != "" {
		mainEntry, err := schema.LoadDir(schema.Main, cfg.SchemaDir)
		if err != nil {
			return dataset.Reader{}, err
		}
		changelogEntry, err := schema.LoadDir(schema.Changelog, cfg.SchemaDir)
		if err != nil {
			return dataset.Reader{}, err
		}
		opts.MainSchema = &mainEntry
		opts.ChangelogSchema = &changelogEntry
	}

	return dataset.NewReader(tools, client, opts, tel)
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		serviceutil.Exit(1)
	}
}
