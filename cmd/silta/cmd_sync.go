package main

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yairfalse/silta/catalog"
	"github.com/yairfalse/silta/config"
	"github.com/yairfalse/silta/glean"
	"github.com/yairfalse/silta/internal/server"
	"github.com/yairfalse/silta/journal"
	"github.com/yairfalse/silta/mapper"
	"github.com/yairfalse/silta/sync"
	"github.com/yairfalse/silta/telemetry"
)

var (
	syncDryRun   bool
	syncSetup    bool
	syncDaemon   bool
	syncInterval time.Duration
	syncListen   string
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync catalog entities into the search index",
	Long: `Fetch entities from the Backstage catalog, map them to Glean
documents and identities, and push them to the indexing API.

Users and groups are synced first so documents can reference them in
permission grants. Duplicate user identities sharing an email are
merged before upload. Entities that fail to map are reported and
skipped without aborting the run.

With --dry-run nothing is uploaded; the mapped output is written as
JSON artifacts for inspection. With --daemon the sync repeats on an
interval and a status server exposes /healthz, /status and /metrics.`,
	Example: `  silta sync                           # One-off sync
  silta sync --dry-run                 # Preview without uploading
  silta sync --setup                   # Create the datasource first
  silta sync --daemon --interval 30m   # Continuous sync
  silta sync --daemon --listen :9090   # Custom status server address`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Map entities but do not upload; write JSON artifacts instead")
	syncCmd.Flags().BoolVar(&syncSetup, "setup", false, "Create or update the Glean datasource before syncing")
	syncCmd.Flags().BoolVar(&syncDaemon, "daemon", false, "Keep running, syncing on an interval")
	syncCmd.Flags().DurationVar(&syncInterval, "interval", 30*time.Minute, "Sync interval in daemon mode")
	syncCmd.Flags().StringVar(&syncListen, "listen", ":8080", "Status server address in daemon mode")
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	dryRun := syncDryRun || cfg.Sync.DryRun

	ctx := cmd.Context()

	shutdown, err := telemetry.InitOTEL(ctx, telemetry.Config{
		ServiceName:    "silta",
		ServiceVersion: version,
		OTELEndpoint:   cfg.OTEL.Endpoint,
		Insecure:       cfg.OTEL.Insecure,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	}()

	metrics, err := telemetry.NewSyncMetrics()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	j, err := journal.Open(cfg.Sync.JournalDir)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer func() { _ = j.Close() }()

	runner, err := buildRunner(ctx, cfg, logger, dryRun, metrics, j)
	if err != nil {
		return err
	}

	if syncDaemon {
		return runDaemonLoop(ctx, runner, j, logger)
	}

	res, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	printResult(res)
	if res.Status() == "failed" {
		os.Exit(1)
	}
	return nil
}

func buildRunner(ctx context.Context, cfg *config.Config, logger zerolog.Logger, dryRun bool, metrics *telemetry.SyncMetrics, j *journal.Journal) (*sync.Runner, error) {
	source, err := catalog.NewClient(catalog.Config{
		BaseURL:   cfg.Backstage.BaseURL,
		Token:     cfg.Backstage.Token,
		PageSize:  cfg.Backstage.PageSize,
		VerifySSL: cfg.VerifySSL(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create catalog client: %w", err)
	}

	var sink sync.Sink
	if dryRun {
		sink = &sync.DryRunSink{OutputDir: cfg.Sync.OutputJSONDir, Logger: logger}
	} else {
		client := glean.NewClient(glean.Config{
			Instance:   cfg.Glean.Instance,
			APIKey:     cfg.Glean.APIKey,
			Datasource: cfg.Glean.Datasource,
			BatchSize:  cfg.Sync.BatchSize,
		}, logger)
		if syncSetup {
			if err := client.SetupDatasource(ctx, cfg.Glean.DatasourceDisplayName, cfg.Backstage.BaseURL+"/catalog/.*"); err != nil {
				return nil, fmt.Errorf("setup datasource: %w", err)
			}
		}
		sink = client
	}

	m := mapper.New(cfg.Backstage.BaseURL, cfg.Glean.Datasource, cfg.Policy(), logger)
	return sync.NewRunner(source, sink, m, cfg.Sync.Kinds, logger,
		sync.WithMetrics(metrics),
		sync.WithJournal(j),
		sync.WithDryRun(dryRun),
	), nil
}

// runDaemonLoop keeps syncing on an interval until a signal arrives.
// The status server, the sync loop, and the signal handler run as one
// actor group so any exit tears down the rest.
func runDaemonLoop(ctx context.Context, runner *sync.Runner, j *journal.Journal, logger zerolog.Logger) error {
	srv := server.New(syncListen, j, telemetry.PrometheusRegistry, logger)

	var g run.Group

	g.Add(run.SignalHandler(ctx, syscall.SIGINT, syscall.SIGTERM))

	g.Add(func() error {
		return srv.Start()
	}, func(error) {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Stop(stopCtx)
	})

	loopCtx, cancelLoop := context.WithCancel(ctx)
	g.Add(func() error {
		ticker := time.NewTicker(syncInterval)
		defer ticker.Stop()
		for {
			if res, err := runner.Run(loopCtx); err != nil {
				logger.Error().Err(err).Msg("sync run failed")
			} else {
				printResult(res)
			}
			select {
			case <-ticker.C:
			case <-loopCtx.Done():
				return loopCtx.Err()
			}
		}
	}, func(error) {
		cancelLoop()
	})

	fmt.Printf("Silta daemon running (interval %s, status on %s)\n", syncInterval, syncListen)
	err := g.Run()
	if _, ok := err.(run.SignalError); ok {
		fmt.Println("\nShutting down")
		return nil
	}
	return err
}

func printResult(res *sync.Result) {
	mode := ""
	if res.DryRun {
		mode = " (dry run)"
	}
	fmt.Printf("\nSync %s%s in %s\n", res.Status(), mode, res.Duration.Round(time.Millisecond))
	fmt.Printf("  Documents:   %d\n", res.Documents)
	fmt.Printf("  Users:       %d\n", res.Users)
	fmt.Printf("  Groups:      %d\n", res.Groups)
	fmt.Printf("  Memberships: %d\n", res.Memberships)
	if res.Duplicates > 0 {
		fmt.Printf("  Merged duplicate identities: %d\n", res.Duplicates)
	}
	if len(res.MappingErrors) > 0 {
		fmt.Printf("  Mapping errors: %d\n", len(res.MappingErrors))
		for _, me := range res.MappingErrors {
			fmt.Printf("    - %s: %s\n", me.Entity, me.Message)
		}
	}
	for _, pe := range res.PushErrors {
		fmt.Printf("  Error: %s\n", pe)
	}
}
