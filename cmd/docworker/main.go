package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/docworker/internal/common"
	"github.com/ternarybob/docworker/internal/config"
	"github.com/ternarybob/docworker/internal/coordinator"
	"github.com/ternarybob/docworker/internal/ledger"
	"github.com/ternarybob/docworker/internal/objectstore"
	"github.com/ternarybob/docworker/internal/pipeline/steps"
	"github.com/ternarybob/docworker/internal/queue"
)

var (
	configPath  = flag.String("config", "docworker.yaml", "Path to the YAML configuration file")
	workdir     = flag.String("workdir", "", "Base directory job workspaces are materialized under (defaults to the OS temp dir)")
	showVersion = flag.Bool("version", false, "Print version information")
)

func main() {
	defer common.RecoverWithCrashFile()

	flag.Parse()
	if flag.NArg() > 0 {
		*configPath = flag.Arg(0)
	}
	if flag.NArg() > 1 {
		*workdir = flag.Arg(1)
	}

	if *showVersion {
		fmt.Printf("docworker version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file -> env)
	// 2. Initialize logger
	// 3. Print banner
	// 4. Wire dependencies
	// 5. Run the listener until a shutdown signal arrives

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "docworker: loading config: %v\n", err)
		os.Exit(1)
	}

	logger := common.SetupLogger(cfg)
	common.InstallCrashHandler("./logs")
	common.PrintBanner(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGABRT)
	defer stop()

	store, err := objectstore.New(ctx, cfg.S3, cfg.Experimental.MoreAppsEnabled, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize object store client")
	}
	if err := store.EnsureBucket(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure document bucket exists")
	}

	if err := ledger.Migrate(cfg.Database.ConnectionString); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply ledger schema migrations")
	}

	led, err := ledger.Connect(ctx, cfg.Database.ConnectionString, cfg.Database.QueueChannel, cfg.Database.ConnectionTimeout, cfg.Database.QueueTimeout, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to the job ledger")
	}
	defer led.Close(context.Background())

	tenants, err := ledger.NewTenantCache(led, cfg.Documents.TenantCacheTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize tenant config cache")
	}
	defer tenants.Close()

	steps.Configure(cfg.Externals)

	jobWorkdir := *workdir
	if jobWorkdir == "" {
		jobWorkdir = os.TempDir()
	}

	coord := coordinator.New(led, store, tenants, cfg, logger, jobWorkdir)
	listener := queue.New(led, logger, coord.Handle)

	logger.Info().Str("workdir", jobWorkdir).Msg("docworker ready - listening for jobs")

	runErr := make(chan error, 1)
	common.SafeGoWithContext(ctx, logger, "queue-listener", func() {
		runErr <- listener.Run(ctx)
	})

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-runErr:
		if err != nil {
			logger.Error().Err(err).Msg("queue listener exited with an error")
		}
	}

	common.PrintShutdownBanner(logger)
	common.Stop()
}
