package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"clubsync/internal/cache"
	"clubsync/internal/config"
	appLog "clubsync/internal/log"
	"clubsync/internal/sched"
	"clubsync/internal/store"
	"clubsync/internal/syncer"
	"clubsync/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	once       bool
	seed       bool
	clubName   string
	clubURL    string
	debug      bool
}

func main() {
	appLog.Info("clubsync starting", "version", "1.0.0")

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"sync_cron", conf.SyncCron,
		"feed_timeout_seconds", conf.FeedTimeoutSeconds,
		"cache_ttl_seconds", conf.CacheTTLSeconds,
		"horizon_days", conf.HorizonDays,
		"roster_file", conf.RosterFile,
		"once", flags.once,
		"seed", flags.seed,
	)

	st, err := store.Connect(os.Getenv("DB_URL"))
	if err != nil {
		appLog.Error("failed to connect to database", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := st.EnsureDefaultCategories(ctx); err != nil {
		appLog.Error("failed to seed default categories", err)
		os.Exit(1)
	}

	responseCache := cache.New(time.Duration(conf.CacheTTLSeconds) * time.Second)
	feeds := syncer.NewICSFeedSource(time.Duration(conf.FeedTimeoutSeconds)*time.Second, conf.HorizonDays)
	engine := syncer.New(st, feeds, responseCache)

	// One-shot operator modes run synchronously and exit.
	switch {
	case flags.clubName != "" || flags.clubURL != "":
		if flags.clubName == "" || flags.clubURL == "" {
			appLog.Error("single-club sync needs both -club and -url", errors.New("missing flag"))
			os.Exit(2)
		}
		stats, serr := engine.SyncOne(ctx, flags.clubName, flags.clubURL)
		if serr != nil {
			appLog.Error("club sync failed", serr, "club", flags.clubName)
			os.Exit(1)
		}
		appLog.Info("club sync complete", "club", flags.clubName,
			"created", stats.Created, "refreshed", stats.Refreshed,
			"collaborations", stats.Collaborations, "pruned", stats.Pruned)
		return

	case flags.seed:
		result, serr := engine.SyncRoster(ctx, conf.RosterFile)
		if serr != nil {
			appLog.Error("roster sync failed", serr, "roster_file", conf.RosterFile)
			os.Exit(1)
		}
		appLog.Info("roster sync finished", "result", result.String())
		return

	case flags.once:
		result, serr := engine.SyncAll(ctx)
		if serr != nil {
			appLog.Error("sync run failed", serr)
			os.Exit(1)
		}
		appLog.Info("sync run finished", "result", result.String())
		return
	}

	// Long-running mode: scheduler + serving layer.
	scheduler, err := sched.Start(conf.SyncCron, conf.Timezone, func(runCtx context.Context) {
		if _, serr := engine.SyncAll(runCtx); serr != nil {
			appLog.Error("scheduled sync run failed", serr)
		}
	})
	if err != nil {
		// Misconfigured scheduling disables sync but must not take the
		// serving layer down; manual sync stays available.
		appLog.Error("scheduler disabled", err, "schedule", conf.SyncCron, "timezone", conf.Timezone)
	}

	server := web.New(st, responseCache, engine, os.Getenv("SYNC_SECRET"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Listen(conf.Listen)
	}()
	appLog.Info("serving", "listen", "http://"+conf.Listen)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		appLog.Info("signal received, shutting down", "signal", sig.String())
	case err := <-errCh:
		appLog.Error("server stopped", err)
	}

	if scheduler != nil {
		scheduler.Stop()
	}
	if err := server.Shutdown(); err != nil {
		appLog.Error("server shutdown failed", err)
	}
	appLog.Info("clubsync exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/clubsync/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one sync of all configured clubs and exit")
	flag.BoolVar(&cfg.seed, "seed", false, "Sync every club in the roster file and exit")
	flag.StringVar(&cfg.clubName, "club", "", "Sync a single club by name (requires -url) and exit")
	flag.StringVar(&cfg.clubURL, "url", "", "Feed URL for -club")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
