package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/actionsum/activitymon/internal/commands"
	"github.com/actionsum/activitymon/internal/config"
	"github.com/actionsum/activitymon/internal/daemon"
	"github.com/actionsum/activitymon/internal/database"
	"github.com/actionsum/activitymon/internal/events"
	"github.com/actionsum/activitymon/internal/logging"
	"github.com/actionsum/activitymon/internal/reporter"
	"github.com/actionsum/activitymon/internal/state"
	"github.com/actionsum/activitymon/internal/tracker"
	"github.com/actionsum/activitymon/internal/web"
	"github.com/actionsum/activitymon/pkg/detector"
)

const daemonChildEnv = "ACTIVITYMON_DAEMON_CHILD"

func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.port > 0 {
		cfg.Web.Port = opts.port
	}
	return cfg, nil
}

// defaultDaemonLog is where a background daemon logs when no file is set.
func defaultDaemonLog() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("%s-%d.log", appName, os.Getuid()))
}

func startDaemon(opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		return errors.Wrap(err, "failed to check daemon status")
	}
	if running {
		return fmt.Errorf("daemon is already running (PID: %d)", pid)
	}

	if cfg.Log.File == "" {
		cfg.Log.File = defaultDaemonLog()
	}

	if os.Getenv(daemonChildEnv) != "1" {
		pid, err := daemonize(cfg.Log.File)
		if err != nil {
			return err
		}
		fmt.Printf("Daemon started successfully (PID: %d)\n", pid)
		fmt.Printf("Web API available at: http://%s\n", cfg.Address())
		fmt.Printf("Logs: %s\n", cfg.Log.File)
		return nil
	}

	return runDaemon(cfg, opts, dm)
}

func runForeground(opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		return errors.Wrap(err, "failed to check daemon status")
	}
	if running {
		return fmt.Errorf("daemon is already running (PID: %d)", pid)
	}

	return runDaemon(cfg, opts, dm)
}

// runDaemon wires every component and blocks until SIGINT or SIGTERM.
func runDaemon(cfg *config.Config, opts *options, dm *daemon.Daemon) error {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		File:        cfg.Log.File,
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	var (
		journal commands.Journal
		lister  web.ErrorLister
	)
	if cfg.Database.Enabled {
		db, err := database.Connect(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Initialize(); err != nil {
			return err
		}
		repo := database.NewRepository(db, logger)
		if cfg.Database.Retention > 0 {
			pruned, err := repo.DeleteOlderThan(time.Now().Add(-cfg.Database.Retention))
			if err != nil {
				logger.Warn("failed to prune error journal", zap.Error(err))
			} else if pruned > 0 {
				logger.Info("pruned error journal", zap.Int64("deleted", pruned))
			}
		}
		journal, lister = repo, repo
	}

	probe := detector.New()
	logger.Info("window probe initialized",
		zap.String("platform", probe.Platform()),
		zap.String("session_type", detector.SessionType()))

	if err := dm.WritePID(); err != nil {
		return err
	}
	defer func() { _ = dm.RemovePID() }()

	st := state.New()
	rep := reporter.New(reporter.Config{
		BaseURL: cfg.Reporter.BaseURL,
		Timeout: cfg.Reporter.Timeout,
	}, logger)
	cmds := commands.New(st, probe, rep, journal, logger)

	bus := events.NewBus(logger)
	hub := events.NewHub(logger)
	defer hub.Close()
	bus.Register(hub)

	if cfg.Events.RedisURL != "" {
		sink, err := events.NewRedisSink(cfg.Events.RedisURL, cfg.Events.RedisChannel)
		if err != nil {
			return err
		}
		defer sink.Close()
		bus.Register(sink)
		logger.Info("publishing activity updates to redis", zap.String("channel", sink.Channel()))
	}

	if cfg.Tracker.AutoReport {
		bus.Register(commands.NewAutoReporter(cmds))
	}

	if opts.userID != "" || opts.teamID != "" {
		if _, err := cmds.StartTracking(ctx, opts.userID, opts.teamID, opts.token); err != nil {
			return errors.Wrap(err, "failed to start tracking")
		}
	}

	trackerSvc := tracker.NewService(cfg, st, probe, bus, journal, logger)
	webServer := web.NewServer(cfg, web.Deps{
		Commands: cmds,
		State:    st,
		Probe:    probe,
		Journal:  lister,
		Stream:   hub,
		Events:   bus,
		Version:  version,
	}, logger, 0)

	go func() {
		if err := webServer.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("web server error", zap.Error(err))
			stop()
		}
	}()

	trackerDone := make(chan struct{})
	go func() {
		defer close(trackerDone)
		if err := trackerSvc.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("tracker error", zap.Error(err))
			stop()
		}
	}()

	logger.Info("activitymon daemon started",
		zap.Int("pid", os.Getpid()),
		zap.String("web", "http://"+webServer.GetAddress()))
	logger.Debug(cfg.String())

	<-ctx.Done()
	logger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	trackerSvc.Stop()
	<-trackerDone

	if err := webServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error shutting down web server", zap.Error(err))
	}

	logger.Info("daemon stopped successfully")
	return nil
}

func stopDaemon(opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	dm := daemon.New(cfg.Daemon.PIDFile)

	running, pid, err := dm.IsRunning()
	if err != nil {
		return errors.Wrap(err, "failed to check daemon status")
	}
	if !running {
		fmt.Println("Daemon is not running")
		return nil
	}

	fmt.Printf("Stopping daemon (PID: %d)...\n", pid)
	if err := dm.Stop(); err != nil {
		return errors.Wrap(err, "failed to stop daemon")
	}

	fmt.Println("Daemon stopped successfully")
	return nil
}
