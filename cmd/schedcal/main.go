package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"schedcal/internal/config"
	"schedcal/internal/holiday"
	appLog "schedcal/internal/log"
	"schedcal/internal/notify"
	"schedcal/internal/store"
	"schedcal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	debug      bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		if conf == nil {
			appLog.Error("failed to load config", err, "config_path", flags.configPath)
			os.Exit(1)
		}
		// Defaults are usable even when they could not be written out.
		appLog.Warn("failed to save default config; continuing with defaults", "config_path", flags.configPath, "err", err)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	level := appLog.ParseLevel(conf.LogLevel)
	if flags.debug {
		level = appLog.LevelDebug
	}
	appLog.SetLevel(level)

	appLog.Info("schedcal starting", "version", "0.1.0")
	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"data_path", conf.DataPath,
		"notify_schedule", conf.NotifySchedule,
		"overlap_horizon_days", conf.OverlapHorizonDays,
		"holiday_overrides", len(conf.Holidays),
		"log_level", level,
	)

	st, err := store.Open(conf.DataPath)
	if err != nil {
		appLog.Error("failed to open event store", err, "path", conf.DataPath)
		os.Exit(1)
	}
	holidays, err := holiday.New(conf.Holidays)
	if err != nil {
		appLog.Error("invalid holiday overrides", err)
		os.Exit(1)
	}
	tracker := notify.NewTracker()
	srv := web.NewServer(conf, st, holidays, tracker)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if _, err := sched.AddFunc(conf.NotifySchedule, func() {
		for _, n := range srv.PollNotifications() {
			appLog.Info("notification", "id", n.EventID, "date", n.Date, "message", n.Message)
		}
	}); err != nil {
		appLog.Error("failed to schedule notification poller", err, "schedule", conf.NotifySchedule)
		os.Exit(1)
	}
	sched.Start()

	httpSrv := &http.Server{
		Addr:              conf.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		appLog.Info("signal received, shutting down")
	case err := <-errCh:
		if err != nil {
			appLog.Error("HTTP server failed", err, "listen", conf.Listen)
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("HTTP shutdown failed", err)
	}
	<-sched.Stop().Done()

	appLog.Info("schedcal exiting")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/schedcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
