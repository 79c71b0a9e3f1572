package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"SignalScanner/internal/api"
	"SignalScanner/internal/collector"
	"SignalScanner/internal/config"
	"SignalScanner/internal/model"
	"SignalScanner/internal/notifier"
	"SignalScanner/internal/recorder"
	"SignalScanner/internal/scan"
	"SignalScanner/internal/scheduler"
	"SignalScanner/internal/strategy"
	"SignalScanner/internal/universe"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.Info("SignalScanner starting...")

	// Load config
	config.LoadDotEnv(".env")
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("config validation: %v", err)
	}
	level, _ := logrus.ParseLevel(cfg.Log.Level)
	logrus.SetLevel(level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Price history
	provider := newProvider(cfg)
	logrus.Infof("data source: %s", provider.Name())
	fetcher := collector.NewHistoryFetcher(provider, cfg.DataSource.MaxRetries)
	registry := strategy.NewRegistry(fetcher)
	symbols := universe.NewFileSource(cfg.Universe.Path)

	// Scan history recorder
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			logrus.Warnf("init sqlite recorder failed, using noop: %v", err)
		} else {
			rec = sr
		}
	}
	defer rec.Close()

	// Completion notifiers
	var notifiers notifier.Multi
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn, err = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.DataSource.Proxy)
		if err != nil {
			logrus.Warnf("init telegram failed, notifications disabled: %v", err)
			tn = nil
		} else {
			notifiers = append(notifiers, tn)
		}
	}
	if cfg.Redis.Enabled {
		rp, err := notifier.NewRedisPublisher(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logrus.Warnf("init redis publisher failed: %v", err)
		} else {
			notifiers = append(notifiers, rp)
			defer rp.Close()
		}
	}

	manager := scan.NewManager(scan.Options{
		Registry: registry,
		Universe: symbols,
		Recorder: rec,
		Notifier: notifiers,
	})

	// Periodic scans
	sched := scheduler.NewScheduler(manager)
	if err := sched.RegisterAll(cfg.CronSpecs()); err != nil {
		logrus.Fatalf("register cron tasks: %v", err)
	}
	sched.Start()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		logrus.Info("telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		logrus.Info("RUN_ON_START enabled, starting every scan now")
		for _, t := range model.ScanTypes {
			sched.RunNow(t)
		}
	}

	// HTTP server
	if level < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewServer(manager, registry, symbols).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logrus.Infof("http server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("http server: %v", err)
		}
	}()

	logrus.Info("SignalScanner is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logrus.Info("shutdown signal received, stopping...")
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("http server forced to shutdown: %v", err)
	}

	manager.Close()
	cancel()
	logrus.Info("SignalScanner stopped")
}

func newProvider(cfg *config.Config) collector.Provider {
	switch cfg.DataSource.Provider {
	case config.ProviderAlpaca:
		a := cfg.DataSource.Alpaca
		return collector.NewAlpacaProvider(a.APIKey, a.APISecret, a.DataURL, a.Feed)
	case config.ProviderMock:
		m := collector.NewMockProvider()
		m.Price = 100
		return m
	default:
		return collector.NewYahooProvider(cfg.DataSource.Proxy)
	}
}
