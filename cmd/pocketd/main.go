package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/dd0wney/cluso-pockets/pkg/api"
	"github.com/dd0wney/cluso-pockets/pkg/config"
	"github.com/dd0wney/cluso-pockets/pkg/logging"
	"github.com/dd0wney/cluso-pockets/pkg/metrics"
	"github.com/dd0wney/cluso-pockets/pkg/notify"
	"github.com/dd0wney/cluso-pockets/pkg/server"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	modelDir := flag.String("model", "", "Model dump directory (overrides config)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.NewDefaultLogger().Error("failed to load configuration", logging.Error(err))
		os.Exit(1)
	}
	if *modelDir != "" {
		cfg.Model.Dir = *modelDir
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.Logging.Level))
	logging.SetDefaultLogger(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("pocketd stopped with error", logging.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger logging.Logger) error {
	logger.Info("pocketd starting",
		logging.Path(cfg.Model.Dir),
		logging.String("addr", cfg.Server.Addr),
		logging.Bool("strict_neighbors", cfg.Model.StrictNeighbors),
	)

	reg := metrics.NewRegistry()

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Notify.Addr != "" {
		pub, err := notify.NewPublisher(notify.PublisherConfig{
			Addr:     cfg.Notify.Addr,
			QueueLen: cfg.Notify.QueueLen,
			Logger:   logger,
			Metrics:  reg,
		})
		if err != nil {
			return err
		}
		defer pub.Close()
		notifier = pub
		logger.Info("notifications enabled", logging.String("addr", pub.Addr()))
	}

	srv, err := api.NewServer(api.Config{
		ModelDir:        cfg.Model.Dir,
		Delimiter:       cfg.Model.Delimiter,
		StrictNeighbors: cfg.Model.StrictNeighbors,
		CORSOrigin:      cfg.Server.CORSOrigin,
		ReloadPerMinute: cfg.Server.ReloadPerMinute,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
	},
		api.WithLogger(logger),
		api.WithMetrics(reg),
		api.WithNotifier(notifier),
	)
	if err != nil {
		return err
	}

	// A bad dump at startup still brings the server up: health reports
	// unhealthy until a reload succeeds.
	if _, err := srv.Reload(api.TriggerStartup); err != nil {
		logger.Warn("serving without a model", logging.Error(err))
	}

	gs := server.NewGracefulServer(cfg.Server.Addr, srv.Handler(), server.Options{
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Logger:          logger,
	})
	gs.SetReloadFunc(func() error {
		_, err := srv.Reload(api.TriggerSignal)
		return err
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.RunSystemMetrics(ctx, 15*time.Second)

	if err := gs.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("pocketd stopped")
	return nil
}
