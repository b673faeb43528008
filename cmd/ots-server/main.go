package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/signalsfoundry/plant-ots/core"
	"github.com/signalsfoundry/plant-ots/internal/api"
	"github.com/signalsfoundry/plant-ots/internal/logging"
	"github.com/signalsfoundry/plant-ots/internal/observability"
	"github.com/signalsfoundry/plant-ots/model"
	"github.com/signalsfoundry/plant-ots/session"
)

func main() {
	httpAddr := flag.String("http-addr", ":8080", "TCP address the HTTP API listens on")
	columnPath := flag.String("column-config", "", "optional column config JSON (defaults are built in)")
	exchangerPath := flag.String("exchanger-config", "", "optional heat exchanger config JSON (defaults are built in)")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	collector, err := observability.NewCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	configs, err := loadConfigs(*columnPath, *exchangerPath)
	if err != nil {
		log.Error(ctx, "failed to load plant configs", logging.String("error", err.Error()))
		os.Exit(1)
	}

	manager := session.NewManager(log, collector)
	server := api.NewServer(manager, configs, collector, log)

	srv := &http.Server{
		Addr:              *httpAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info(ctx, "starting training server",
		logging.String("addr", *httpAddr),
		logging.Int("plants", len(configs)))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "http server exited", logging.String("error", err.Error()))
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn(ctx, "http shutdown failed", logging.String("error", err.Error()))
	}
}

func loadConfigs(columnPath, exchangerPath string) (map[model.PlantType]*model.PlantConfig, error) {
	configs := make(map[model.PlantType]*model.PlantConfig, 2)

	load := func(t model.PlantType, path string) error {
		cfg, err := core.DefaultConfigFor(t)
		if path != "" {
			cfg, err = core.LoadPlantConfigFile(path)
		}
		if err != nil {
			return err
		}
		configs[cfg.Type] = cfg
		return nil
	}

	if err := load(model.PlantColumn, columnPath); err != nil {
		return nil, err
	}
	if err := load(model.PlantExchanger, exchangerPath); err != nil {
		return nil, err
	}
	return configs, nil
}
