package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/khoahotran/cvnova/adapters/event"
	"github.com/khoahotran/cvnova/adapters/persistence"
	analyticsUC "github.com/khoahotran/cvnova/internal/application/usecase/analytics"
	"github.com/khoahotran/cvnova/internal/config"
	"github.com/khoahotran/cvnova/pkg/logger"
)

func main() {
	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Starting CVNova view worker...")

	if len(cfg.Kafka.Brokers) == 0 {
		appLogger.Fatal("Worker needs kafka.brokers", nil)
	}

	store, closeStore, err := persistence.OpenStore(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot open store", err, zap.String("driver", cfg.Store.Driver))
	}
	defer closeStore()

	counters := persistence.NewCounters(store)
	recordViewUC := analyticsUC.NewRecordViewUseCase(counters, appLogger)

	reader := event.NewViewEventsReader(cfg)
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := event.NewViewConsumer(reader, recordViewUC, appLogger).Run(ctx); err != nil {
		appLogger.Error("View consumer stopped", err)
	}
	appLogger.Info("Worker stopped")
}
