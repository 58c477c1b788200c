package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/khoahotran/portfolio/adapters/event"
	"github.com/khoahotran/portfolio/internal/config"
	"github.com/khoahotran/portfolio/pkg/logger"
)

// The worker follows the content event stream and keeps an audit trail of
// every admin change in the log.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}
	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()

	consumer, err := event.NewKafkaConsumer(cfg, event.AuditLog(appLogger), appLogger)
	if err != nil {
		appLogger.Fatal("Cannot init Kafka consumer", err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLogger.Info("Worker listening for content events...")
	if err := consumer.Run(ctx); err != nil {
		appLogger.Error("Worker stopped", err)
	}
}
