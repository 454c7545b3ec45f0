package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gitlab.ozon.dev/pupkingeorgij/dispatch/internal/config"
	"gitlab.ozon.dev/pupkingeorgij/dispatch/internal/dispatch"
	"gitlab.ozon.dev/pupkingeorgij/dispatch/internal/feed"
	"gitlab.ozon.dev/pupkingeorgij/dispatch/internal/hub"
	"gitlab.ozon.dev/pupkingeorgij/dispatch/internal/logger"
	"gitlab.ozon.dev/pupkingeorgij/dispatch/internal/order"
	"gitlab.ozon.dev/pupkingeorgij/dispatch/internal/server"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Debug)
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var producer feed.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = feed.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.Info("kafka feed enabled",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic),
		)
	} else {
		producer = feed.NewConsoleProducer(log)
	}
	orderFeed := feed.New(producer, log)

	orders := order.NewStore()
	locations := order.NewLocationCache()
	rooms := hub.New(log)
	dispatcher := dispatch.New(orders, locations, rooms, orderFeed, log)
	srv := server.New(orders, dispatcher, log)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		orderFeed.Run(gctx)
		return nil
	})

	g.Go(func() error {
		return srv.Run(cfg.Port)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("relay exited with error", zap.Error(err))
	}

	orderFeed.Shutdown()
	log.Info("relay stopped")
}
