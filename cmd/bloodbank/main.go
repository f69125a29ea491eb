package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/cache"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/config"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/kafka"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/logger"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository/memory"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository/postgresql"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/server"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/storage"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("service stopped with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("service stopped")
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	database, repos, warmBanks, closeDB, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()

	stock := cache.NewStockCache(repos.Donations, cfg.Stock.CacheTTL, log)
	if err := stock.LoadInitialData(ctx, warmBanks); err != nil {
		log.Warn("failed to warm stock cache", zap.Error(err))
	}

	stg := storage.NewStorage(database, repos, storage.Options{
		TxMaxAttempts:       cfg.TxMaxAttempts,
		EventsTopic:         cfg.Kafka.Topic,
		StockAlertThreshold: cfg.Stock.AlertThreshold,
		Stock:               stock,
	}, log)

	var producer kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer = kafka.NewWriterProducer(cfg.Kafka.Brokers, log)
	} else {
		producer = kafka.NewConsoleProducer(log)
	}
	publisher := kafka.NewPublisher(database, repos.Outbox, producer, kafka.PublisherConfig{
		PollInterval:    cfg.Outbox.PollInterval,
		BatchSize:       cfg.Outbox.BatchSize,
		MaxAttempts:     cfg.Outbox.MaxAttempts,
		ProcessingLease: cfg.Outbox.ProcessingLease,
	}, log)

	srv := server.New(stg, cfg.Audit, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, cfg.HTTPPort)
	})
	g.Go(func() error {
		publisher.Run(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		publisher.Shutdown()
		return nil
	})

	log.Info("service started",
		zap.String("port", cfg.HTTPPort),
		zap.String("storage", cfg.StorageDriver),
		zap.Strings("kafka_brokers", cfg.Kafka.Brokers))
	return g.Wait()
}

// openStorage returns the transaction source and repositories for the
// configured driver, plus the banks whose stock is worth warming.
func openStorage(ctx context.Context, cfg config.Config, log *zap.Logger) (db.TxBeginner, storage.Repositories, []int64, func(), error) {
	if cfg.StorageDriver == config.DriverMemory {
		store := memory.NewStore()
		bankID := store.AddBank("Demo Blood Bank")
		hospitalID := store.AddHospital("Demo Hospital", bankID)
		siteID := store.AddSite("Demo Collection Site", bankID)
		log.Info("in-memory storage seeded",
			zap.Int64("bank_id", bankID),
			zap.Int64("hospital_id", hospitalID),
			zap.Int64("site_id", siteID))

		repos := storage.Repositories{
			Donors:    memory.NewDonorRepo(store),
			Donations: memory.NewDonationRepo(store),
			Orders:    memory.NewOrderRepo(store),
			History:   memory.NewHistoryRepo(store),
			Directory: memory.NewDirectoryRepo(store),
			Outbox:    memory.NewOutboxTaskRepo(store),
		}
		return memory.NewDB(store), repos, []int64{bankID}, func() {}, nil
	}

	database, err := db.NewDb(ctx, cfg.Postgres)
	if err != nil {
		return nil, storage.Repositories{}, nil, nil, err
	}
	if err := db.Bootstrap(ctx, database); err != nil {
		database.GetPool().Close()
		return nil, storage.Repositories{}, nil, nil, err
	}

	repos := storage.Repositories{
		Donors:    postgresql.NewDonorRepo(database),
		Donations: postgresql.NewDonationRepo(database),
		Orders:    postgresql.NewOrderRepo(database),
		History:   postgresql.NewHistoryRepo(database),
		Directory: postgresql.NewDirectoryRepo(database),
		Outbox:    postgresql.NewOutboxTaskRepo(database),
	}
	return database, repos, nil, database.GetPool().Close, nil
}
