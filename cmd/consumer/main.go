package main

import (
	"context"
	"encoding/json"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/config"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/logger"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel).Named("consumer")
	defer func() { _ = log.Sync() }()

	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal("KAFKA_BROKERS is not set")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.GroupID,
		Topic:          cfg.Kafka.Topic,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		MaxWait:        3 * time.Second,
	})
	defer func() {
		if err := r.Close(); err != nil {
			log.Error("failed to close reader", zap.Error(err))
		}
	}()

	log.Info("consumer started",
		zap.String("topic", cfg.Kafka.Topic),
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("group", cfg.Kafka.GroupID))

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				log.Info("consumer stopped")
				return
			}
			log.Error("failed to read message", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		fields := []zap.Field{
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
			zap.ByteString("key", m.Key),
			zap.Time("timestamp", m.Time),
		}

		var event repository.InventoryEvent
		if err := json.Unmarshal(m.Value, &event); err != nil {
			log.Warn("undecodable event", append(fields, zap.ByteString("value", m.Value), zap.Error(err))...)
			continue
		}
		log.Info("inventory event", append(fields,
			zap.String("type", string(event.Type)),
			zap.Int64("bank_id", event.BankID),
			zap.Int64("order_id", event.OrderID),
			zap.Int64("unit_id", event.UnitID),
			zap.Int("lines", len(event.Lines)),
			zap.Time("occurred_at", event.OccurredAt))...)
	}
}
