package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"hostelbook/internal/notifications"
	"hostelbook/pkg/config"
	"hostelbook/pkg/kafka"
	kafkaconfig "hostelbook/pkg/kafka/config"
	kafkamiddleware "hostelbook/pkg/kafka/middleware"
)

const ServiceName = "booking-notifier"

func main() {
	cfg := config.Load(ServiceName)

	kafkaCfg, err := kafkaconfig.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	notifier := notifications.NewNotifier(notifications.NewLogSink(cfg.Log), cfg.Log)
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.BookingEventsTopic,
		cfg.BookingEventsGroup,
		cfg.BookingEventsDLQ,
		notifier.Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	metrics := kafkamiddleware.NewMetrics()
	consumer.Use(kafkamiddleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(metrics.ConsumerMiddleware())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting booking notifier", "topic", cfg.BookingEventsTopic, "group", cfg.BookingEventsGroup)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped unexpectedly", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	snapshot := metrics.Snapshot()
	cfg.Log.Info("Booking notifier stopped", "metrics", snapshot)
}
