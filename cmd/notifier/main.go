package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/email"
	"github.com/example/ec-storefront/internal/infrastructure/kafka"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/notification"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadNotifier()
	if err != nil {
		log.Fatalf("[Notifier] %v", err)
	}

	log.Println("[Notifier] ========================================")
	log.Println("[Notifier] Storefront - Email Notification Service")
	log.Println("[Notifier] ========================================")
	log.Printf("[Notifier] Kafka: %v", cfg.Kafka.Brokers)
	log.Printf("[Notifier] Topic: %s", cfg.Kafka.Topic)
	log.Printf("[Notifier] Group: %s", cfg.ConsumerGroup)
	log.Printf("[Notifier] SMTP: %s:%s", cfg.SMTPHost, cfg.SMTPPort)
	log.Printf("[Notifier] From: %s", cfg.SMTPFrom)

	// The store is only read, to resolve recipients.
	ds, err := store.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("[Notifier] Failed to open store: %v", err)
	}
	defer ds.Close(context.Background())

	emailSvc := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	handler := notification.NewHandler(emailSvc, ds)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.ConsumerGroup)
	defer consumer.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Println("[Notifier] Starting event consumer...")
		if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && ctx.Err() == nil {
			log.Printf("[Notifier] Consumer error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Notifier] Shutting down...")
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Println("[Notifier] Consumer did not stop in time")
	}
}
