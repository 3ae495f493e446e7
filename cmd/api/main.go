package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/example/ec-storefront/internal/api"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/event"
	"github.com/example/ec-storefront/internal/infrastructure/kafka"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/query"
	"github.com/example/ec-storefront/internal/telemetry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadAPI()
	if err != nil {
		log.Fatalf("[API] %v", err)
	}

	log.Println("[API] ========================================")
	log.Println("[API] Storefront API")
	log.Println("[API] ========================================")
	log.Printf("[API] Store: %s", cfg.Store.Driver)
	log.Printf("[API] Kafka enabled: %v", cfg.Kafka.Enabled)

	shutdownTracing, err := telemetry.Setup(ctx, "storefront-api", cfg.OTelEndpoint)
	if err != nil {
		log.Fatalf("[API] Failed to set up tracing: %v", err)
	}

	ds, err := store.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("[API] Failed to open store: %v", err)
	}

	var publisher event.Publisher = event.NopPublisher{}
	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		publisher = producer
		log.Printf("[API] Publishing events to %s on %v", cfg.Kafka.Topic, cfg.Kafka.Brokers)
	}

	// Initialize domain services
	productSvc := product.NewService(ds, publisher, cfg.ReviewMaxAttempts)
	orderSvc := order.NewService(ds, publisher, order.Policy{
		RequirePaymentBeforeDelivery: cfg.RequirePaymentBeforeDelivery,
	})
	userSvc := user.NewService(ds, publisher)

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// Initialize handlers
	cmdHandler := command.NewHandler(productSvc, orderSvc, userSvc)
	queryHandler := query.NewHandler(ds)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := api.NewRouter(
		api.NewHandlers(cmdHandler, queryHandler, cfg.ProductPageSize, cfg.TopProductsLimit),
		api.NewAuthHandlers(cmdHandler, queryHandler, jwtService, ds),
		jwtService,
		registry,
	)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("[API] Server started on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[API] HTTP shutdown: %v", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("[API] Kafka producer close: %v", err)
		}
	}
	if err := ds.Close(shutdownCtx); err != nil {
		log.Printf("[API] Store close: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("[API] Tracing shutdown: %v", err)
	}
}
