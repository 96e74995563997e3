package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pizzapap/internal/config"
	"pizzapap/internal/database"
	"pizzapap/internal/logger"
	"pizzapap/internal/messaging"
	"pizzapap/internal/models"
	"pizzapap/internal/services/notification"
	"pizzapap/internal/services/order"
	"pizzapap/internal/services/session"
	"pizzapap/internal/services/tracking"
)

func main() {
	var (
		mode       = flag.String("mode", "", "Service mode (storefront, notification-subscriber)")
		port       = flag.Int("port", 0, "HTTP port, overrides storefront.port")
		configPath = flag.String("config", "config.yaml", "Path to the configuration file")
		prefetch   = flag.Int("prefetch", 1, "RabbitMQ prefetch count")
	)
	flag.Parse()

	if *mode == "" {
		fmt.Fprintf(os.Stderr, "Error: --mode flag is required\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Storefront.Port = *port
	}

	log := logger.New(*mode)
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode": *mode,
		"port": cfg.Storefront.Port,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "storefront":
		err = runStorefront(ctx, cfg, log)
	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, log, *prefetch)
	default:
		log.Error("validation_failed", fmt.Sprintf("Unknown mode: %s", *mode), requestID, nil, nil)
		os.Exit(1)
	}

	if err != nil {
		log.Error("service_failed", fmt.Sprintf("%s failed", *mode), requestID, err, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

// runStorefront serves the checkout and order history API
func runStorefront(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	db, err := database.Connect(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, cfg.Storefront.MigrationsPath); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	conn, err := messaging.Connect(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	store := database.NewOrderStore(db, models.AccountID(cfg.Storefront.StoreAccount), cfg.Storefront.SignupCredit)

	publisher := messaging.NewPublisher(conn, log)
	sessions := session.NewProvider(store)

	checkout := order.NewService(store, store, publisher, log)
	history := tracking.NewService(store, publisher, log)

	mux := http.NewServeMux()
	order.NewHandler(checkout, sessions, db, log).RegisterRoutes(mux)
	tracking.NewHandler(history, sessions, log).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Storefront.Port),
		Handler:           session.Middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("service_started", fmt.Sprintf("Storefront started on port %d", cfg.Storefront.Port), "startup", map[string]interface{}{
			"port":          cfg.Storefront.Port,
			"store_account": cfg.Storefront.StoreAccount,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	}

	log.Info("graceful_shutdown", "Shutting down HTTP server", "", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

// runNotificationSubscriber prints order events until interrupted
func runNotificationSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	conn, err := messaging.Connect(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	consumerTag := fmt.Sprintf("notification-subscriber-%d", os.Getpid())
	consumer := messaging.NewConsumer(conn, log, messaging.QueueNotifications, consumerTag, prefetch)

	return notification.NewSubscriber(consumer, os.Stdout, log).Start(ctx)
}
