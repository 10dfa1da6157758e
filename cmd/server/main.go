package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"revision-history-server/internal/config"
	"revision-history-server/internal/events"
	"revision-history-server/internal/handler"
	"revision-history-server/internal/metrics"
	"revision-history-server/internal/middleware"
	"revision-history-server/internal/notify"
	"revision-history-server/internal/repository"
	"revision-history-server/internal/service"
	"revision-history-server/internal/websocket"
	"revision-history-server/pkg/logger"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Server.Env)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := kivik.New("couch", cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to CouchDB: %w", err)
	}
	defer client.Close()

	if err := ensureDatabase(ctx, client, cfg.Database.Name, log); err != nil {
		return err
	}

	if err := repository.EnsureRevisionIndexes(ctx, client, cfg.Database.Name); err != nil {
		return err
	}

	revisionRepo := repository.NewRevisionRepository(client, cfg.Database.Name)
	itemRepo := repository.NewItemRepository(client, cfg.Database.Name)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	wsManager := websocket.NewManager(websocket.ManagerOptions{
		MaxConnPerUser: cfg.WebSocket.MaxConnPerUser,
		MaxMessageSize: cfg.WebSocket.MaxMessageSize,
		WriteWait:      cfg.WebSocket.WriteWait,
		PongWait:       cfg.WebSocket.PongWait,
		PingPeriod:     cfg.WebSocket.PingPeriod,
	}, log.With("component", "websocket"))
	go wsManager.Run(ctx)

	timer := service.NewTimer()
	authHTTPService := service.NewAuthHTTPService(cfg.AuthServer.URL, cfg.AuthServer.Timeout)

	var notifier service.RevisionNotifier = wsManager

	redisClient, err := notify.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()

		relay := notify.NewRelay(redisClient, cfg.Redis.NotifyChannel, wsManager, log.With("component", "relay"), m)
		go func() {
			if err := relay.Run(ctx); err != nil {
				log.Error("notification relay stopped", "error", err)
			}
		}()
		notifier = relay
		log.Info("relaying notifications through redis", "channel", cfg.Redis.NotifyChannel)
	}

	revisionService := service.NewRevisionService(revisionRepo, itemRepo, authHTTPService, timer, notifier, log.With("component", "revisions"), m)
	eventProcessor := service.NewItemEventProcessor(itemRepo, revisionService)
	authService := service.NewAuthService(
		service.NewAuthResponseFactoryResolver(log.With("component", "auth")),
		cfg.JWT.Secret,
		cfg.JWT.Expiration,
		cfg.JWT.RefreshTokenExpiration,
		timer,
	)

	if cfg.Kafka.Enabled() {
		consumer, err := events.NewConsumer(cfg.Kafka, eventProcessor, log.With("component", "kafka"))
		if err != nil {
			return err
		}
		go func() {
			if err := consumer.Run(ctx); err != nil {
				log.Error("kafka consumer stopped", "error", err)
			}
		}()
		log.Info("consuming item events", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.ItemEventTopic)
	}

	revisionHandler := handler.NewRevisionHandler(revisionService, log)
	authHandler := handler.NewAuthHandler(authService, log)
	eventHandler := handler.NewEventHandler(eventProcessor, log)
	wsHandler := handler.NewWebSocketHandler(wsManager, authService, log)
	healthHandler := handler.NewHealthHandler(func(ctx context.Context) error {
		ok, err := client.Ping(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("couchdb is not ready")
		}
		return nil
	})

	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware(log.With("component", "http")))
	r.Use(middleware.CORSMiddleware(cfg.CORS))

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/refresh", authHandler.Refresh).Methods("POST", "OPTIONS")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))

	protected.HandleFunc("/items/{itemUuid}/revisions", revisionHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/items/{itemUuid}/revisions/{uuid}", revisionHandler.Get).Methods("GET", "OPTIONS")

	internal := r.PathPrefix("/internal").Subrouter()
	internal.Use(middleware.InternalAuthMiddleware(cfg.Internal.APISecret))

	internal.HandleFunc("/events/item-changed", eventHandler.ItemChanged).Methods("POST")
	internal.HandleFunc("/events/item-duplicated", eventHandler.ItemDuplicated).Methods("POST")

	r.HandleFunc("/ws", wsHandler.HandleConnection)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods("GET")
	r.HandleFunc("/health", healthHandler.Health).Methods("GET")
	r.HandleFunc("/", healthHandler.Root).Methods("GET")

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting revision history server", "addr", addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

func ensureDatabase(ctx context.Context, client *kivik.Client, name string, log *slog.Logger) error {
	exists, err := client.DBExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}

	if !exists {
		if err := client.CreateDB(ctx, name); err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
		log.Info("created database", "name", name)
	}

	return nil
}
