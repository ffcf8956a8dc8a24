package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/consumer"
	"github.com/fjod/go_cart/storefront/internal/discount"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/loyalty"
	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/fjod/go_cart/storefront/internal/publisher"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/pkg/circuitbreaker"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const serviceName = "storefront"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(serviceName, cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("storefront stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres: orders, outbox, loyalty
	repo, err := repository.NewPostgresRepository(&repository.Credentials{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
	})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer repo.Close()
	if err := repo.RunMigrations(); err != nil {
		return fmt.Errorf("postgres migrations: %w", err)
	}
	log.Info("connected to postgres", "host", cfg.DBHost, "db", cfg.DBName)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	redisCache := cache.NewRedisCache(redisClient, cfg.CartTTL)

	lookup, closeCatalog, err := buildCatalog(cfg, log)
	if err != nil {
		return err
	}
	defer closeCatalog()

	breaker := circuitbreaker.DefaultConfig("catalog")
	products := catalog.NewCachedLookup(catalog.NewBreakerLookup(lookup, breaker, log), redisCache, log)

	store, closeStore, err := buildDiscountStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	shipping, err := cfg.ShippingTable()
	if err != nil {
		return err
	}
	discountDefaults, err := cfg.DiscountDefaults()
	if err != nil {
		return err
	}

	registry := discount.NewRegistry(store, discount.WithLogger(log))
	carts := service.NewCartService(redisCache, products, log)
	accrual := loyalty.NewAccrual(cfg.LoyaltyRate)
	checkout := service.NewCheckoutService(carts, repo, repo, registry,
		pricing.NewCalculator(shipping, cfg.Currency),
		accrual,
		log)
	discounts := service.NewDiscountService(registry, discountDefaults, log)

	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		poller := publisher.NewOutboxPoller(repo, log, publisher.DefaultTopic, brokers...)
		defer poller.Close()
		go poller.Run(ctx)
		log.Info("outbox poller started", "brokers", brokers, "topic", publisher.DefaultTopic)

		loyaltyConsumer := consumer.NewLoyaltyConsumer(repo, accrual, log, publisher.DefaultTopic, brokers...)
		defer loyaltyConsumer.Close()
		go loyaltyConsumer.Run(ctx)
	} else {
		log.Warn("KAFKA_BROKERS not set, order events stay in the outbox")
	}

	grpcServer, err := serveGRPC(cfg, log, products)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: h.NewRouter(h.RouterDeps{
			Carts:          carts,
			Checkout:       checkout,
			Discounts:      discounts,
			RequestTimeout: cfg.RequestTimeout,
			Logger:         log,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("http server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	grpcServer.GracefulStop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("storefront exited")
	return nil
}

// buildCatalog returns the remote catalog when CATALOG_GRPC_ADDR is set, the local SQLite
// catalog otherwise.
func buildCatalog(cfg *config.Config, log *slog.Logger) (catalog.Lookup, func(), error) {
	if cfg.CatalogGRPCAddr != "" {
		conn, err := catalog.Dial(cfg.CatalogGRPCAddr)
		if err != nil {
			return nil, nil, fmt.Errorf("dial catalog: %w", err)
		}
		log.Info("using remote catalog", "addr", cfg.CatalogGRPCAddr)
		return catalog.NewGRPCLookup(conn, cfg.RequestTimeout), func() { conn.Close() }, nil
	}

	catalogRepo, err := repository.NewCatalogRepository(cfg.CatalogDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog db: %w", err)
	}
	if err := catalogRepo.RunMigrations(); err != nil {
		catalogRepo.Close()
		return nil, nil, fmt.Errorf("catalog migrations: %w", err)
	}
	log.Info("using sqlite catalog", "path", cfg.CatalogDBPath)
	return catalogRepo, func() { catalogRepo.Close() }, nil
}

// buildDiscountStore uses Mongo when MONGO_URI is set. The in-memory store is for
// single-instance development only.
func buildDiscountStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (discount.Store, func(), error) {
	if cfg.MongoURI == "" {
		log.Warn("MONGO_URI not set, discount codes are kept in memory")
		mem := discount.NewMemoryStore()
		return mem, mem.Close, nil
	}

	store, err := repository.OpenMongoDiscountStore(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		return nil, nil, err
	}
	log.Info("connected to mongodb", "db", cfg.MongoDBName)

	return store, func() {
		if err := store.Close(context.Background()); err != nil {
			log.Error("mongo disconnect failed", "error", err)
		}
	}, nil
}

func serveGRPC(cfg *config.Config, log *slog.Logger, products catalog.Lookup) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return nil, fmt.Errorf("grpc listen: %w", err)
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	catalog.RegisterServer(grpcServer, catalog.NewServer(products, log))

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	// Enable reflection for grpcurl/grpcui
	reflection.Register(grpcServer)

	go func() {
		log.Info("grpc server listening", "port", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("grpc serve failed", "error", err)
		}
	}()
	return grpcServer, nil
}

var (
	_ catalog.Lookup             = (*repository.CatalogRepository)(nil)
	_ service.OrderStore         = (*repository.PostgresRepository)(nil)
	_ service.ProfileStore       = (*repository.PostgresRepository)(nil)
	_ consumer.LoyaltyCreditor   = (*repository.PostgresRepository)(nil)
	_ publisher.OutboxRepository = (*repository.PostgresRepository)(nil)
	_ discount.Store             = (*repository.MongoDiscountStore)(nil)
)
