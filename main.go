package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storepos/api"
	"storepos/config"
	"storepos/controllers"
	"storepos/events"
	"storepos/handlers"
	"storepos/middleware"
	"storepos/routes"
	"storepos/service"
	"storepos/store"
	"storepos/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load(logger)
	if cfg.JWTSigningKey == "" {
		logger.Warn("JWT_SIGNING_KEY not set, token signatures are not verified")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, sales, closeStores := openStores(ctx, cfg, logger)
	defer closeStores()

	customers, closeCache := openCache(ctx, cfg, logger)
	defer closeCache()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	middleware.InitMetrics(registry)
	metrics := middleware.NewPOSMetrics(registry)

	bus := events.NewBus(logger)
	defer metrics.WatchAuth(bus)()
	bus.Subscribe(events.AuthChanged, func(e events.Event) {
		logger.Warn("storefront rejected cashier token", zap.String("cashier_id", e.CashierID))
	})

	svc := service.New(service.Deps{
		Sessions:       sessions,
		Sales:          sales,
		Customers:      customers,
		Storefront:     api.NewClient(cfg.StorefrontURL, cfg.UpstreamTimeout),
		Bus:            bus,
		Metrics:        metrics,
		Logger:         logger,
		AdvancePerUnit: cfg.AdvancePerUnit,
	})
	defer svc.Close()

	// Настройка временной зоны и планировщика задач
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, using UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		location = time.UTC
	}

	if cfg.MailEnabled() {
		mailer := utils.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.ReceiptFrom, cfg.ReceiptTo, location, logger)
		defer mailer.Subscribe(bus)()
	}

	scheduler, err := utils.StartSessionPurge(location, 5*time.Minute, cfg.SessionIdleTTL, svc, logger)
	if err != nil {
		logger.Fatal("failed to schedule session purge", zap.Error(err))
	}
	defer scheduler.Stop()

	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()
	r.Use(middleware.PrometheusMiddleware())

	// Настройка CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	routes.InitializeRoutes(r,
		controllers.NewCashierController(svc, cfg.UpstreamTimeout*2, logger),
		handlers.NewPOSHandler(svc, cfg.UpstreamTimeout, logger),
		[]byte(cfg.JWTSigningKey),
		registry,
	)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Info("POS service listening", zap.String("port", cfg.Port), zap.String("storefront", cfg.StorefrontURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStores uses MongoDB when MONGO_URI is set and in-memory stores otherwise.
func openStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.SessionStore, store.SalesJournal, func()) {
	if cfg.MongoURI == "" {
		logger.Warn("MONGO_URI not set, sessions and sales are kept in memory")
		return store.NewMemorySessions(), store.NewMemorySales(), func() {}
	}

	db, err := config.ConnectDatabase(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	sessions := store.NewMongoSessions(db)
	sales := store.NewMongoSales(db)

	indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sessions.CreateIndexes(indexCtx); err != nil {
		logger.Fatal("failed to create indexes", zap.Error(err))
	}
	if err := sales.CreateIndexes(indexCtx); err != nil {
		logger.Fatal("failed to create indexes", zap.Error(err))
	}
	logger.Info("connected to MongoDB", zap.String("database", cfg.MongoDB))

	return sessions, sales, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Client().Disconnect(ctx); err != nil {
			logger.Error("error disconnecting from MongoDB", zap.Error(err))
		}
	}
}

// openCache uses Redis when REDIS_ADDR is set; without it every lookup goes
// to the storefront.
func openCache(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.CustomerCache, func()) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, customer lookups are not cached")
		return store.NoopCache{}, func() {}
	}

	client, err := config.ConnectRedis(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	logger.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))
	return store.NewRedisCustomerCache(client, cfg.CustomerCacheTTL), func() {
		if err := client.Close(); err != nil {
			logger.Error("error closing Redis", zap.Error(err))
		}
	}
}
