package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-cart-service/config"
	"github.com/fekuna/omnipos-cart-service/internal/inventory"
	"github.com/fekuna/omnipos-cart-service/internal/loyalty"
	"github.com/fekuna/omnipos-cart-service/internal/pricing"
	"github.com/fekuna/omnipos-cart-service/internal/promotion"
	"github.com/fekuna/omnipos-cart-service/internal/session"
	"github.com/fekuna/omnipos-cart-service/pkg/database/mysql"
	"github.com/fekuna/omnipos-cart-service/pkg/logger"
	"github.com/fekuna/omnipos-cart-service/pkg/middleware"

	cartUCPkg "github.com/fekuna/omnipos-cart-service/internal/cart/usecase"

	invRepoPkg "github.com/fekuna/omnipos-cart-service/internal/inventory/repository"
	invSeed "github.com/fekuna/omnipos-cart-service/internal/inventory/seed"
	invUCPkg "github.com/fekuna/omnipos-cart-service/internal/inventory/usecase"

	promoPub "github.com/fekuna/omnipos-cart-service/internal/promotion/publisher"
	sessionH "github.com/fekuna/omnipos-cart-service/internal/session/handler"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Load Catalog
	products, err := invSeed.Load(cfg.Catalog.SeedPath)
	if err != nil {
		appLogger.Fatal("Could not load catalog seed", zap.Error(err))
	}
	catalogRepo := invRepoPkg.NewMemoryRepository(products)
	appLogger.Info("Catalog loaded", zap.Int("products", len(products)), zap.String("seed", cfg.Catalog.SeedPath))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4. Initialize Movement Journal
	var movementRepo inventory.MovementRepository = invRepoPkg.NewMemoryMovementRepository()
	if cfg.MySQL.DSN != "" {
		db, err := mysql.NewMySQL(&mysql.Config{
			DSN:             cfg.MySQL.DSN,
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.MySQL.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.MySQL.ConnMaxIdleTime) * time.Second,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to database", zap.Error(err))
		}
		defer db.Close()

		mysqlRepo := invRepoPkg.NewMySQLMovementRepository(db)
		if err := mysqlRepo.EnsureSchema(ctx); err != nil {
			appLogger.Fatal("Could not prepare stock_movements table", zap.Error(err))
		}
		movementRepo = mysqlRepo
		appLogger.Info("Connected to MySQL movement journal")
	} else {
		appLogger.Info("MYSQL_DSN not set, keeping stock movements in memory")
	}

	// 5. Initialize UseCases
	ledgerUC := invUCPkg.NewLedgerUseCase(catalogRepo, movementRepo, appLogger)
	cartUC := cartUCPkg.NewCartUseCase(ledgerUC, appLogger)

	core := session.NewCore(session.Deps{
		Ledger:            ledgerUC,
		Cart:              cartUC,
		Pricing:           pricing.NewEngine(pricing.DefaultPolicy()),
		Loyalty:           loyalty.NewEngine(loyalty.DefaultPolicy()),
		Logger:            appLogger,
		LowStockThreshold: cfg.Catalog.LowStockThreshold,
	})

	// 6. Initialize Observers
	core.Subscribe(promotion.NewLogObserver(appLogger))
	if len(cfg.Kafka.Brokers) > 0 {
		writer := promoPub.NewKafkaWriter(&promoPub.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		kafkaPublisher := promoPub.NewKafkaPublisher(writer, appLogger)
		defer kafkaPublisher.Close()
		core.Subscribe(kafkaPublisher)
		appLogger.Info("Publishing promotions to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	// 7. Start Promotion Scheduler
	var scheduler *promotion.Scheduler
	if cfg.Promotion.Enabled {
		scheduler = promotion.NewScheduler(promotion.Config{
			FlashMaxDelay:   cfg.Promotion.FlashMaxDelay,
			FlashInterval:   cfg.Promotion.FlashInterval,
			FlashRate:       decimal.NewFromFloat(cfg.Promotion.FlashRate),
			SuggestMaxDelay: cfg.Promotion.SuggestMaxDelay,
			SuggestInterval: cfg.Promotion.SuggestInterval,
			SuggestRate:     decimal.NewFromFloat(cfg.Promotion.SuggestRate),
		}, catalogRepo, cartUC, core.Dispatch, core.Notify, appLogger)
		scheduler.Start(ctx)
		appLogger.Info("Promotion scheduler started",
			zap.Duration("flash_interval", cfg.Promotion.FlashInterval),
			zap.Duration("suggest_interval", cfg.Promotion.SuggestInterval),
		)
	}

	// 8. Start gRPC Server
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(middleware.ContextInterceptor(appLogger)),
		grpc.StreamInterceptor(middleware.StreamContextInterceptor(appLogger)),
	)

	// Register Services
	cartHandler := sessionH.NewCartHandler(core, appLogger)
	sessionH.RegisterCartServiceServer(grpcServer, cartHandler)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(sessionH.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	// Register Reflection
	reflection.Register(grpcServer)

	appLogger.Info("Starting gRPC server", zap.String("port", port))

	// Graceful Shutdown
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	if scheduler != nil {
		scheduler.Stop()
	}
	cartHandler.Close()
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}
