package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vtuhub/vtuhub-backend/api/routes"
	"github.com/vtuhub/vtuhub-backend/internal/config"
	"github.com/vtuhub/vtuhub-backend/internal/handlers"
	"github.com/vtuhub/vtuhub-backend/internal/logger"
	mongorepo "github.com/vtuhub/vtuhub-backend/internal/repositories/mongodb"
	"github.com/vtuhub/vtuhub-backend/internal/services"
	"github.com/vtuhub/vtuhub-backend/pkg/mongodb"
	"github.com/vtuhub/vtuhub-backend/pkg/smsrental"
	"github.com/vtuhub/vtuhub-backend/pkg/vtuapi"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("JWT secret is not configured")
	}

	zlog, err := logger.New(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		zlog.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			zlog.Error("error disconnecting from MongoDB", zap.Error(err))
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	// Repositories
	userRepo := mongorepo.NewUserRepository(db)
	txnRepo := mongorepo.NewTransactionRepository(db)
	inboxRepo := mongorepo.NewInboxRepository(db)
	smsOrderRepo := mongorepo.NewSMSOrderRepository(db)

	// Provider gateways
	vtuGateway := vtuapi.NewClient(cfg.VTU.BaseURL, cfg.VTU.APIKey, cfg.VTU.MockAPI)
	smsGateway := smsrental.NewClient(cfg.SMSRental.BaseURL, cfg.SMSRental.APIKey, cfg.SMSRental.MockAPI)

	// Services
	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo, txnRepo, inboxRepo, zlog)
	purchaseService := services.NewPurchaseService(userRepo, txnRepo, inboxRepo, vtuGateway, zlog)
	transactionService := services.NewTransactionService(txnRepo)
	inboxService := services.NewInboxService(inboxRepo, txnRepo)
	smsService := services.NewSMSRentalService(smsOrderRepo, inboxRepo, smsGateway, services.PollingConfig{
		InitialDelay: cfg.Poller.InitialDelay,
		Interval:     cfg.Poller.Interval,
		MaxAttempts:  cfg.Poller.MaxAttempts,
	}, zlog)

	// Handlers
	deps := routes.HandlerDependencies{
		AuthHandler:        handlers.NewAuthHandler(authService),
		UserHandler:        handlers.NewUserHandler(userService),
		PurchaseHandler:    handlers.NewPurchaseHandler(purchaseService),
		TransactionHandler: handlers.NewTransactionHandler(transactionService),
		InboxHandler:       handlers.NewInboxHandler(inboxService, inboxRepo, txnRepo, cfg.Poller.WatchInterval, zlog),
		SMSHandler:         handlers.NewSMSHandler(smsService),
	}

	router := routes.SetupRouter(cfg, zlog, deps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		zlog.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down server")

	// Stop polling loops before the HTTP listener so in-flight order
	// updates still find a live Mongo connection.
	smsService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}

	zlog.Info("server exiting")
}
