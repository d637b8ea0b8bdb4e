package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finadem/core-banking/internal/adapter/http/controller"
	"github.com/finadem/core-banking/internal/adapter/http/middleware"
	"github.com/finadem/core-banking/internal/adapter/http/router"
	"github.com/finadem/core-banking/internal/adapter/queue"
	"github.com/finadem/core-banking/internal/adapter/rates"
	"github.com/finadem/core-banking/internal/adapter/repository/memory"
	"github.com/finadem/core-banking/internal/adapter/repository/postgres"
	"github.com/finadem/core-banking/internal/config"
	"github.com/finadem/core-banking/internal/domain"
	"github.com/finadem/core-banking/internal/usecase/services"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := postgres.RunMigrations(startupCtx, cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	db, err := postgres.Open(startupCtx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	defer db.Close()

	var rateCache *redis.Client
	if cfg.RedisAddr != "" {
		rateCache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rateCache.Close()
	}

	var publisher domain.EventPublisher
	if cfg.AMQPURL != "" {
		amqpPublisher, err := queue.NewPublisher(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("connect to rabbitmq: %v", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	store := postgres.NewStore(db)
	accountRepo := postgres.NewAccountRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	participantBanks := memory.NewParticipantBankRepository()
	converter := rates.NewClient(cfg.RateAPIURL, cfg.RateAPIKey, rateCache)

	accountService := services.NewAccountService(accountRepo, cfg.SettlementCurrency, cfg.IBANCountryCode, cfg.IBANBankCode)
	transactionService := services.NewTransactionService(
		accountRepo,
		transactionRepo,
		store,
		converter,
		publisher,
		participantBanks,
		cfg.SettlementCurrency,
	)

	participantBankService := services.NewParticipantBankService(participantBanks)

	authMiddleware := middleware.BasicAuth(cfg.ChannelID, cfg.ChannelKey)
	handler := router.New(
		controller.NewAccountController(accountService),
		controller.NewTransactionController(transactionService),
		controller.NewParticipantBankController(participantBankService),
		authMiddleware,
	)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("starting server on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("start server: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server shutdown: %v", err)
	}
}
