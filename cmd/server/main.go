package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segyhp/rental-engine/internal/calculator"
	"github.com/segyhp/rental-engine/internal/config"
	"github.com/segyhp/rental-engine/internal/gateway"
	"github.com/segyhp/rental-engine/internal/handler"
	"github.com/segyhp/rental-engine/internal/logger"
	"github.com/segyhp/rental-engine/internal/notify"
	"github.com/segyhp/rental-engine/internal/repository"
	"github.com/segyhp/rental-engine/internal/service"
	"github.com/segyhp/rental-engine/internal/validation"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Initialize(cfg.Logging.Level, cfg.Logging.Format)

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := repository.Migrate(context.Background(), db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	loc := cfg.Location()

	// Initialize repositories
	store := repository.NewStore(db)
	transactor := repository.NewTransactor(db)
	customers := repository.NewCustomerRepository(db)

	// External collaborators
	sms := notify.NewTwilioSender(cfg.Notify.TwilioAccountSID, cfg.Notify.TwilioAuthToken, cfg.Notify.TwilioFromNumber)
	email := notify.NewSendGridSender(cfg.Notify.SendGridAPIKey, cfg.Notify.SendGridFromEmail, cfg.Notify.SendGridFromName)
	notifier := notify.NewService(store.Bookings(), customers, email, sms, loc, cfg.Business.Currency)

	outcomes := gateway.NewRedisOutcomeBus(redisClient, 24*time.Hour)
	stripeGateway := gateway.NewStripeGateway(gateway.StripeConfig{
		SecretKey:    cfg.Gateway.StripeSecretKey,
		SuccessURL:   cfg.Gateway.SuccessURL,
		CancelURL:    cfg.Gateway.CancelURL,
		AwaitTimeout: cfg.Gateway.AwaitTimeout,
	}, outcomes, sms)

	// Initialize service
	validator := validation.New()
	bookingService := service.NewBookingService(
		store,
		transactor,
		calculator.New(cfg.Policy()),
		validator,
		service.NewSettler(stripeGateway, cfg.Business.Currency),
		notifier,
		loc,
	)

	router := handler.NewRouter(
		handler.NewBookingHandler(bookingService, validator),
		handler.NewWebhookHandler(outcomes, cfg.Gateway.StripeWebhookSecret),
		handler.NewHealthHandler(db, redisClient, cfg.Health.Timeout),
	)

	var h http.Handler = router
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(h)
	h = handlers.CombinedLoggingHandler(os.Stdout, h)
	h = handlers.RecoveryHandler(handlers.PrintRecoveryStack(cfg.IsDevelopment()))(h)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "addr", server.Addr, "env", cfg.Server.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Let queued notifications finish
	notifier.Wait()

	logger.Info("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
