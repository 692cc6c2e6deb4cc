package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/segyhp/rental-engine/internal/calculator"
	"github.com/segyhp/rental-engine/internal/config"
	"github.com/segyhp/rental-engine/internal/logger"
	"github.com/segyhp/rental-engine/internal/notify"
	"github.com/segyhp/rental-engine/internal/repository"
	"github.com/segyhp/rental-engine/internal/scheduler"
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
	logger.Info("Starting rental scheduler...")

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	loc := cfg.Location()
	calc := calculator.New(cfg.Policy())

	store := repository.NewStore(db)
	notifier := notify.NewService(
		store.Bookings(),
		repository.NewCustomerRepository(db),
		nil,
		notify.NewTwilioSender(cfg.Notify.TwilioAccountSID, cfg.Notify.TwilioAuthToken, cfg.Notify.TwilioFromNumber),
		loc,
		cfg.Business.Currency,
	)

	// The sweep only reads bookings, so no settler is wired
	bookings := service.NewBookingService(store, repository.NewTransactor(db), calc, validation.New(), nil, notifier, loc)

	sched, err := scheduler.NewScheduler(cfg.Scheduler, loc, scheduler.NewOverdueSweep(bookings, calc, notifier, loc))
	if err != nil {
		logger.Error("Failed to schedule jobs", "error", err)
		os.Exit(1)
	}

	sched.Start()
	logger.Info("Next overdue sweep", "at", sched.Next().Format(time.RFC3339))

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down scheduler...")
	sched.Stop()
	notifier.Wait()
	logger.Info("Scheduler stopped")
}
