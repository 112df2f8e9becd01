package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/spf13/cobra"

	"babycare-backend/internal/api"
	"babycare-backend/internal/care"
	"babycare-backend/internal/db"
	"babycare-backend/internal/notification"
	"babycare-backend/internal/reminder"
	"babycare-backend/internal/schedule"
	"babycare-backend/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the reminder dispatcher",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Check for VAPID keys
	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		return errors.New("VAPID keys must be configured. Please generate them and add them to your config file")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, &webpushOptions)
	pool.Start(ctx)

	clock := schedule.SystemClock{Location: cfg.Location}
	svc := care.NewService(appStore, pool, clock, cfg.Location, care.Options{
		Snooze:       time.Duration(cfg.Reminder.SnoozeMinutes) * time.Minute,
		ResultsDelay: time.Duration(cfg.Reminder.ResultsDelayMins) * time.Minute,
	})

	dispatcher, err := reminder.NewDispatcher(cfg.Reminder, cfg.Location, appStore, svc, pool, clock)
	if err != nil {
		return err
	}
	go dispatcher.Run(ctx)

	router := api.NewRouter(cfg.Server, svc, appStore, &webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	if err := shutdown(server, cancel, 5*time.Second); err != nil {
		return err
	}

	logger.Println("Server gracefully stopped")
	return nil
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// shutdown drains in-flight requests first, then stops the workers, so
// alerts raised by those requests are still delivered.
func shutdown(server shutdowner, stopWorkers context.CancelFunc, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := server.Shutdown(ctx)
	stopWorkers()
	if err != nil {
		return fmt.Errorf("HTTP server Shutdown: %w", err)
	}
	return nil
}
