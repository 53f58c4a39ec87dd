/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the wage computation engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize SQLite store
  3. Wire domain services (calendar, generator, corrections, wages,
     payments)
  4. Create API handler and router
  5. Start the cron scheduler (horizon, sweep, token purge)
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port         HTTP server port (default: 8080, env PORT)
  -db           SQLite database path (default: wage.db, env DB_PATH)
                Use ":memory:" for in-memory database
  -holiday-url  Upstream holiday feed base URL (env HOLIDAY_URL);
                empty disables the calendar refresh endpoint's fetch

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler (waits for a running job)
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/wage.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on different port with a holiday feed
  ./server -port=3000 -holiday-url="https://holidays.example.com/api"

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Standing batch jobs
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/wage-engine/api"
	"github.com/warp/wage-engine/calendar"
	"github.com/warp/wage-engine/labor"
	"github.com/warp/wage-engine/notify"
	"github.com/warp/wage-engine/payment"
	"github.com/warp/wage-engine/shift"
	"github.com/warp/wage-engine/store/sqlite"
	"github.com/warp/wage-engine/wage"
)

func main() {
	// .env is optional; flags override it.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DB_PATH", "wage.db"), "SQLite database path")
	holidayURL := flag.String("holiday-url", envStr("HOLIDAY_URL", ""), "holiday feed base URL")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Wire domain services
	notifier := notify.LogNotifier{}

	var source calendar.Source
	if *holidayURL != "" {
		source = calendar.NewHTTPSource(*holidayURL)
	} else {
		log.Println("No holiday feed configured; calendar refresh is disabled")
		source = &calendar.StaticSource{
			Err: &labor.UpstreamError{Source: "holiday feed", Message: "not configured"},
		}
	}
	cal := calendar.NewService(store, source)

	generator := shift.NewGenerator(store, store)
	corrections := shift.NewWorkflow(store, store, notifier)
	calculator := wage.NewCalculator(store, store, cal, wage.DefaultRates(), notifier)
	payments := payment.NewService(store, notifier)

	// Handler and router
	handler := api.NewHandler(store, generator, corrections, calculator, payments, cal)
	router := api.NewRouter(handler)

	// Standing batch jobs
	scheduler, err := api.NewScheduler(store, generator, payments)
	if err != nil {
		log.Fatalf("Failed to initialize scheduler: %v", err)
	}
	scheduler.Start()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
