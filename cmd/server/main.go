package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/ferdianp/subtrack/internal/config"
	"github.com/ferdianp/subtrack/internal/handler"
	"github.com/ferdianp/subtrack/internal/repository"
	"github.com/ferdianp/subtrack/internal/service"
	"github.com/ferdianp/subtrack/pkg/response"
)

func main() {
	// .env is optional; real deployments use environment variables
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repository and services
	subRepo := repository.NewSubscriptionRepository(db)
	subService := service.NewSubscriptionService(subRepo, redisClient, cfg)
	reminderService := service.NewReminderService(subRepo)

	subHandler := handler.NewSubscriptionHandler(subService, reminderService, cfg)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.GetHealthTimeout())

	// Setup routes
	router := setupRoutes(subHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(subHandler *handler.SubscriptionHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes; fixed paths registered before the {id} pattern
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/subscriptions/stats", subHandler.Stats).Methods("GET")
	api.HandleFunc("/subscriptions/trends", subHandler.Trends).Methods("GET")
	api.HandleFunc("/subscriptions/upcoming", subHandler.Upcoming).Methods("GET")
	api.HandleFunc("/subscriptions/forecast/next-month", subHandler.NextMonthForecast).Methods("GET")
	api.HandleFunc("/subscriptions", subHandler.Create).Methods("POST")
	api.HandleFunc("/subscriptions", subHandler.List).Methods("GET")
	api.HandleFunc("/subscriptions/{id}", subHandler.Get).Methods("GET")
	api.HandleFunc("/subscriptions/{id}", subHandler.Update).Methods("PUT")
	api.HandleFunc("/subscriptions/{id}", subHandler.Delete).Methods("DELETE")
	api.HandleFunc("/reminders/check", subHandler.CheckReminders).Methods("POST")

	return router
}
