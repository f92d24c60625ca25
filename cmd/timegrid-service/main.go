package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/timegrid/timegrid-backend/internal/timesheet/events"
	"github.com/timegrid/timegrid-backend/internal/timesheet/handler"
	"github.com/timegrid/timegrid-backend/internal/timesheet/repository"
	"github.com/timegrid/timegrid-backend/internal/timesheet/service"
	"github.com/timegrid/timegrid-backend/pkg/config"
	"github.com/timegrid/timegrid-backend/pkg/database"
	"github.com/timegrid/timegrid-backend/pkg/httputil"
	"github.com/timegrid/timegrid-backend/pkg/logger"
	"github.com/timegrid/timegrid-backend/pkg/messaging"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation("timegrid-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("timegrid-service", cfg.Server.Environment)
	log.Info().Msg("starting Timegrid Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ when configured; without a broker the service
	// runs standalone and skips event publishing.
	var rmq *messaging.RabbitMQ
	var publisher *events.TimesheetEventPublisher
	if cfg.RabbitMQ.URL != "" {
		rmq, err = messaging.New(&cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		publisher, err = events.NewTimesheetEventPublisher(rmq, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
	} else {
		log.Info().Msg("RabbitMQ URL not configured, event publishing disabled")
	}

	// Initialize repositories
	employeeRepo := repository.NewEmployeeRepository(db)
	recordRepo := repository.NewTimeRecordRepository(db)

	// Initialize services
	employeeService := service.NewEmployeeService(employeeRepo, publisher, log)
	timesheetService := service.NewTimesheetService(employeeRepo, recordRepo, db, publisher, log)

	// Initialize handlers
	employeeHandler := handler.NewEmployeeHandler(employeeService, log)
	timesheetHandler := handler.NewTimesheetHandler(timesheetService, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":   "healthy",
			"service":  "timegrid-service",
			"database": db.Health(r.Context()),
		}
		if rmq != nil {
			health["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, health)
	})

	// API routes
	r.Route("/api/v1/timesheet", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", employeeHandler.List)
			r.Post("/", employeeHandler.Create)
			r.Get("/{id}", employeeHandler.Get)
			r.Put("/{id}", employeeHandler.Update)
			r.Delete("/{id}", employeeHandler.Delete)
		})

		r.Route("/time-tracking", func(r chi.Router) {
			r.Post("/", timesheetHandler.SaveBatch)
			r.Get("/summary/{year}/{month}", timesheetHandler.GetMonthlySummary)
			r.Get("/{year}/{month}", timesheetHandler.GetMonthRecords)
			r.Get("/{year}/{month}/mode/{mode}", timesheetHandler.GetMonthGrid)
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
