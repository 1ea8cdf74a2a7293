package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/comexware/importdesk/internal/config"
	"github.com/comexware/importdesk/internal/database"
	"github.com/comexware/importdesk/internal/handlers"
	"github.com/comexware/importdesk/internal/models"
	"github.com/comexware/importdesk/internal/service"
	"github.com/comexware/importdesk/internal/store"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize the direct path (detects embedded vs external
	//    automatically). A failure here is not fatal: the access router can
	//    serve every read through the REST fallback, and the first call will
	//    classify the dead direct path and pin REST.
	var db *database.DB
	if cfg.Rest.ForceRest {
		log.Println("🔀 FORCE_REST set - skipping direct database connection")
	} else {
		db, err = database.Connect(cfg.Database)
		if err != nil {
			if cfg.Rest.BaseURL == "" {
				log.Fatalf("Failed to connect to database and no REST fallback configured: %v", err)
			}
			log.Printf("⚠️  Direct path unavailable at startup: %v", err)
			log.Println("🔀 Continuing with REST fallback only")
			db = nil
		}
	}

	// 3. Synchronize schema (embedded/dev mode only; the hosted database is
	//    owned by the ingestion side)
	if db != nil && cfg.Database.Alter {
		log.Println("🚀 Synchronizing database schema...")
		err = db.AutoMigrate(
			&models.ImportLineItem{},
			&models.TransitRecord{},
			&models.ReceivedRecord{},
		)
		if err != nil {
			log.Printf("⚠️ Migration warning: %v\n", err)
		} else {
			log.Println("✅ Schema synchronized successfully")
		}
	}

	// 4. Wire the resilient access core
	direct := store.NewDirectExecutor(gormHandle(db), cfg.Database.Schema)

	var rest store.QueryExecutor
	if cfg.Rest.BaseURL != "" {
		rest = store.NewRestExecutor(cfg.Rest.BaseURL, cfg.Rest.APIKey, cfg.Database.Schema)
		log.Printf("🌐 REST fallback configured: %s", cfg.Rest.BaseURL)
	} else {
		log.Println("ℹ️  No REST fallback configured (REST_URL empty)")
	}

	retry := store.RetryPolicy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
	}
	router := store.NewAccessRouter(direct, rest, cfg.Rest.ForceRest, retry, log.Default())

	processes := service.NewProcessService(router, log.Default())

	// 5. Set up HTTP router
	httpRouter := handlers.NewRouter(processes)

	// 6. Start server with graceful shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httpRouter,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Printf("🚀 Server starting on port %s [access path: %s]\n", cfg.Port, router.State())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	if db != nil {
		log.Println("🛑 Closing database connection...")
		if err := db.Close(); err != nil {
			log.Printf("Database close error: %v", err)
		}
	}

	log.Println("✅ Shutdown complete")
}

// gormHandle unwraps the database handle; nil stays nil so the direct
// executor reports connectivity failures instead of panicking
func gormHandle(db *database.DB) *gorm.DB {
	if db == nil {
		return nil
	}
	return db.DB
}
