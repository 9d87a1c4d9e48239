package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/cataloghq/erp-migration/internal/catalog"
	"github.com/cataloghq/erp-migration/internal/config"
	"github.com/cataloghq/erp-migration/internal/db"
	"github.com/cataloghq/erp-migration/internal/importer"
	"github.com/cataloghq/erp-migration/internal/ingest"
	"github.com/cataloghq/erp-migration/internal/ledger"
	"github.com/cataloghq/erp-migration/internal/mapping"
	"github.com/cataloghq/erp-migration/internal/middleware"
	"github.com/cataloghq/erp-migration/internal/progress"
	"github.com/cataloghq/erp-migration/internal/repository"
	"github.com/cataloghq/erp-migration/internal/session"
	"github.com/cataloghq/erp-migration/internal/template"
	"github.com/cataloghq/erp-migration/internal/validate"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	if err := db.RunMigrations(cfg.Database, cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	sessionRepo := repository.NewSessionRepository(conn.Pool)
	resultRepo := repository.NewValidationResultRepository(conn.Pool)

	fieldCatalog := mapping.DefaultCatalog()
	aliases := mapping.DefaultAliases()

	sessions := session.NewService(sessionRepo, resultRepo, cfg.SessionTTL)
	ingestSvc := ingest.NewService(sessionRepo, resultRepo)
	ledgerSvc := ledger.NewService(sessionRepo, resultRepo)
	mappingSvc := mapping.NewService(sessionRepo, resultRepo, fieldCatalog, aliases)
	validateSvc := validate.NewService(sessions, sessionRepo, resultRepo, validate.NewRuleSet(fieldCatalog, aliases))
	importSvc := importer.NewService(sessions, sessionRepo, resultRepo, catalog.NewCommitter(conn.Pool), fieldCatalog, aliases, cfg.ImportWorkers)
	progressSvc := progress.NewService(sessionRepo, resultRepo)
	templates := template.NewGenerator(fieldCatalog)

	sessionHandler := session.NewHTTPHandler(sessions)
	ingestHandler := ingest.NewHTTPHandler(ingestSvc)
	ledgerHandler := ledger.NewHTTPHandler(ledgerSvc)
	mappingHandler := mapping.NewHTTPHandler(mappingSvc)
	validateHandler := validate.NewHTTPHandler(validateSvc)
	importHandler := importer.NewHTTPHandler(importSvc)
	progressHandler := progress.NewHTTPHandler(progressSvc)
	templateHandler := template.NewHTTPHandler(templates)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sessions", sessionHandler.Create)
	mux.HandleFunc("GET /api/sessions", sessionHandler.List)
	mux.HandleFunc("GET /api/sessions/{id}", sessionHandler.Get)
	mux.HandleFunc("POST /api/sessions/{id}/cancel", sessionHandler.Cancel)
	mux.HandleFunc("POST /api/sessions/{id}/upload", ingestHandler.Upload)
	mux.HandleFunc("POST /api/sessions/{id}/validate", validateHandler.Run)
	mux.HandleFunc("POST /api/sessions/{id}/import", importHandler.Run)
	mux.HandleFunc("GET /api/sessions/{id}/records", ledgerHandler.ListRecords)
	mux.HandleFunc("GET /api/sessions/{id}/summary", ledgerHandler.Summary)
	mux.HandleFunc("POST /api/sessions/{id}/reconcile", ledgerHandler.Reconcile)
	mux.HandleFunc("PATCH /api/records/{id}", ledgerHandler.UpdateRecord)
	mux.HandleFunc("GET /api/sessions/{id}/mappings/{entity}", mappingHandler.Suggest)
	mux.HandleFunc("GET /api/sessions/{id}/progress", progressHandler.Snapshot)
	mux.HandleFunc("GET /api/templates/{entity}", templateHandler.Download)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	handler := corsHandler.Handler(
		middleware.LoggingMiddleware(
			middleware.TenantMiddleware(mux),
		),
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Sweep expired sessions periodically so abandoned uploads do not pile up.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				removed, err := sessions.ExpireStale(ctx, now)
				if err != nil {
					log.Printf("Failed to expire stale sessions: %v", err)
					continue
				}
				if removed > 0 {
					log.Printf("Expired %d stale sessions", removed)
				}
			}
		}
	}()

	go func() {
		log.Printf("Starting migration API on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
