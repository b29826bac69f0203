package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/senyabanana/freelance-service/internal/db"
	"github.com/senyabanana/freelance-service/internal/handlers"
	"github.com/senyabanana/freelance-service/internal/hub"
	"github.com/senyabanana/freelance-service/internal/repository"
	"github.com/senyabanana/freelance-service/internal/router"
	"github.com/senyabanana/freelance-service/internal/router/config"
	"github.com/senyabanana/freelance-service/internal/services"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	runDBMigration(cfg.MigrationURL, cfg.PostgresConn)

	dbPool, err := db.InitDb(cfg)
	if err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer dbPool.Close()

	logger := log.New(os.Stdout, "INFO: ", log.LstdFlags)

	broadcastHub := hub.NewHub(logger)

	projectRepo := repository.NewPostgresProjectRepository(dbPool)
	bidRepo := repository.NewPostgresBidRepository(dbPool)
	messageRepo := repository.NewPostgresMessageRepository(dbPool)
	reviewRepo := repository.NewPostgresReviewRepository(dbPool)

	projectService := services.NewProjectService(projectRepo)
	bidService := services.NewBidService(bidRepo, projectRepo, broadcastHub)
	negotiationService := services.NewNegotiationService(projectRepo, bidRepo, broadcastHub)
	messageService := services.NewMessageService(messageRepo, broadcastHub)
	reviewService := services.NewReviewService(reviewRepo, projectRepo)

	requestTimeout := 5 * time.Second
	routes := router.InitRoutes(router.Handlers{
		Project: handlers.NewProjectHandler(projectService, logger, requestTimeout),
		Bid:     handlers.NewBidHandler(bidService, logger, requestTimeout),
		Offer:   handlers.NewOfferHandler(negotiationService, logger, requestTimeout),
		Message: handlers.NewMessageHandler(messageService, logger, requestTimeout),
		Review:  handlers.NewReviewHandler(reviewService, logger, requestTimeout),
		WS:      handlers.NewWSHandler(broadcastHub, logger),
	}, cfg.JWTSecret)

	log.Printf("server is listening on %s...", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, routes); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func runDBMigration(migrationURL string, dbSource string) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		log.Fatal("cannot create a new migrate instance", err)
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("failed to run migrate up:", err)
	}
	log.Println("db migrated successfully")
}
