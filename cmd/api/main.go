package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/linskybing/survey-platform/docs"
	"github.com/linskybing/survey-platform/internal/api/handlers"
	"github.com/linskybing/survey-platform/internal/api/middleware"
	"github.com/linskybing/survey-platform/internal/api/routes"
	"github.com/linskybing/survey-platform/internal/application"
	"github.com/linskybing/survey-platform/internal/config"
	"github.com/linskybing/survey-platform/internal/config/db"
	"github.com/linskybing/survey-platform/internal/repository"
	"github.com/linskybing/survey-platform/internal/storage"
	"github.com/sirupsen/logrus"
)

// @title Survey Forms API
// @version 1.0
// @description Family and member survey forms across the office hierarchy.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.ConfigureLogger(log)

	conn, err := db.Init(cfg)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	repos := repository.NewRepositories(conn)
	if cfg.OfficeSeedFile != "" {
		dir, err := application.LoadDirectoryFile(cfg.OfficeSeedFile)
		if err != nil {
			log.Fatalf("Failed to read office seed: %v", err)
		}
		if err := application.ImportDirectory(repos, dir, log); err != nil {
			log.Fatalf("Failed to import office seed: %v", err)
		}
	}
	tree, err := application.LoadHierarchy(repos)
	if err != nil {
		log.Fatalf("Failed to load office hierarchy: %v", err)
	}
	log.WithField("offices", tree.Len()).Info("office hierarchy loaded")

	var store storage.ObjectStore
	minioStore, err := storage.NewMinioStore(context.Background(), cfg)
	if err != nil {
		log.WithError(err).Warn("attachment storage unavailable")
	} else {
		store = minioStore
	}

	svc := application.New(repos, tree, nil, store, application.Options{
		AllowReopen:        cfg.AllowReopen,
		CapRetryAttempts:   cfg.CapRetryAttempts,
		MaxAttachmentBytes: cfg.MaxAttachmentBytes,
		Logger:             log,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CorsOrigins))
	router.Use(middleware.LoggingMiddleware(log))
	routes.RegisterRoutes(router, handlers.New(svc, conn), []byte(cfg.JwtSecret))

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infof("Starting API server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
}
