package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hausmate/hausmate/internal/api"
	"github.com/hausmate/hausmate/internal/config"
	"github.com/hausmate/hausmate/internal/geo"
	"github.com/hausmate/hausmate/internal/logger"
	"github.com/hausmate/hausmate/internal/repository"
	"github.com/hausmate/hausmate/internal/service"
	"github.com/hausmate/hausmate/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	log := logger.NewDefault()
	logger.SetDefaultLogger(log)
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	store, err := storage.NewStorage(&storage.S3Config{
		Type:      storage.StorageType(cfg.Storage.Type),
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize object storage: %v", err)
	}

	// Repositories
	profileRepo := repository.NewProfileRepository(db)
	interestRepo := repository.NewInterestRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)
	connectionRepo := repository.NewConnectionRepository(db)

	// Services
	geocoder := geo.NewGeocoder(&geo.GeocoderConfig{
		Enabled:   cfg.Geocoder.Enabled,
		BaseURL:   cfg.Geocoder.BaseURL,
		UserAgent: cfg.Geocoder.UserAgent,
		Timeout:   cfg.Geocoder.Timeout,
	})
	vocabulary := service.NewVocabularyCache(interestRepo, cfg.Discovery.VocabularyTTL)
	exclusions := service.NewExclusionResolver(connectionRepo, interactionRepo, cfg.Discovery.ExcludeDislikes)
	filters := service.NewFilterEngine(profileRepo)
	assembler := service.NewProfileAssembler(profileRepo, store)
	discovery := service.NewDiscoveryService(
		profileRepo, exclusions, filters, vocabulary, assembler, geocoder, cfg.Discovery.PageSize)
	interactions := service.NewInteractionService(profileRepo, interactionRepo, connectionRepo)

	router := api.SetupRouter(api.Services{
		Discovery:    discovery,
		Interactions: interactions,
		Assembler:    assembler,
		Interests:    interestRepo,
		Vocabulary:   vocabulary,
	}, &cfg.Server)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Server starting on port %d (mode=%s, db=%s)",
			cfg.Server.Port, cfg.Server.Mode, cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown: %v", err)
	}
	logger.Info("Server stopped")
}
