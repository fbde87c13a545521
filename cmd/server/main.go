package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/visaflow/visa-assistant/internal/aggregate"
	"github.com/visaflow/visa-assistant/internal/config"
	"github.com/visaflow/visa-assistant/internal/docai"
	"github.com/visaflow/visa-assistant/internal/extraction"
	"github.com/visaflow/visa-assistant/internal/formfill"
	httpapi "github.com/visaflow/visa-assistant/internal/interfaces/http"
	"github.com/visaflow/visa-assistant/internal/repository"
	"github.com/visaflow/visa-assistant/internal/storage"
	"github.com/visaflow/visa-assistant/internal/worker"
	"github.com/visaflow/visa-assistant/pkg/database"
	"github.com/visaflow/visa-assistant/pkg/utils"
)

func main() {
	// A missing .env file is fine; real deployments set the environment.
	_ = gotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting visa application assistant",
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	if err := repository.Migrate(db, logger); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	appRepo := repository.NewApplicationRepository(db, logger)
	docRepo := repository.NewDocumentRepository(db, logger)
	generatedRepo := repository.NewGeneratedDocumentRepository(db, logger)
	userRepo := repository.NewUserRepository(db, logger)

	blobs, err := storage.NewLocalBlobStorage(
		cfg.Storage.BaseDir,
		cfg.Storage.PublicURL,
		cfg.Storage.SignKey,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to initialize blob storage", zap.Error(err))
	}

	extractor := docai.NewExtractor(cfg.OpenAI.APIKey, cfg.OpenAI.ExtractModel, logger)
	statements := docai.NewStatementGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.StatementModel, logger)
	merger := extraction.NewMerger(logger)

	queue := worker.NewQueue(cfg.Worker.QueueCapacity)
	extractionWorker := worker.NewExtractionWorker(queue, docRepo, appRepo, extractor, merger, logger)
	extractionWorker.SetExtractTimeout(cfg.Worker.ExtractTimeout)

	manager := worker.NewManager(logger)
	manager.Register(extractionWorker)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if err := manager.StartAll(workerCtx); err != nil {
		logger.Fatal("Failed to start workers", zap.Error(err))
	}

	filler := formfill.NewFiller(logger)
	locator := formfill.NewTemplateLocator(formfill.LocatorConfig{
		LocalPath:    cfg.Forms.LocalPath,
		RemoteURL:    cfg.Forms.RemoteURL,
		ConverterURL: cfg.Forms.ConverterURL,
		FormTitle:    cfg.Forms.FormTitle,
	}, &http.Client{Timeout: 30 * time.Second}, logger)

	aggregator := aggregate.NewAggregator(appRepo, docRepo, userRepo, logger)

	handlers := httpapi.NewHandlers(
		appRepo,
		docRepo,
		generatedRepo,
		blobs,
		queue,
		aggregator,
		statements,
		filler,
		locator,
		logger,
	)

	server := httpapi.NewServer(handlers, httpapi.HeaderIdentityProvider{}, cfg.Server.Port, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", zap.Error(err))
	}

	queue.Close()
	manager.StopAll()

	logger.Info("Shutdown complete")
}
