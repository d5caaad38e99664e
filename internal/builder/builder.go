package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/docqa-backend/internal/answer"
	"github.com/futig/docqa-backend/internal/api"
	qaapi "github.com/futig/docqa-backend/internal/api/qa"
	"github.com/futig/docqa-backend/internal/chunker"
	"github.com/futig/docqa-backend/internal/config"
	"github.com/futig/docqa-backend/internal/embedding"
	"github.com/futig/docqa-backend/internal/entity"
	"github.com/futig/docqa-backend/internal/extractor"
	"github.com/futig/docqa-backend/internal/integration/document"
	"github.com/futig/docqa-backend/internal/metrics"
	pkglogger "github.com/futig/docqa-backend/internal/pkg/logger"
	"github.com/futig/docqa-backend/internal/pkg/validator"
	"github.com/futig/docqa-backend/internal/usecase/qa"
	"github.com/unidoc/unioffice/common/license"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := pkglogger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
		zap.Bool("mocks", cfg.EnableMocks),
	)

	if cfg.UnidocLicenseKey != "" {
		if err := license.SetMeteredKey(cfg.UnidocLicenseKey); err != nil {
			return nil, fmt.Errorf("set unidoc license: %w", err)
		}
		logger.Info("DOCX license configured")
	}

	var closers []func() error

	// Embedding model, loaded on first use
	cache, closeCache, err := setupEmbeddingCache(ctx, cfg.EmbeddingCfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("setup embedding cache: %w", err)
	}
	if closeCache != nil {
		closers = append(closers, closeCache)
	}
	encoder := embedding.NewEncoder(embedding.NewLoader(setupEmbedding(cfg, cache, logger)))

	generator, err := setupGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup generator: %w", err)
	}

	// Initialize document source (with mock support)
	var downloader qa.DocumentDownloader
	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		downloader = document.NewMockConnector(cfg.UnidocLicenseKey != "", logger)
	} else {
		logger.Info("Using real connectors for external services")
		downloader = document.NewConnector(cfg.DownloadCfg, logger)
	}

	appMetrics := metrics.New()

	synthesizer := answer.NewSynthesizer(generator,
		answer.WithAttempts(cfg.GenerationCfg.Retry.Attempts),
		answer.WithBaseDelay(cfg.GenerationCfg.Retry.Delay),
		answer.WithRecorder(appMetrics),
		answer.WithGenerationConfig(entity.GenerationConfig{
			CandidateCount:  1,
			Temperature:     0,
			MaxOutputTokens: cfg.GenerationCfg.MaxOutputTokens,
		}),
	)

	qaUC := qa.NewUsecase(
		qa.ConfigFrom(cfg),
		downloader,
		extractor.NewRegistry(),
		chunker.NewSentenceChunker(cfg.ChunkCfg.MaxWords, cfg.ChunkCfg.MinSentenceChars),
		encoder,
		synthesizer,
		validator.NewValidator(cfg.AnswerCfg),
		appMetrics,
		logger,
	)
	logger.Info("Use cases initialized")

	// Setup router
	router := api.SetupRouter(api.RouterConfig{
		AuthToken:       cfg.AuthToken,
		GenerationModel: cfg.GenerationCfg.Model,
		RequestTimeout:  cfg.ServerWriteTimeout,
	}, qaapi.NewHandler(qaUC), appMetrics.Handler(), logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.ServerWriteTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
		zap.String("embedding_provider", cfg.EmbeddingCfg.Provider),
		zap.String("generation_model", cfg.GenerationCfg.Model),
	)

	return &App{
		server:  server,
		closers: closers,
		logger:  logger,
	}, nil
}
