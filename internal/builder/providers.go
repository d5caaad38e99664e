package builder

import (
	"context"
	"fmt"

	"github.com/futig/docqa-backend/internal/answer"
	"github.com/futig/docqa-backend/internal/config"
	"github.com/futig/docqa-backend/internal/embedding"
	"github.com/futig/docqa-backend/internal/integration/common"
	"github.com/futig/docqa-backend/internal/integration/gemini"
	"github.com/futig/docqa-backend/internal/integration/openai"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// setupEmbedding returns a factory for the configured embedding backend.
// Nothing is contacted until the factory runs.
func setupEmbedding(cfg *config.Config, cache embedding.Cache, logger *zap.Logger) embedding.Factory {
	embCfg := cfg.EmbeddingCfg
	providerHTTP := cfg.ProviderHTTPCfg
	providerHTTP.Token = ""

	provider := embCfg.Provider
	if cfg.EnableMocks {
		provider = config.ProviderHash
	}

	return func(ctx context.Context) (embedding.Embedder, error) {
		var e embedding.Embedder

		switch provider {
		case config.ProviderGemini:
			client, err := gemini.NewClient(ctx, gemini.ClientConfig{
				APIKey:     cfg.GeminiAPIKey,
				BaseURL:    embCfg.BaseURL,
				HTTPClient: common.NewHTTPClient(providerHTTP),
			})
			if err != nil {
				return nil, err
			}
			e = gemini.NewEmbedder(client, embCfg.Model, embCfg.Dimension)
		case config.ProviderOpenAI:
			client := openai.NewClient(openai.ClientConfig{
				APIKey:     cfg.OpenAIAPIKey,
				BaseURL:    embCfg.BaseURL,
				HTTPClient: common.NewHTTPClient(providerHTTP),
			})
			e = openai.NewEmbedder(client, embCfg.Model, embCfg.Dimension)
		case config.ProviderHash:
			e = embedding.NewHashEmbedder(embCfg.Dimension)
		default:
			return nil, fmt.Errorf("unknown embedding provider %q", provider)
		}

		if cache != nil {
			e = embedding.NewCachedEmbedder(e, cache)
		}

		logger.Info("Embedding model loaded",
			zap.String("embedder", e.Name()),
			zap.Int("dimension", e.Dimension()),
		)
		return e, nil
	}
}

// setupEmbeddingCache returns the configured cache and a close function, or a nil cache
func setupEmbeddingCache(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) (embedding.Cache, func() error, error) {
	switch cfg.Backend {
	case config.CacheBackendMemory:
		logger.Info("Using in-process embedding cache", zap.Duration("ttl", cfg.TTL))
		return embedding.NewMemoryCache(cfg.TTL), nil, nil
	case config.CacheBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
		}
		logger.Info("Using redis embedding cache",
			zap.String("addr", cfg.RedisAddr),
			zap.Duration("ttl", cfg.TTL),
		)
		return embedding.NewRedisCache(client, cfg.TTL), client.Close, nil
	default:
		return nil, nil, nil
	}
}

func setupGenerator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (answer.Generator, error) {
	if cfg.EnableMocks {
		return gemini.NewMockGenerator(logger), nil
	}

	genCfg := cfg.GenerationCfg
	providerHTTP := cfg.ProviderHTTPCfg
	providerHTTP.Token = ""
	providerHTTP.RequestTimeout = max(providerHTTP.RequestTimeout, genCfg.Timeout)

	switch genCfg.Provider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, gemini.ClientConfig{
			APIKey:     cfg.GeminiAPIKey,
			BaseURL:    genCfg.BaseURL,
			HTTPClient: common.NewHTTPClient(providerHTTP),
		})
		if err != nil {
			return nil, err
		}
		return gemini.NewGenerator(client, genCfg.Model, genCfg.Timeout), nil
	case config.ProviderOpenAI:
		client := openai.NewClient(openai.ClientConfig{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    genCfg.BaseURL,
			HTTPClient: common.NewHTTPClient(providerHTTP),
		})
		return openai.NewGenerator(client, genCfg.Model, genCfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", genCfg.Provider)
	}
}
