package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/docqa-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderHash   = "hash"

	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr         string        `env:"SERVER_ADDR" envDefault:":8000"`
	ServerWriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10m"`

	// Bearer token expected on /hackrx/run
	AuthToken string `env:"HACKRX_API_KEY,notEmpty"`

	// Provider credentials
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`

	// External service configurations
	DownloadCfg   DownloadConfig   `envPrefix:"DOWNLOAD_"`
	EmbeddingCfg  EmbeddingConfig  `envPrefix:"EMBEDDING_"`
	GenerationCfg GenerationConfig `envPrefix:"GENERATION_"`

	// Transport settings for the model provider SDK clients
	ProviderHTTPCfg HTTPClientConfig `envPrefix:"PROVIDER_HTTP_"`

	// Pipeline configuration
	ChunkCfg     ChunkConfig     `envPrefix:"CHUNK_"`
	RetrievalCfg RetrievalConfig `envPrefix:"RETRIEVAL_"`
	AnswerCfg    AnswerConfig    `envPrefix:"ANSWER_"`

	// Optional metered key for DOCX parsing
	UnidocLicenseKey string `env:"UNIDOC_LICENSE_API_KEY"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

type DownloadConfig struct {
	HTTPClientConfig
	MaxBytes int64                `env:"MAX_BYTES" envDefault:"67108864"` // 64 MiB
	Retry    pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"25s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"30s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"20s"`
	TLSHandshakeTimeout   time.Duration `env:"TLS_HANDSHAKE_TIMEOUT" envDefault:"10s"`
	MaxIdleConns          int           `env:"MAX_IDLE_CONNS" envDefault:"100"`
	MaxIdleConnsPerHost   int           `env:"MAX_IDLE_CONNS_PER_HOST" envDefault:"10"`
	InsecureSkipVerify    bool          `env:"INSECURE_SKIP_VERIFY" envDefault:"false"`
	UserAgent             string        `env:"USER_AGENT" envDefault:"docqa-backend"`
	Token                 string        `env:"TOKEN"`
}

type EmbeddingConfig struct {
	Provider  string      `env:"PROVIDER" envDefault:"gemini"`
	Model     string      `env:"MODEL" envDefault:"text-embedding-004"`
	BaseURL   string      `env:"BASE_URL"`
	Dimension int         `env:"DIMENSION" envDefault:"384"`
	BatchSize int         `env:"BATCH_SIZE" envDefault:"8"`
	Cache     CacheConfig `envPrefix:"CACHE_"`
}

type CacheConfig struct {
	Backend       string        `env:"BACKEND" envDefault:"none"`
	TTL           time.Duration `env:"TTL" envDefault:"1h"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
}

type GenerationConfig struct {
	Provider        string               `env:"PROVIDER" envDefault:"gemini"`
	Model           string               `env:"MODEL" envDefault:"gemini-1.5-flash"`
	BaseURL         string               `env:"BASE_URL"`
	MaxOutputTokens int32                `env:"MAX_OUTPUT_TOKENS" envDefault:"300"`
	Timeout         time.Duration        `env:"TIMEOUT" envDefault:"60s"`
	Retry           pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type ChunkConfig struct {
	MaxWords         int `env:"MAX_WORDS" envDefault:"256"`
	MinSentenceChars int `env:"MIN_SENTENCE_CHARS" envDefault:"10"`
}

type RetrievalConfig struct {
	TopK int `env:"TOP_K" envDefault:"8"`
}

type AnswerConfig struct {
	Workers      int `env:"WORKERS" envDefault:"1"`
	MaxQuestions int `env:"MAX_QUESTIONS" envDefault:"100"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	return cfg, nil
}

// Parse reads the configuration from the process environment and validates it
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	// Provider credentials are only needed when talking to real services
	if !cfg.EnableMocks {
		errors = append(errors, validateProvider("EMBEDDING_PROVIDER", cfg.EmbeddingCfg.Provider, cfg, true)...)
		errors = append(errors, validateProvider("GENERATION_PROVIDER", cfg.GenerationCfg.Provider, cfg, false)...)
	}

	if cfg.ServerWriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("SERVER_WRITE_TIMEOUT must be positive, got %s", cfg.ServerWriteTimeout))
	}

	switch cfg.EmbeddingCfg.Cache.Backend {
	case CacheBackendNone, CacheBackendMemory, CacheBackendRedis:
	default:
		errors = append(errors, fmt.Sprintf("EMBEDDING_CACHE_BACKEND must be one of none, memory, redis, got %q", cfg.EmbeddingCfg.Cache.Backend))
	}

	if cfg.EmbeddingCfg.Dimension < 1 {
		errors = append(errors, fmt.Sprintf("EMBEDDING_DIMENSION must be positive, got %d", cfg.EmbeddingCfg.Dimension))
	}

	if cfg.EmbeddingCfg.BatchSize < 1 || cfg.EmbeddingCfg.BatchSize > 256 {
		errors = append(errors, fmt.Sprintf("EMBEDDING_BATCH_SIZE must be between 1 and 256, got %d", cfg.EmbeddingCfg.BatchSize))
	}

	if cfg.GenerationCfg.Retry.Attempts < 1 || cfg.GenerationCfg.Retry.Attempts > 10 {
		errors = append(errors, fmt.Sprintf("GENERATION_RETRY_ATTEMPTS must be between 1 and 10, got %d", cfg.GenerationCfg.Retry.Attempts))
	}

	if cfg.DownloadCfg.Retry.Attempts < 1 {
		errors = append(errors, fmt.Sprintf("DOWNLOAD_RETRY_ATTEMPTS must be positive, got %d", cfg.DownloadCfg.Retry.Attempts))
	}

	if cfg.ChunkCfg.MaxWords < 1 {
		errors = append(errors, fmt.Sprintf("CHUNK_MAX_WORDS must be positive, got %d", cfg.ChunkCfg.MaxWords))
	}

	if cfg.ChunkCfg.MinSentenceChars < 0 {
		errors = append(errors, fmt.Sprintf("CHUNK_MIN_SENTENCE_CHARS must not be negative, got %d", cfg.ChunkCfg.MinSentenceChars))
	}

	if cfg.RetrievalCfg.TopK < 1 || cfg.RetrievalCfg.TopK > 100 {
		errors = append(errors, fmt.Sprintf("RETRIEVAL_TOP_K must be between 1 and 100, got %d", cfg.RetrievalCfg.TopK))
	}

	if cfg.AnswerCfg.Workers < 1 || cfg.AnswerCfg.Workers > 32 {
		errors = append(errors, fmt.Sprintf("ANSWER_WORKERS must be between 1 and 32, got %d", cfg.AnswerCfg.Workers))
	}

	if cfg.AnswerCfg.MaxQuestions < 1 {
		errors = append(errors, fmt.Sprintf("ANSWER_MAX_QUESTIONS must be positive, got %d", cfg.AnswerCfg.MaxQuestions))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func validateProvider(name, provider string, cfg *Config, allowHash bool) []string {
	switch provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return []string{fmt.Sprintf("GEMINI_API_KEY is required when %s=%s", name, provider)}
		}
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return []string{fmt.Sprintf("OPENAI_API_KEY is required when %s=%s", name, provider)}
		}
	case ProviderHash:
		if !allowHash {
			return []string{fmt.Sprintf("%s=%s is not supported", name, provider)}
		}
	default:
		return []string{fmt.Sprintf("%s must be one of gemini, openai, got %q", name, provider)}
	}
	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
