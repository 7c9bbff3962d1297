package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	NATS      NATSConfig
	Embedding EmbeddingConfig
	LLM       LLMConfig
	Index     IndexConfig
	CORS      CORSConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	// ConversationTTLSec bounds how long finished simulations stay retrievable.
	ConversationTTLSec int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type NATSConfig struct {
	// URL is optional; when empty, event publishing is disabled.
	URL string
}

// EmbeddingProvider selects the embedding backend. It is resolved exactly
// once at startup; downstream code never re-detects credentials.
type EmbeddingProvider string

const (
	EmbeddingOpenAI    EmbeddingProvider = "openai"
	EmbeddingSynthetic EmbeddingProvider = "synthetic"
)

type EmbeddingConfig struct {
	Provider  EmbeddingProvider
	APIKey    string
	Model     string
	Dimension int
	// Seed drives the synthetic backend's jitter; a fixed seed makes
	// synthetic embeddings reproducible across runs.
	Seed int64
}

type LLMConfig struct {
	// Provider is empty when no generative backend is configured; the
	// responder then uses retrieval fallback.
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// IndexBackend selects the vector index implementation.
type IndexBackend string

const (
	IndexMemory   IndexBackend = "memory"
	IndexPostgres IndexBackend = "postgres"
)

type IndexConfig struct {
	Backend IndexBackend
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: k.String("server.host"),
			Port: k.Int("server.port"),
		},
		DB: DBConfig{
			Host:     k.String("db.host"),
			Port:     k.Int("db.port"),
			User:     k.String("db.user"),
			Password: k.String("db.password"),
			Name:     k.String("db.name"),
			SSLMode:  k.String("db.sslmode"),
			MaxConns: int32(k.Int("db.max.conns")),
		},
		Redis: RedisConfig{
			Host:               k.String("redis.host"),
			Port:               k.Int("redis.port"),
			Password:           k.String("redis.password"),
			DB:                 k.Int("redis.db"),
			ConversationTTLSec: k.Int("redis.conversation.ttl.sec"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		Embedding: EmbeddingConfig{
			Provider:  EmbeddingProvider(k.String("embedding.provider")),
			APIKey:    k.String("openai.api.key"),
			Model:     k.String("embedding.model"),
			Dimension: k.Int("embedding.dimension"),
			Seed:      k.Int64("embedding.seed"),
		},
		LLM: LLMConfig{
			Provider:    k.String("llm.provider"),
			APIKey:      k.String("openai.api.key"),
			Model:       k.String("llm.model"),
			Temperature: k.Float64("llm.temperature"),
			MaxTokens:   k.Int("llm.max.tokens"),
		},
		Index: IndexConfig{
			Backend: IndexBackend(k.String("index.backend")),
		},
		CORS: CORSConfig{
			AllowedOrigins: k.Strings("cors.allowed.origins"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "vibecheck"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "vibecheck"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 25
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.ConversationTTLSec == 0 {
		cfg.Redis.ConversationTTLSec = 86400
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "debug"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	if err := resolveEmbedding(&cfg.Embedding); err != nil {
		return nil, err
	}
	resolveLLM(&cfg.LLM)

	switch cfg.Index.Backend {
	case IndexMemory, IndexPostgres:
	case "":
		cfg.Index.Backend = IndexMemory
	default:
		return nil, fmt.Errorf("unknown index backend %q", cfg.Index.Backend)
	}

	return cfg, nil
}

// resolveEmbedding pins the embedding provider. An explicit openai selection
// without credentials is a configuration error; an unset provider degrades
// silently to synthetic so the service always starts.
func resolveEmbedding(c *EmbeddingConfig) error {
	switch c.Provider {
	case EmbeddingOpenAI:
		if c.APIKey == "" {
			return fmt.Errorf("embedding.provider=openai requires openai.api.key")
		}
	case EmbeddingSynthetic:
	case "":
		if c.APIKey != "" {
			c.Provider = EmbeddingOpenAI
		} else {
			c.Provider = EmbeddingSynthetic
		}
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Provider)
	}
	if c.Model == "" {
		c.Model = "text-embedding-3-small"
	}
	if c.Dimension == 0 {
		c.Dimension = 1536
	}
	return nil
}

func resolveLLM(c *LLMConfig) {
	if c.Provider == "" && c.APIKey != "" {
		c.Provider = "openai"
	}
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.Temperature == 0 {
		c.Temperature = 0.9
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 100
	}
}
