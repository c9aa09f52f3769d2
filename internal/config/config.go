package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Embedding EmbeddingConfig
	Qdrant    QdrantConfig
	Chunking  ChunkingConfig
	RAG       RAGConfig
	LLM       LLMConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type EmbeddingConfig struct {
	Provider      string // "huggingface" or "ollama"
	APIURL        string
	APIToken      string
	ModelName     string
	EmbeddingsURL string // optional explicit endpoint (e.g. local TEI)
	Dimension     int
	BatchSize     int
	OllamaURL     string
}

type QdrantConfig struct {
	URL              string
	APIKey           string
	CollectionPrefix string
}

type ChunkingConfig struct {
	MinWords int
	MaxWords int
}

type RAGConfig struct {
	MaxContextTokens  int
	ContextChunkLimit int
	TokensPerWord     float64
}

type LLMConfig struct {
	Provider    string // "groq" or "ollama"
	GroqAPIURL  string
	GroqAPIKey  string
	GroqModel   string
	OllamaURL   string
	OllamaModel string
	MaxTokens   int
	Temperature float64
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	dimension, err := getEnvInt("EMBEDDING_DIMENSION", 384)
	if err != nil {
		return nil, fmt.Errorf("invalid EMBEDDING_DIMENSION: %w", err)
	}

	batchSize, err := getEnvInt("EMBEDDING_BATCH_SIZE", 32)
	if err != nil {
		return nil, fmt.Errorf("invalid EMBEDDING_BATCH_SIZE: %w", err)
	}

	minWords, err := getEnvInt("CHUNK_MIN_WORDS", 150)
	if err != nil {
		return nil, fmt.Errorf("invalid CHUNK_MIN_WORDS: %w", err)
	}

	maxWords, err := getEnvInt("CHUNK_MAX_WORDS", 300)
	if err != nil {
		return nil, fmt.Errorf("invalid CHUNK_MAX_WORDS: %w", err)
	}

	maxContextTokens, err := getEnvInt("RAG_MAX_CONTEXT_TOKENS", 3000)
	if err != nil {
		return nil, fmt.Errorf("invalid RAG_MAX_CONTEXT_TOKENS: %w", err)
	}

	chunkLimit, err := getEnvInt("RAG_CONTEXT_CHUNK_LIMIT", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid RAG_CONTEXT_CHUNK_LIMIT: %w", err)
	}

	tokensPerWord, err := getEnvFloat("RAG_TOKENS_PER_WORD", 1.3)
	if err != nil {
		return nil, fmt.Errorf("invalid RAG_TOKENS_PER_WORD: %w", err)
	}

	llmMaxTokens, err := getEnvInt("LLM_MAX_TOKENS", 1000)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_TOKENS: %w", err)
	}

	llmTemperature, err := getEnvFloat("LLM_TEMPERATURE", 0.7)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TEMPERATURE: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Embedding: EmbeddingConfig{
			Provider:      getEnv("EMBEDDING_PROVIDER", "huggingface"),
			APIURL:        getEnv("HF_API_URL", "https://router.huggingface.co/models"),
			APIToken:      getEnv("HF_API_TOKEN", ""),
			ModelName:     getEnv("HF_MODEL_NAME", "sentence-transformers/all-MiniLM-L6-v2"),
			EmbeddingsURL: getEnv("HF_EMBEDDINGS_URL", ""),
			Dimension:     dimension,
			BatchSize:     batchSize,
			OllamaURL:     getEnv("OLLAMA_URL", "http://localhost:11434"),
		},
		Qdrant: QdrantConfig{
			URL:              getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:           getEnv("QDRANT_API_KEY", ""),
			CollectionPrefix: getEnv("QDRANT_COLLECTION_PREFIX", "kortex"),
		},
		Chunking: ChunkingConfig{
			MinWords: minWords,
			MaxWords: maxWords,
		},
		RAG: RAGConfig{
			MaxContextTokens:  maxContextTokens,
			ContextChunkLimit: chunkLimit,
			TokensPerWord:     tokensPerWord,
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", "groq"),
			GroqAPIURL:  getEnv("GROQ_API_URL", "https://api.groq.com/openai/v1"),
			GroqAPIKey:  getEnv("GROQ_API_KEY", ""),
			GroqModel:   getEnv("GROQ_MODEL", "llama3-8b-8192"),
			OllamaURL:   getEnv("OLLAMA_URL", "http://localhost:11434"),
			OllamaModel: getEnv("OLLAMA_MODEL", "llama3"),
			MaxTokens:   llmMaxTokens,
			Temperature: llmTemperature,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.LLM.Provider == "groq" && c.LLM.GroqAPIKey == "" {
		missing = append(missing, "GROQ_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}
