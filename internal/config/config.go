// ABOUTME: Centralized configuration for the memelord memory layer
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Embedder provider names
const (
	EmbedderOpenAI = "openai"
	EmbedderHash   = "hash"
)

// DefaultDataDir is the per-project data directory unless MEMELORD_DIR
// overrides it
const DefaultDataDir = ".memelord"

// Config holds all configuration for the memory system
type Config struct {
	// Data layout
	DataDir   string
	SessionID string

	// Store knobs
	VectorType   string
	Dimensions   int
	TopK         int
	LearningRate float64
	DecayRate    float64

	// Embedding provider
	Embedder       string
	OpenAIKey      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// Load reads configuration from environment variables. A missing
// MEMELORD_SESSION_ID gets a generated uuid, so every process has one.
func Load() (*Config, error) {
	cfg := &Config{
		DataDir:        getEnv("MEMELORD_DIR", DefaultDataDir),
		SessionID:      getEnv("MEMELORD_SESSION_ID", uuid.New().String()),
		VectorType:     getEnv("MEMELORD_VECTOR_TYPE", "vector32"),
		Dimensions:     getEnvInt("MEMELORD_DIMENSIONS", 384),
		TopK:           getEnvInt("MEMELORD_TOP_K", 5),
		LearningRate:   getEnvFloat("MEMELORD_LEARNING_RATE", 0.1),
		DecayRate:      getEnvFloat("MEMELORD_DECAY_RATE", 0.995),
		Embedder:       getEnv("MEMELORD_EMBEDDER", EmbedderOpenAI),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		EmbeddingModel: getEnv("MEMELORD_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:        getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:     getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:     getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
	}

	return cfg, cfg.Validate()
}

// Validate rejects out-of-domain settings. Only the vector32 primitive is
// supported: the storage codec is fixed at 4-byte little-endian floats.
func (c *Config) Validate() error {
	switch c.VectorType {
	case "vector32":
	case "vector64", "vector8", "vector1":
		return fmt.Errorf("MEMELORD_VECTOR_TYPE %q is recognized but unsupported; only vector32 matches the 4-byte storage codec", c.VectorType)
	default:
		return fmt.Errorf("MEMELORD_VECTOR_TYPE must be one of vector32|vector64|vector8|vector1, got %q", c.VectorType)
	}

	if c.Dimensions < 1 {
		return fmt.Errorf("MEMELORD_DIMENSIONS must be positive, got %d", c.Dimensions)
	}
	if c.TopK < 1 {
		return fmt.Errorf("MEMELORD_TOP_K must be at least 1, got %d", c.TopK)
	}
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return fmt.Errorf("MEMELORD_LEARNING_RATE must be in (0, 1], got %f", c.LearningRate)
	}
	if c.DecayRate <= 0 || c.DecayRate >= 1 {
		return fmt.Errorf("MEMELORD_DECAY_RATE must be in (0, 1), got %f", c.DecayRate)
	}

	switch c.Embedder {
	case EmbedderOpenAI, EmbedderHash:
	default:
		return fmt.Errorf("MEMELORD_EMBEDDER must be %s or %s, got %q", EmbedderOpenAI, EmbedderHash, c.Embedder)
	}

	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	return nil
}

// DBPath returns the database file path inside the data directory
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "memory.db")
}

// SessionsDir returns the directory holding per-session collaborator files
func (c *Config) SessionsDir() string {
	return filepath.Join(c.DataDir, "sessions")
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
