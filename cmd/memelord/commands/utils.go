// ABOUTME: Shared helpers: store construction from config, display formatting
// ABOUTME: Every command builds its store the same way through here
package commands

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/2389-research/memelord/internal/config"
	"github.com/2389-research/memelord/internal/core"
	"github.com/2389-research/memelord/internal/llm"
)

// buildStore loads config and constructs an initialized memory store. The
// returned config is the one the store was built from.
func buildStore() (*core.Store, *config.Config, error) {
	// Load .env for API keys; a missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	embed, err := buildEmbedder(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing embedder: %w", err)
	}

	store, err := core.New(core.Options{
		DBPath:       cfg.DBPath(),
		SessionID:    cfg.SessionID,
		Embed:        embed,
		VectorType:   cfg.VectorType,
		Dimensions:   cfg.Dimensions,
		TopK:         cfg.TopK,
		LearningRate: cfg.LearningRate,
		DecayRate:    cfg.DecayRate,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating memory store: %w", err)
	}
	if err := store.Init(); err != nil {
		return nil, nil, fmt.Errorf("initializing memory store: %w", err)
	}
	return store, cfg, nil
}

// loadHookConfig loads config without opening the database. Used by hooks
// that only touch session files.
func loadHookConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// buildEmbedder selects the embedding provider from config
func buildEmbedder(cfg *config.Config) (llm.EmbedFunc, error) {
	if cfg.Embedder == config.EmbedderHash {
		return llm.NewHashEmbedder(cfg.Dimensions).Embed, nil
	}

	embedder, err := llm.NewOpenAIEmbedder(&llm.ClientConfig{
		APIKey:         cfg.OpenAIKey,
		EmbeddingModel: cfg.EmbeddingModel,
		Dimensions:     cfg.Dimensions,
		Timeout:        cfg.Timeout,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	})
	if err != nil {
		return nil, err
	}
	return embedder.Embed, nil
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatUnix formats a unix-seconds timestamp for display
func formatUnix(ts int64) string {
	if ts == 0 {
		return "never"
	}

	t := time.Unix(ts, 0)
	diff := time.Since(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	} else if diff < 7*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
	return t.Format("2006-01-02")
}
