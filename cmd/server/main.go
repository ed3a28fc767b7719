// ABOUTME: Standalone memelord MCP server with stdio transport
// ABOUTME: Wires config, embedder, and the memory store into the tool surface
package main

import (
	"log"

	"github.com/2389-research/memelord/internal/config"
	"github.com/2389-research/memelord/internal/core"
	"github.com/2389-research/memelord/internal/llm"
	"github.com/2389-research/memelord/internal/mcp"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	embed, err := buildEmbedder(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize embedder: %v", err)
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
		log.Fatalf("Failed to create memory store: %v", err)
	}
	if err := store.Init(); err != nil {
		log.Fatalf("Failed to initialize memory store: %v", err)
	}
	defer func() { _ = store.Close() }()

	server := mcpserver.NewMCPServer(
		"memelord",
		"0.1.0",
	)
	mcp.RegisterTools(server, store)

	// stdout carries protocol traffic; all logging stays on stderr.
	log.Println("memelord MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
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
