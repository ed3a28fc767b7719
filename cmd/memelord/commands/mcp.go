// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Exposes the memory loop to LLM agents over stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/2389-research/memelord/internal/config"
	"github.com/2389-research/memelord/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs memelord as an MCP (Model Context Protocol) server over stdio,
giving agents the memory_start_task / memory_report / memory_end_task
loop plus contradiction and status tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically launched by the host agent)
  memelord mcp

  # Configure in the host agent's MCP config:
  # {
  #   "mcpServers": {
  #     "memelord": {
  #       "command": "memelord",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	store, cfg, err := buildStore()
	if err != nil {
		return err
	}

	if cfg.Embedder == config.EmbedderOpenAI && os.Getenv("OPENAI_API_KEY") == "" {
		log.Println("Warning: OPENAI_API_KEY not set - embeddings will not work")
	}

	server := mcpserver.NewMCPServer(
		"memelord",
		"0.1.0",
	)

	mcp.RegisterTools(server, store)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("memelord MCP server starting on stdio...")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, gracefully shutting down...")
		}

		if err := store.Close(); err != nil {
			log.Printf("Warning: Error closing store: %v", err)
		}

		if !quiet {
			log.Println("Shutdown complete")
		}

	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
