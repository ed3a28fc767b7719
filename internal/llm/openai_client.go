// ABOUTME: OpenAI embedding client with retry and request-level dimensions
// ABOUTME: Uses text-embedding-3-small shortened to the configured width
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/2389-research/memelord/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultEmbeddingModel is the default model for embeddings
const DefaultEmbeddingModel = string(openai.SmallEmbedding3)

// ClientConfig holds configuration for the OpenAI embedding client
type ClientConfig struct {
	APIKey         string
	EmbeddingModel string
	Dimensions     int
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string, dimensions int) *ClientConfig {
	return &ClientConfig{
		APIKey:         apiKey,
		EmbeddingModel: DefaultEmbeddingModel,
		Dimensions:     dimensions,
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
	}
}

// OpenAIEmbedder wraps the OpenAI embeddings API with retry logic. The
// request carries Dimensions so returned vectors match the declared width
// without client-side truncation.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
}

// NewOpenAIEmbedder creates an embedder from config
func NewOpenAIEmbedder(config *ClientConfig) (*OpenAIEmbedder, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if config.Dimensions <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be positive, got %d", config.Dimensions)
	}

	return &OpenAIEmbedder{
		client:     openai.NewClient(config.APIKey),
		model:      openai.EmbeddingModel(config.EmbeddingModel),
		dimensions: config.Dimensions,
		timeout:    config.Timeout,
		maxRetries: config.MaxRetries,
		retryDelay: config.RetryDelay,
	}, nil
}

// Embed generates an embedding vector for text. Satisfies EmbedFunc.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.CalculateBackoff(e.retryDelay, attempt))
		}

		reqCtx, cancel := context.WithTimeout(ctx, e.timeout)

		resp, err := e.client.CreateEmbeddings(reqCtx, openai.EmbeddingRequestStrings{
			Input:      []string{text},
			Model:      e.model,
			Dimensions: e.dimensions,
		})
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		if len(resp.Data) == 0 {
			lastErr = fmt.Errorf("attempt %d: no embeddings returned", attempt+1)
			continue
		}

		return resp.Data[0].Embedding, nil
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrEmbedFailure, e.maxRetries+1, lastErr)
}
