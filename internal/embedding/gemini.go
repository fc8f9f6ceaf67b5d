package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/eddowding/abelique-matching/internal/config"
)

// GeminiEmbedder produces profile embeddings through the Gemini
// embedding API.
type GeminiEmbedder struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGeminiEmbedder(ctx context.Context, cfg config.AIConfig) (*GeminiEmbedder, error) {
	apiKey := strings.TrimSpace(cfg.GeminiAPIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiEmbedder{
		client:  client,
		model:   cfg.EmbedModel,
		timeout: cfg.EmbedTimeout,
	}, nil
}

// Embed converts text into a Dim-length vector. The call is bounded by
// the configured timeout; exceeding it is an ordinary provider failure.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("embedding input must not be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	dim := int32(Dim)
	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.New("embedding api returned no vector")
	}

	vec := resp.Embeddings[0].Values
	if len(vec) != Dim {
		return nil, fmt.Errorf("embedding api returned %d dimensions, want %d", len(vec), Dim)
	}

	return vec, nil
}
