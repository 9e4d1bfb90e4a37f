package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/otka-dev/otka-backend/pkg/config"
)

const embeddingsURL = "https://api.openai.com/v1/embeddings"

// Embedder produces a vector for the given text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Client calls the OpenAI embeddings endpoint directly over HTTP.
type Client struct {
	cfg        config.OpenAIConfig
	httpClient *http.Client
}

// NewClient validates the config and returns an embeddings client.
func NewClient(cfg config.OpenAIConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
	}, nil
}

type embeddingRequest struct {
	Model      string `json:"model"`
	Input      string `json:"input"`
	Dimensions int    `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Embed returns the embedding vector for the text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text is required")
	}

	body, err := json.Marshal(embeddingRequest{
		Model:      c.cfg.EmbeddingModel,
		Input:      text,
		Dimensions: c.cfg.Dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, embeddingsURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call embeddings api: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read embeddings response: %w", err)
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("decode embeddings response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return nil, fmt.Errorf("embeddings api %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return nil, fmt.Errorf("embeddings api returned status %d", resp.StatusCode)
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("embeddings api returned no data")
	}
	return parsed.Data[0].Embedding, nil
}
