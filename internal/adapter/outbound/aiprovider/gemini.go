package aiprovider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/arix/server/internal/infra/resilience"
	"github.com/arix/server/internal/port/outbound"
	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("gemini returned no text")

// GeminiConfig holds Gemini adapter configuration.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// geminiTextGenerator implements outbound.TextGeneratorPort on the Gemini API.
type geminiTextGenerator struct {
	client *genai.Client
	model  string
	guard  *resilience.Guard
}

// NewGeminiTextGenerator creates a Gemini-backed text generator.
func NewGeminiTextGenerator(ctx context.Context, cfg GeminiConfig, httpClient *http.Client, guard *resilience.Guard) (outbound.TextGeneratorPort, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	if guard == nil {
		guard = resilience.NewGuard("gemini", resilience.DefaultConfig(), nil, nil)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &geminiTextGenerator{client: client, model: model, guard: guard}, nil
}

func (g *geminiTextGenerator) Generate(ctx context.Context, req *outbound.TextGenerationRequest) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: req.MaxTokens,
	}

	return resilience.Execute(ctx, g.guard, func(ctx context.Context) (string, error) {
		resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), config)
		if err != nil {
			return "", fmt.Errorf("gemini: generate content: %w", err)
		}
		text := strings.TrimSpace(resp.Text())
		if text == "" {
			return "", ErrEmptyResponse
		}
		return text, nil
	})
}

// Compile-time check
var _ outbound.TextGeneratorPort = (*geminiTextGenerator)(nil)
