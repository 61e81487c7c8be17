package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/ivlev/animchat/internal/config"
)

// GeminiGenerator calls the hosted Gemini API.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

func NewGeminiGenerator(ctx context.Context, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = config.DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiGenerator{
		client:      client,
		model:       model,
		temperature: float32(cfg.Temperature),
	}, nil
}

func (g *GeminiGenerator) Name() string {
	return "gemini/" + g.model
}

func (g *GeminiGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	}
	if system != "" {
		gc.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), gc)
	if err != nil {
		return "", &GenerationError{Backend: g.Name(), Err: err}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &GenerationError{Backend: g.Name(), Err: errors.New("empty response")}
	}
	return text, nil
}
