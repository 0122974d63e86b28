package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/resume-roast/internal/config"
	"alfredoptarigan/resume-roast/internal/logger"
)

const (
	maxOutputTokens = 4096
	maxEmbedChars   = 40000
)

// GeminiProvider calls the Gemini API through the genai SDK.
type GeminiProvider struct {
	client     *genai.Client
	modelName  string
	embedModel string
	logger     *zap.Logger
}

func NewGeminiProvider(ctx context.Context, cfg config.AIConfig, log *zap.Logger) (*GeminiProvider, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: strings.TrimSpace(cfg.BaseURL),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiProvider{
		client:     client,
		modelName:  cfg.Model,
		embedModel: cfg.EmbedModel,
		logger:     logger.OrNop(log),
	}, nil
}

func (g *GeminiProvider) Mode() string {
	return ModeLive
}

// Generate implements Provider.
func (g *GeminiProvider) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	temperature := req.Temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: maxOutputTokens,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", translateGenaiError(err))
	}
	if resp == nil {
		return "", errors.New("gemini api returned nil response")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		g.logger.Warn("gemini returned no text",
			zap.String("task", req.Task),
			zap.Int("candidates", len(resp.Candidates)),
		)
		return "", errors.New("gemini api returned empty response")
	}

	g.logger.Debug("gemini response received",
		zap.String("task", req.Task),
		zap.String("preview", logger.TruncateForLog(text, 200)),
	)

	return text, nil
}

// Embed returns the embedding vector for text, used by guidance retrieval and ingestion.
func (g *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if runes := []rune(text); len(runes) > maxEmbedChars {
		text = string(runes[:maxEmbedChars])
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", translateGenaiError(err))
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, errors.New("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// translateGenaiError maps SDK API errors onto StatusError so the gateway can
// classify them without knowing about genai.
func translateGenaiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{StatusCode: apiErr.Code, Status: apiErr.Status, Body: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &StatusError{StatusCode: apiErrPtr.Code, Status: apiErrPtr.Status, Body: apiErrPtr.Message}
	}
	return err
}
