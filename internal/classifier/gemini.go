// Package classifier submits images to an external vision model.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/williampepple1/vibe-scout/internal/config"
	"github.com/williampepple1/vibe-scout/internal/fetcher"
)

// ErrEmptyResponse is returned when the model answers without any text
var ErrEmptyResponse = errors.New("classifier returned an empty response")

// Gemini classifies images with a Gemini multimodal model
type Gemini struct {
	client          *genai.Client
	model           string
	maxOutputTokens int32
}

// NewGemini creates a classifier from the analyzer configuration. baseURL
// overrides the API endpoint when non-empty.
func NewGemini(ctx context.Context, cfg *config.AnalyzerConfig, baseURL string) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, config.ErrMissingAPIKey
	}
	if cfg.Provider != "google" {
		return nil, fmt.Errorf("unsupported classifier provider: %s", cfg.Provider)
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = config.DefaultModel
	}
	return &Gemini{client: client, model: model, maxOutputTokens: cfg.MaxOutputTokens}, nil
}

// Classify sends img together with prompt and returns the model's raw text reply
func (g *Gemini) Classify(ctx context.Context, img fetcher.Image, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(img.Data, img.MediaType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens:  g.maxOutputTokens,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
