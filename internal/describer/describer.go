// Package describer writes marketing copy for catalog products with Gemini.
package describer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

var ErrEmptyResponse = errors.New("model returned no text")

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Gemini struct {
	models generator
	model  string
}

func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{models: client.Models, model: DefaultModel}, nil
}

func Prompt(productName string) string {
	return fmt.Sprintf("Write a compelling and concise product description (max 100 words) for '%s' "+
		"to be listed on a farmer marketplace. Highlight its freshness, natural quality, and farm-to-table "+
		"appeal, making it enticing for customers to buy directly from local farmers.", productName)
}

func (g *Gemini) Describe(ctx context.Context, productName string) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(Prompt(productName)), nil)
	if err != nil {
		return "", fmt.Errorf("generate description: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
