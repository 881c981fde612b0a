package inference

import (
	"cmp"
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"
)

type GeminiWriter struct {
	client *genai.Client
	apiKey string
	model  string
}

// NewGeminiWriter creates a story writer backed by Gemini.
func NewGeminiWriter(apiKey string, model string) (*GeminiWriter, error) {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	return &GeminiWriter{
		client: client,
		apiKey: apiKey,
		model:  model,
	}, nil
}

// Generate asks for a JSON response; the schema ships in the system prompt
// since Gemini's JSON mode takes no response-format parameter here.
func (g *GeminiWriter) Generate(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	if params == nil {
		params = new(openai.ChatCompletionNewParams)
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleModel),
		ResponseMIMEType:  "application/json",
		MaxOutputTokens:   int32(cmp.Or(params.MaxCompletionTokens.Value, 8192)),
	}

	result, err := g.client.Models.GenerateContent(
		ctx,
		cmp.Or(params.Model, g.model),
		genai.Text(user),
		config,
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate story text: %w", err)
	}
	if result.Text() == "" {
		return "", errors.New("empty story response")
	}
	return result.Text(), nil
}
