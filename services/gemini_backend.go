package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiBackend talks to the Gemini generateContent API. It serves two
// roles: primary vision recognizer, and text fallback for decomposition.
type GeminiBackend struct {
	apiKey string
	model  string
}

func NewGeminiBackend(apiKey, model string) *GeminiBackend {
	return &GeminiBackend{
		apiKey: strings.TrimSpace(apiKey),
		model:  strings.TrimSpace(model),
	}
}

// Recognize sends the prompt plus JPEG bytes and returns the raw answer text.
func (g *GeminiBackend) Recognize(ctx context.Context, image []byte) (string, error) {
	return g.generate(ctx, []genai.Part{
		genai.Text(visionPrompt),
		genai.ImageData("jpeg", image),
	})
}

// GenerateText runs a plain text prompt through the same model.
func (g *GeminiBackend) GenerateText(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, []genai.Part{genai.Text(prompt)})
}

func (g *GeminiBackend) generate(ctx context.Context, parts []genai.Part) (string, error) {
	if g.apiKey == "" {
		return "", errors.New("gemini: API key is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("gemini: create client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(g.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:     ptrFloat32(0.2),
		MaxOutputTokens: ptrInt32(200),
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	txt := firstText(resp)
	if txt == "" {
		return "", errors.New("gemini: empty response")
	}
	return txt, nil
}

// firstText pulls the first text part out of a generateContent response.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				if s := strings.TrimSpace(string(t)); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
func ptrInt32(v int32) *int32       { return &v }
