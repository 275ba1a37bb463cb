package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/amishk599/leadradar/internal/retry"
)

// GeminiProvider calls Google Gemini through the generative-ai-go SDK.
type GeminiProvider struct {
	client *genai.Client
	opts   Options
}

// NewGeminiProvider creates a Gemini client. Extra client options (for
// example a custom endpoint) are appended after the API key.
func NewGeminiProvider(ctx context.Context, apiKey string, opts Options, clientOpts ...option.ClientOption) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, clientOpts...)...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{client: client, opts: opts}, nil
}

func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	m := p.client.GenerativeModel(p.opts.Model)
	m.SetTemperature(float32(p.opts.Temperature))
	if p.opts.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(p.opts.MaxTokens))
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", geminiError(err)
	}
	return geminiText(resp)
}

// geminiError classifies an SDK error for retry. API status errors become
// *model.HTTPError; blocked prompts and candidates are permanent.
func geminiError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error()
		}
		return httpError("gemini", apiErr.Code, apiErr.Header, []byte(msg))
	}
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return retry.Permanent(fmt.Errorf("gemini generate: %w", err))
	}
	return fmt.Errorf("gemini generate: %w", err)
}

// Close releases the underlying client connection.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// geminiText joins the text parts of the first candidate.
func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", retry.Permanent(errors.New("gemini: no candidates in response"))
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", retry.Permanent(errors.New("gemini: no content in response"))
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", retry.Permanent(errors.New("gemini: no text parts in response"))
	}
	return strings.Join(parts, ""), nil
}
