package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var _ ContentGenerator = (*GeminiClient)(nil)

// GeminiClient wraps the Google generative AI SDK client.
type GeminiClient struct {
	sdk *genai.Client
}

// NewGemini constructs a Gemini client authenticated with apiKey.
func NewGemini(ctx context.Context, apiKey string, opts ...option.ClientOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	sdk, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiClient{sdk: sdk}, nil
}

// GenerateContent sends parts to the named model in order and returns a *Response.
func (c *GeminiClient) GenerateContent(ctx context.Context, model string, parts ...Part) (any, error) {
	gm := c.sdk.GenerativeModel(model)
	resp, err := gm.GenerateContent(ctx, toGeminiParts(parts)...)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	text, err := geminiText(resp)
	if err != nil {
		return nil, err
	}
	return &Response{
		Text:  text,
		Model: model,
		Usage: usageFromGemini(resp.UsageMetadata),
	}, nil
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	return c.sdk.Close()
}

func toGeminiParts(parts []Part) []genai.Part {
	out := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.IsBlob() {
			out = append(out, genai.Blob{MIMEType: p.MIMEType, Data: p.Data})
			continue
		}
		out = append(out, genai.Text(p.Text))
	}
	return out
}

// geminiText concatenates the text parts of the first candidate.
func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: empty response")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}
