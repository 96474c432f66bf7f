// Package requestor sends a prompt, optionally with a file attachment, to a
// generative model and extracts the JSON payload from its reply.
//
// A Requestor is meant for a single owner; SendRequest and Response must not
// be called concurrently on the same instance.
package requestor

import (
	"context"
	"fmt"
	"io"
	"os"

	"gemreq/internal/ai"
)

const (
	// APIKeyEnv names the variable read when no client is injected.
	APIKeyEnv       = "GEMINI_API_KEY"
	DefaultModel    = "gemini-1.5-flash"
	DefaultMIMEType = "application/pdf"
)

var (
	lookupEnv       = os.LookupEnv
	newGeminiClient = func(ctx context.Context, apiKey string) (ai.ContentGenerator, error) {
		return ai.NewGemini(ctx, apiKey)
	}
)

// Attachment is a local file sent after the prompt text.
type Attachment struct {
	Path     string
	MIMEType string
}

// Requestor holds one prompt configuration and the most recent response.
type Requestor struct {
	prompt     string
	attachment *Attachment
	model      string
	client     ai.ContentGenerator
	ownsClient bool

	// last is nil until a SendRequest succeeds.
	last any
}

// Option configures a Requestor.
type Option func(*Requestor)

// WithAttachment sends the file at path after the prompt. An empty mimeType
// means DefaultMIMEType.
func WithAttachment(path, mimeType string) Option {
	return func(r *Requestor) {
		if mimeType == "" {
			mimeType = DefaultMIMEType
		}
		r.attachment = &Attachment{Path: path, MIMEType: mimeType}
	}
}

// WithModel selects the model variant. An empty model keeps DefaultModel.
func WithModel(model string) Option {
	return func(r *Requestor) {
		if model != "" {
			r.model = model
		}
	}
}

// WithClient injects the remote client; the environment is then never read.
func WithClient(client ai.ContentGenerator) Option {
	return func(r *Requestor) {
		r.client = client
	}
}

// New builds a Requestor. Without WithClient it creates a Gemini client from
// the GEMINI_API_KEY environment variable.
func New(ctx context.Context, prompt string, opts ...Option) (*Requestor, error) {
	r := &Requestor{prompt: prompt, model: DefaultModel}
	for _, opt := range opts {
		opt(r)
	}
	if r.client != nil {
		return r, nil
	}

	apiKey, _ := lookupEnv(APIKeyEnv)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := newGeminiClient(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClientInit, err)
	}
	r.client = client
	r.ownsClient = true
	return r, nil
}

func (r *Requestor) Prompt() string { return r.prompt }
func (r *Requestor) Model() string  { return r.model }

// Attachment reports the configured attachment, if any.
func (r *Requestor) Attachment() (Attachment, bool) {
	if r.attachment == nil {
		return Attachment{}, false
	}
	return *r.attachment, true
}

// SendRequest performs exactly one remote call and stores its result.
// On failure the previously stored response is kept.
func (r *Requestor) SendRequest(ctx context.Context) error {
	parts := []ai.Part{ai.TextPart(r.prompt)}

	if r.attachment != nil {
		data, err := readAttachment(r.attachment.Path)
		if err != nil {
			return err
		}
		parts = append(parts, ai.BlobPart(r.attachment.MIMEType, data))
	}

	resp, err := r.client.GenerateContent(ctx, r.model, parts...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	if resp == nil {
		return fmt.Errorf("%w: empty response", ErrRequestFailed)
	}
	r.last = resp
	return nil
}

func readAttachment(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s: %w", ErrAttachmentNotFound, path, err)
		}
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read attachment %s: %w", path, err)
	}
	return data, nil
}

// Response returns the JSON payload of the last response: the body of its first
// ```json fenced block, or the whole text when there is none. It is recomputed
// on every call.
func (r *Requestor) Response() (string, error) {
	if r.last == nil {
		return "", &NotYetRequestedError{
			Message: "No valid response at the moment. Have you called SendRequest?",
		}
	}
	if resp, ok := r.last.(*ai.Response); ok && resp != nil {
		return ExtractJSONBlock(resp.Text), nil
	}
	return fmt.Sprint(r.last), nil
}

// Raw returns the unprocessed text of the last response.
func (r *Requestor) Raw() (string, error) {
	if r.last == nil {
		return "", &NotYetRequestedError{}
	}
	if resp, ok := r.last.(*ai.Response); ok && resp != nil {
		return resp.Text, nil
	}
	return fmt.Sprint(r.last), nil
}

// Usage returns the token usage of the last response, or zero when unknown.
func (r *Requestor) Usage() ai.TokenUsage {
	if resp, ok := r.last.(*ai.Response); ok && resp != nil {
		return resp.Usage
	}
	return ai.TokenUsage{}
}

// ResponseModel returns the model version reported with the last response,
// falling back to the configured model.
func (r *Requestor) ResponseModel() string {
	if resp, ok := r.last.(*ai.Response); ok && resp != nil && resp.Model != "" {
		return resp.Model
	}
	return r.model
}

// Close releases the client if New created it.
func (r *Requestor) Close() error {
	if !r.ownsClient {
		return nil
	}
	if c, ok := r.client.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
