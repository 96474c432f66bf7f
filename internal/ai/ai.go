package ai

import (
	"context"
	"strings"
)

// ContentGenerator sends an ordered list of content parts to a model.
// Real clients return a *Response; test doubles may return anything.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, parts ...Part) (any, error)
}

// Part is one element of a request: either text or raw bytes tagged with a MIME type.
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

// TextPart returns a text part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// BlobPart returns a binary part carrying data of the given MIME type.
func BlobPart(mimeType string, data []byte) Part {
	return Part{MIMEType: mimeType, Data: data}
}

// IsBlob reports whether the part carries binary data.
func (p Part) IsBlob() bool {
	return p.MIMEType != "" || p.Data != nil
}

func (p Part) isImage() bool {
	return strings.HasPrefix(strings.ToLower(p.MIMEType), "image/")
}

// Response is the result of a single GenerateContent call.
type Response struct {
	Text string
	// Model is the model version that produced the reply, as reported by the provider.
	Model string
	Usage TokenUsage
}

func (r *Response) String() string {
	if r == nil {
		return ""
	}
	return r.Text
}
