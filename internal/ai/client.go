package ai

import (
	"context"
	"encoding/base64"
	"errors"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/responses"
)

var _ ContentGenerator = (*OpenAIClient)(nil)

const attachmentFilename = "attachment"

// OpenAIClient wraps the official OpenAI SDK client for the Responses API.
type OpenAIClient struct {
	sdk openai.Client
}

// New constructs a new OpenAI client. The apiKey is required.
// baseURL is optional (empty string uses the default API endpoint).
func New(apiKey, baseURL string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	sdk := openai.NewClient(opts...)
	return &OpenAIClient{sdk: sdk}, nil
}

// GenerateContent sends all parts as a single user message and returns a *Response
// holding the concatenated output text and the model that served it.
func (c *OpenAIClient) GenerateContent(ctx context.Context, model string, parts ...Part) (any, error) {
	req := responses.ResponseNewParams{
		Model: model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(toOpenAIContent(parts), responses.EasyInputMessageRoleUser),
			},
		},
	}
	res, err := c.sdk.Responses.New(ctx, req)
	if err != nil {
		return nil, err
	}
	served := string(res.Model)
	if served == "" {
		served = model
	}
	return &Response{
		Text:  res.OutputText(),
		Model: served,
		Usage: usageFromOpenAI(res.Usage),
	}, nil
}

func toOpenAIContent(parts []Part) responses.ResponseInputMessageContentListParam {
	content := make(responses.ResponseInputMessageContentListParam, 0, len(parts))
	for _, p := range parts {
		switch {
		case !p.IsBlob():
			content = append(content, responses.ResponseInputContentUnionParam{
				OfInputText: &responses.ResponseInputTextParam{Text: p.Text},
			})
		case p.isImage():
			content = append(content, responses.ResponseInputContentUnionParam{
				OfInputImage: &responses.ResponseInputImageParam{
					ImageURL: param.NewOpt(dataURL(p.MIMEType, p.Data)),
					Detail:   responses.ResponseInputImageDetailAuto,
				},
			})
		default:
			content = append(content, responses.ResponseInputContentUnionParam{
				OfInputFile: &responses.ResponseInputFileParam{
					FileData: param.NewOpt(dataURL(p.MIMEType, p.Data)),
					Filename: param.NewOpt(attachmentFilename),
				},
			})
		}
	}
	return content
}

func dataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
