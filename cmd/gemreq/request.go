package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"gemreq/internal/ai"
	cfgpkg "gemreq/internal/config"
	"gemreq/internal/paths"
	"gemreq/internal/requestor"
)

// newContentGenerator returns the client injected into the requestor. A nil
// client lets requestor.New build its Gemini client from GEMINI_API_KEY.
var newContentGenerator = func(ctx context.Context, cfg cfgpkg.Config) (ai.ContentGenerator, error) {
	switch cfg.Provider {
	case cfgpkg.ProviderOpenAI:
		return ai.New(cfg.OpenAIAPIKey, "")
	default:
		return nil, nil
	}
}

type requestMeta struct {
	RequestID     string        `json:"requestId"`
	Date          string        `json:"date"`
	Provider      string        `json:"provider"`
	Model         string        `json:"model"`
	ResponseModel string        `json:"responseModel"`
	Attachment    string        `json:"attachment,omitempty"`
	MIMEType      string        `json:"mimeType,omitempty"`
	ValidJSON     bool          `json:"validJson"`
	Usage         ai.TokenUsage `json:"usage"`
}

// gemreq request
func cmdRequest(args []string) error {
	var cf commonFlags
	var prompt, promptFile, file string
	var save, rawOut bool
	var mimeType, model, provider, outDir stringFlag
	var overwrite boolFlag

	fs := flag.NewFlagSet("request", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	addCommonFlags(fs, &cf)
	fs.StringVar(&prompt, "prompt", "", "Prompt text")
	fs.StringVar(&promptFile, "prompt-file", "", "Read the prompt from a file (- for stdin)")
	fs.StringVar(&file, "file", "", "Local file to attach after the prompt")
	fs.Var(&mimeType, "mime-type", "MIME type of the attached file (default application/pdf)")
	fs.Var(&model, "model", "Model identifier")
	fs.Var(&provider, "provider", "Provider: gemini or openai")
	fs.Var(&outDir, "out-dir", "Base directory for saved responses")
	fs.BoolVar(&save, "save", false, "Write payload, raw text and metadata under the out dir")
	fs.Var(&overwrite, "overwrite", "Allow overwriting saved outputs")
	fs.BoolVar(&rawOut, "raw", false, "Print the raw response instead of the extracted payload")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	setupLogger(cf.logLevel)
	date, err := resolveDate(cf.date)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cf, cfgpkg.Overrides{
		Provider:  provider.ptr(),
		Model:     model.ptr(),
		MIMEType:  mimeType.ptr(),
		OutDir:    outDir.ptr(),
		Overwrite: overwrite.ptr(),
	})
	if err != nil {
		return err
	}
	if err := cfgpkg.ValidateForRequest(cfg); err != nil {
		return err
	}

	promptText, err := resolvePrompt(prompt, promptFile)
	if err != nil {
		return err
	}

	builder := paths.New(cfg.OutDir)
	if save {
		if err := paths.CheckOverwrite([]string{builder.Payload(date), builder.Raw(date), builder.Meta(date)}, cfg.Overwrite); err != nil {
			return err
		}
	}

	ctx := context.Background()
	client, err := newContentGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	opts := []requestor.Option{requestor.WithModel(cfg.Model)}
	if client != nil {
		opts = append(opts, requestor.WithClient(client))
	}
	if file != "" {
		opts = append(opts, requestor.WithAttachment(file, cfg.MIMEType))
	}
	req, err := requestor.New(ctx, promptText, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := req.Close(); cerr != nil {
			slog.Warn("failed to close client", "err", cerr)
		}
	}()

	requestID := uuid.NewString()
	slog.Info("request start", "requestId", requestID, "provider", cfg.Provider, "model", req.Model(), "attachment", file)
	callStart := time.Now()
	if err := req.SendRequest(ctx); err != nil {
		return err
	}
	payload, err := req.Response()
	if err != nil {
		return err
	}
	raw, err := req.Raw()
	if err != nil {
		return err
	}
	usage := req.Usage()
	slog.Info("response received", "requestId", requestID, "elapsed", time.Since(callStart).String())

	out := payload
	if rawOut {
		out = raw
	}
	if err := writeOutput(stdout, out); err != nil {
		return err
	}

	if save {
		meta := requestMeta{
			RequestID:     requestID,
			Date:          date.Format("2006-01-02"),
			Provider:      cfg.Provider,
			Model:         req.Model(),
			ResponseModel: req.ResponseModel(),
			ValidJSON:     json.Valid([]byte(payload)),
			Usage:         usage,
		}
		if att, ok := req.Attachment(); ok {
			meta.Attachment = att.Path
			meta.MIMEType = att.MIMEType
		}
		if err := saveResponse(builder, date, payload, raw, meta); err != nil {
			return err
		}
		slog.Info("response saved", "requestId", requestID, "dir", builder.OutDir(date))
	}

	slog.Info(
		"request completed",
		"requestId", requestID,
		"model", req.ResponseModel(),
		"inputTokens", usage.InputTokens,
		"outputTokens", usage.OutputTokens,
		"totalTokens", usage.TotalTokens,
		"cachedTokens", usage.CachedTokens,
		"reasoningTokens", usage.ReasoningTokens,
	)
	return nil
}

func resolvePrompt(prompt, promptFile string) (string, error) {
	if promptFile == "" {
		return prompt, nil
	}
	if prompt != "" {
		return "", errors.New("use either --prompt or --prompt-file, not both")
	}
	if promptFile == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read prompt from stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(promptFile)
	if err != nil {
		return "", fmt.Errorf("read prompt file: %w", err)
	}
	return string(b), nil
}

func saveResponse(builder *paths.Builder, date time.Time, payload, raw string, meta requestMeta) error {
	if err := builder.EnsureOutDir(date); err != nil {
		return err
	}
	if err := os.WriteFile(builder.Payload(date), []byte(payload), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(builder.Raw(date), []byte(raw), 0o644); err != nil {
		return err
	}
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(builder.Meta(date), metaBytes, 0o644)
}
