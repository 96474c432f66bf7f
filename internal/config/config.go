package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	defaultGeminiModel = "gemini-1.5-flash"
	defaultOpenAIModel = "gpt-4o-mini"
)

// Config holds resolved configuration values after merging file, env, and flags.
type Config struct {
	Provider  string `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model     string `json:"model,omitempty" yaml:"model,omitempty"`
	MIMEType  string `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
	OutDir    string `json:"outDir,omitempty" yaml:"outDir,omitempty"`
	Overwrite bool   `json:"overwrite,omitempty" yaml:"overwrite,omitempty"`
	S3Bucket  string `json:"s3Bucket,omitempty" yaml:"s3Bucket,omitempty"`
	S3Prefix  string `json:"s3Prefix,omitempty" yaml:"s3Prefix,omitempty"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`

	// Not persisted to file; sourced from env only. The Gemini key is read
	// by requestor.New itself.
	OpenAIAPIKey string `json:"-" yaml:"-"`
}

// Overrides represents optional overrides from env or flags.
// Only non-nil pointers are applied during merge.
type Overrides struct {
	Provider  *string
	Model     *string
	MIMEType  *string
	OutDir    *string
	Overwrite *bool
	S3Bucket  *string
	S3Prefix  *string
	Region    *string
}

func Default() Config {
	return Config{
		Provider: ProviderGemini,
		MIMEType: "application/pdf",
		OutDir:   "out",
		S3Prefix: "gemreq",
	}
}

// LoadFile reads a JSON or YAML config, chosen by extension. If the file is
// not found, returns defaults and no error.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables that are already set are left alone; a missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// FromEnv reads env vars and returns overrides and the OpenAI key.
func FromEnv() (Overrides, string) {
	var ov Overrides

	if v, ok := os.LookupEnv("GEMREQ_PROVIDER"); ok {
		ov.Provider = &[]string{v}[0]
	}
	if v, ok := os.LookupEnv("GEMREQ_MODEL"); ok {
		ov.Model = &[]string{v}[0]
	}
	if v, ok := os.LookupEnv("GEMREQ_MIME_TYPE"); ok {
		ov.MIMEType = &[]string{v}[0]
	}
	if v, ok := os.LookupEnv("GEMREQ_OUT_DIR"); ok {
		ov.OutDir = &[]string{v}[0]
	}
	if v, ok := os.LookupEnv("GEMREQ_OVERWRITE"); ok {
		if b, err := parseBool(v); err == nil {
			ov.Overwrite = &[]bool{b}[0]
		}
	}
	if v, ok := os.LookupEnv("AWS_S3_BUCKET"); ok {
		ov.S3Bucket = &[]string{v}[0]
	}
	if v, ok := os.LookupEnv("AWS_S3_PREFIX"); ok {
		ov.S3Prefix = &[]string{v}[0]
	}
	if v, ok := os.LookupEnv("AWS_REGION"); ok {
		ov.Region = &[]string{v}[0]
	}
	return ov, os.Getenv("OPENAI_API_KEY")
}

func parseBool(s string) (bool, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return false, fmt.Errorf("empty bool")
	}
	if s == "1" || s == "t" || s == "true" || s == "y" || s == "yes" || s == "on" {
		return true, nil
	}
	if s == "0" || s == "f" || s == "false" || s == "n" || s == "no" || s == "off" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

// Merge applies overrides in order: file -> env -> flags. An unset model is
// resolved to the provider's default.
func Merge(fileCfg Config, env Overrides, flags Overrides, apiKey string) Config {
	cfg := fileCfg

	apply := func(ov Overrides) {
		if ov.Provider != nil {
			cfg.Provider = *ov.Provider
		}
		if ov.Model != nil {
			cfg.Model = *ov.Model
		}
		if ov.MIMEType != nil {
			cfg.MIMEType = *ov.MIMEType
		}
		if ov.OutDir != nil {
			cfg.OutDir = *ov.OutDir
		}
		if ov.Overwrite != nil {
			cfg.Overwrite = *ov.Overwrite
		}
		if ov.S3Bucket != nil {
			cfg.S3Bucket = *ov.S3Bucket
		}
		if ov.S3Prefix != nil {
			cfg.S3Prefix = *ov.S3Prefix
		}
		if ov.Region != nil {
			cfg.Region = *ov.Region
		}
	}

	apply(env)
	apply(flags)

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Provider == "" {
		cfg.Provider = ProviderGemini
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}
	cfg.OpenAIAPIKey = apiKey
	return cfg
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	if provider == ProviderOpenAI {
		return defaultOpenAIModel
	}
	return defaultGeminiModel
}

// Validation helpers
func ValidateForRequest(cfg Config) error {
	switch cfg.Provider {
	case ProviderGemini:
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY is required for openai requests")
		}
	default:
		return fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
	if cfg.Model == "" {
		return errors.New("model is required")
	}
	return nil
}

func ValidateForPublish(cfg Config) error {
	if cfg.S3Bucket == "" {
		return errors.New("S3 bucket is required for publish")
	}
	if cfg.Region == "" {
		return errors.New("AWS region is required for publish")
	}
	return nil
}
