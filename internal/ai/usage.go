package ai

import (
	genai "github.com/google/generative-ai-go/genai"
	"github.com/openai/openai-go/v3/responses"
)

// TokenUsage captures token counts reported by the provider.
type TokenUsage struct {
	InputTokens     int64 `json:"inputTokens"`
	OutputTokens    int64 `json:"outputTokens"`
	TotalTokens     int64 `json:"totalTokens"`
	CachedTokens    int64 `json:"cachedTokens"`
	ReasoningTokens int64 `json:"reasoningTokens"`
}

func usageFromOpenAI(usage responses.ResponseUsage) TokenUsage {
	return TokenUsage{
		InputTokens:     usage.InputTokens,
		OutputTokens:    usage.OutputTokens,
		TotalTokens:     usage.TotalTokens,
		CachedTokens:    usage.InputTokensDetails.CachedTokens,
		ReasoningTokens: usage.OutputTokensDetails.ReasoningTokens,
	}
}

func usageFromGemini(md *genai.UsageMetadata) TokenUsage {
	if md == nil {
		return TokenUsage{}
	}
	return TokenUsage{
		InputTokens:  int64(md.PromptTokenCount),
		OutputTokens: int64(md.CandidatesTokenCount),
		TotalTokens:  int64(md.TotalTokenCount),
		CachedTokens: int64(md.CachedContentTokenCount),
	}
}
