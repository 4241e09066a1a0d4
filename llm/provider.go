package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sakthi87/ragllmmvp-sub001/common/httpx"
	"github.com/sakthi87/ragllmmvp-sub001/config"
)

// GenerateRequest carries one generation call. Context is the already
// formatted prompt context block; sampling defaults are applied by
// ApplyDefaults.
type GenerateRequest struct {
	Query       string
	Context     string
	MaxTokens   int
	Temperature float64
	TopK        int
	TopP        float64
}

// ApplyDefaults fills the sampling parameters the platform model expects.
func (r *GenerateRequest) ApplyDefaults() {
	if r.TopK <= 0 {
		r.TopK = 50
	}
	if r.TopP <= 0 {
		r.TopP = 0.95
	}
}

// Provider generates an answer for a prompt. A blank answer returns
// ("", empty-result error): that is a valid model response and callers
// treat it as retry-eligible, not fatal.
type Provider interface {
	GenerateAnswer(ctx context.Context, req GenerateRequest) (string, error)
}

// NewProvider selects a generation provider by configuration.
func NewProvider(cfg config.LLMConfig, hc *httpx.Client) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return newOpenAIProvider(cfg), nil
	case "local":
		return newLocalProvider(cfg, hc), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
