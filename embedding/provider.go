package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/sakthi87/ragllmmvp-sub001/common/httpx"
	"github.com/sakthi87/ragllmmvp-sub001/config"
)

// Provider turns text into a fixed-dimension embedding vector. A provider
// must return an error for anything other than a complete vector of the
// configured dimension; callers never receive a zero vector.
type Provider interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// NewProvider selects an embedding provider by configuration.
func NewProvider(cfg config.EmbeddingConfig, hc *httpx.Client) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return newOpenAIProvider(cfg), nil
	case "local":
		return newLocalProvider(cfg, hc), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
