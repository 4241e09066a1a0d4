package embedding

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/sakthi87/ragllmmvp-sub001/config"
	"github.com/sakthi87/ragllmmvp-sub001/schema"
)

type openAIProvider struct {
	client openai.Client
	model  string
	dims   int
}

func newOpenAIProvider(cfg config.EmbeddingConfig) *openAIProvider {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &openAIProvider{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		dims:   cfg.Dimensions,
	}
}

func (p *openAIProvider) Dimensions() int { return p.dims }

func (p *openAIProvider) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(p.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Dimensions: openai.Int(int64(p.dims)),
	})
	if err != nil {
		kind := schema.KindFailure
		if ctx.Err() == context.DeadlineExceeded {
			kind = schema.KindTimeout
		}
		return nil, schema.NewCollaboratorError("embedding.openai", kind, err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, schema.NewCollaboratorError("embedding.openai", schema.KindEmptyResult, fmt.Errorf("no embedding returned"))
	}
	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	if p.dims > 0 && len(vec) != p.dims {
		return nil, schema.NewCollaboratorError("embedding.openai", schema.KindFailure,
			fmt.Errorf("dimension mismatch: got %d, want %d", len(vec), p.dims))
	}
	return vec, nil
}
