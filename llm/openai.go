package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/sakthi87/ragllmmvp-sub001/config"
	"github.com/sakthi87/ragllmmvp-sub001/schema"
)

type openAIProvider struct {
	client openai.Client
	model  string
}

func newOpenAIProvider(cfg config.LLMConfig) *openAIProvider {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &openAIProvider{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

func (p *openAIProvider) GenerateAnswer(ctx context.Context, req GenerateRequest) (string, error) {
	req.ApplyDefaults()

	messages := []openai.ChatCompletionMessageParamUnion{}
	if req.Context != "" {
		messages = append(messages, openai.SystemMessage(req.Context))
	}
	messages = append(messages, openai.UserMessage(req.Query))

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.model),
		Messages:    messages,
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
		Temperature: openai.Float(req.Temperature),
		TopP:        openai.Float(req.TopP),
	})
	if err != nil {
		kind := schema.KindFailure
		if ctx.Err() == context.DeadlineExceeded {
			kind = schema.KindTimeout
		}
		return "", schema.NewCollaboratorError("llm.openai", kind, err)
	}
	if len(resp.Choices) == 0 {
		return "", schema.NewCollaboratorError("llm.openai", schema.KindEmptyResult, fmt.Errorf("no choices returned"))
	}
	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", schema.NewCollaboratorError("llm.openai", schema.KindEmptyResult, fmt.Errorf("blank completion"))
	}
	return answer, nil
}
