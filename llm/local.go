package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sakthi87/ragllmmvp-sub001/common/httpx"
	"github.com/sakthi87/ragllmmvp-sub001/config"
	"github.com/sakthi87/ragllmmvp-sub001/schema"
)

// localProvider calls a self-hosted generation endpoint over HTTP.
type localProvider struct {
	hc      *httpx.Client
	baseURL string
	model   string
}

type localGenerateRequest struct {
	Query       string  `json:"query"`
	Context     string  `json:"context,omitempty"`
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	TopK        int     `json:"top_k,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
}

type localGenerateResponse struct {
	Answer string `json:"answer"`
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

func newLocalProvider(cfg config.LLMConfig, hc *httpx.Client) *localProvider {
	if hc == nil {
		hc = httpx.NewFromConfig(nil)
	}
	return &localProvider{
		hc:      hc,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}
}

func (p *localProvider) GenerateAnswer(ctx context.Context, req GenerateRequest) (string, error) {
	req.ApplyDefaults()
	body, err := json.Marshal(localGenerateRequest{
		Query:       req.Query,
		Context:     req.Context,
		Model:       p.model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopK:        req.TopK,
		TopP:        req.TopP,
	})
	if err != nil {
		return "", schema.NewCollaboratorError("llm.local", schema.KindFailure, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return "", schema.NewCollaboratorError("llm.local", schema.KindFailure, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.hc.Do(httpReq)
	if err != nil {
		kind := schema.KindFailure
		if ctx.Err() == context.DeadlineExceeded {
			kind = schema.KindTimeout
		}
		return "", schema.NewCollaboratorError("llm.local", kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", schema.NewCollaboratorError("llm.local", schema.KindFailure,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data))))
	}

	var out localGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", schema.NewCollaboratorError("llm.local", schema.KindFailure, err)
	}
	answer := strings.TrimSpace(out.Answer)
	if answer == "" {
		return "", schema.NewCollaboratorError("llm.local", schema.KindEmptyResult,
			fmt.Errorf("blank answer in response"))
	}
	return answer, nil
}
