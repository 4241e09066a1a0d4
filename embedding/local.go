package embedding

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

// localProvider calls a self-hosted embedding endpoint over HTTP.
type localProvider struct {
	hc      *httpx.Client
	baseURL string
	model   string
	dims    int
}

type localEmbedRequest struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

type localEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
	Status    string    `json:"status,omitempty"`
	Error     string    `json:"error,omitempty"`
}

func newLocalProvider(cfg config.EmbeddingConfig, hc *httpx.Client) *localProvider {
	if hc == nil {
		hc = httpx.NewFromConfig(nil)
	}
	return &localProvider{
		hc:      hc,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		dims:    cfg.Dimensions,
	}
}

func (p *localProvider) Dimensions() int { return p.dims }

func (p *localProvider) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(localEmbedRequest{Text: text, Model: p.model})
	if err != nil {
		return nil, schema.NewCollaboratorError("embedding.local", schema.KindFailure, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, schema.NewCollaboratorError("embedding.local", schema.KindFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.hc.Do(req)
	if err != nil {
		kind := schema.KindFailure
		if ctx.Err() == context.DeadlineExceeded {
			kind = schema.KindTimeout
		}
		return nil, schema.NewCollaboratorError("embedding.local", kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, schema.NewCollaboratorError("embedding.local", schema.KindFailure,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data))))
	}

	var out localEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, schema.NewCollaboratorError("embedding.local", schema.KindFailure, err)
	}
	if len(out.Embedding) == 0 {
		return nil, schema.NewCollaboratorError("embedding.local", schema.KindEmptyResult,
			fmt.Errorf("empty embedding in response"))
	}
	if p.dims > 0 && len(out.Embedding) != p.dims {
		return nil, schema.NewCollaboratorError("embedding.local", schema.KindFailure,
			fmt.Errorf("dimension mismatch: got %d, want %d", len(out.Embedding), p.dims))
	}
	return out.Embedding, nil
}
