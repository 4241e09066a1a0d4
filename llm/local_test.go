package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sakthi87/ragllmmvp-sub001/config"
	"github.com/sakthi87/ragllmmvp-sub001/schema"
)

func localLLM(t *testing.T, handler http.HandlerFunc) Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p, err := NewProvider(config.LLMConfig{Provider: "local", BaseURL: srv.URL, Model: "phi-4"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLocalGenerateAnswer(t *testing.T) {
	p := localLLM(t, func(w http.ResponseWriter, r *http.Request) {
		var req localGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		// sampling defaults must be on the wire
		if req.TopK != 50 || req.TopP != 0.95 {
			t.Errorf("sampling = top_k %d top_p %v", req.TopK, req.TopP)
		}
		json.NewEncoder(w).Encode(localGenerateResponse{Answer: "the table has 12 columns", Status: "success"})
	})

	got, err := p.GenerateAnswer(context.Background(), GenerateRequest{
		Query: "how many columns", MaxTokens: 200, Temperature: 0.3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "the table has 12 columns" {
		t.Errorf("answer = %q", got)
	}
}

func TestLocalBlankAnswerIsEmptyResult(t *testing.T) {
	p := localLLM(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(localGenerateResponse{Answer: "   ", Status: "success"})
	})

	_, err := p.GenerateAnswer(context.Background(), GenerateRequest{Query: "q"})
	if !schema.IsEmptyResult(err) {
		t.Fatalf("err = %v, want empty-result kind", err)
	}
}

func TestLocalTimeoutKind(t *testing.T) {
	p := localLLM(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(localGenerateResponse{Answer: "late"})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.GenerateAnswer(ctx, GenerateRequest{Query: "q"})
	if !schema.IsTimeout(err) {
		t.Fatalf("err = %v, want timeout kind", err)
	}
}
