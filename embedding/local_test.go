package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sakthi87/ragllmmvp-sub001/config"
	"github.com/sakthi87/ragllmmvp-sub001/schema"
)

func localServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, Provider) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p, err := NewProvider(config.EmbeddingConfig{
		Provider:   "local",
		BaseURL:    srv.URL,
		Dimensions: 3,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return srv, p
}

func TestLocalGetEmbedding(t *testing.T) {
	_, p := localServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req localEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Text != "hello" {
			t.Errorf("text = %q", req.Text)
		}
		json.NewEncoder(w).Encode(localEmbedResponse{Embedding: []float32{0.1, 0.2, 0.3}, Status: "success"})
	})

	vec, err := p.GetEmbedding(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("len = %d", len(vec))
	}
}

func TestLocalEmptyEmbeddingIsTypedError(t *testing.T) {
	_, p := localServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(localEmbedResponse{Status: "success"})
	})

	_, err := p.GetEmbedding(context.Background(), "hello")
	if !schema.IsEmptyResult(err) {
		t.Fatalf("err = %v, want empty-result kind", err)
	}
}

func TestLocalDimensionMismatch(t *testing.T) {
	_, p := localServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(localEmbedResponse{Embedding: []float32{0.1, 0.2}})
	})

	if _, err := p.GetEmbedding(context.Background(), "hello"); err == nil {
		t.Fatal("dimension mismatch must error")
	}
}

func TestUnsupportedProvider(t *testing.T) {
	if _, err := NewProvider(config.EmbeddingConfig{Provider: "nope"}, nil); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
