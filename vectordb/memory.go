package vectordb

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/sakthi87/ragllmmvp-sub001/schema"
)

// MemoryProvider is an exact-search in-memory store used for tests and
// local runs without a vector database.
type MemoryProvider struct {
	mu   sync.RWMutex
	docs map[string]schema.Document
}

// NewMemoryProvider creates an empty in-memory store.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{docs: make(map[string]schema.Document)}
}

func (m *MemoryProvider) AddDocs(_ context.Context, docs []schema.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range docs {
		m.docs[d.ID] = schema.CloneDocument(d)
	}
	return nil
}

func (m *MemoryProvider) SearchDocs(_ context.Context, vector []float32, opts *schema.SearchOptions, filters *schema.SearchFilters) ([]schema.SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	topK := 10
	threshold := 0.0
	if opts != nil {
		if opts.TopK > 0 {
			topK = opts.TopK
		}
		threshold = opts.Threshold
	}

	out := make([]schema.SearchResult, 0, topK)
	for _, d := range m.docs {
		if !matches(d, filters) {
			continue
		}
		sim := cosine(vector, d.Vector)
		if sim < threshold {
			continue
		}
		out = append(out, schema.SearchResult{Document: schema.CloneDocument(d), Similarity: sim})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		// stable across runs for equal scores
		return out[i].Document.ID < out[j].Document.ID
	})
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func (m *MemoryProvider) Close() error { return nil }

func matches(d schema.Document, f *schema.SearchFilters) bool {
	if f == nil {
		return true
	}
	if f.ClusterName != "" && d.ClusterName != f.ClusterName {
		return false
	}
	if f.SourceType != "" && d.SourceType != f.SourceType {
		return false
	}
	if f.DocSubType != "" && d.DocSubType != f.DocSubType {
		return false
	}
	if f.Keyspace != "" && d.Keyspace != f.Keyspace {
		return false
	}
	if f.TableName != "" && d.TableName != f.TableName {
		return false
	}
	if !f.From.IsZero() && !d.EventDate.IsZero() && d.EventDate.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !d.EventDate.IsZero() && d.EventDate.After(f.To) {
		return false
	}
	return true
}

// cosine returns similarity normalized to [0, 1].
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// map [-1, 1] onto [0, 1]
	sim = (sim + 1) / 2
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
