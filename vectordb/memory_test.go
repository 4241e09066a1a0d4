package vectordb

import (
	"context"
	"testing"
	"time"

	"github.com/sakthi87/ragllmmvp-sub001/schema"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func seed(t *testing.T) *MemoryProvider {
	t.Helper()
	m := NewMemoryProvider()
	docs := []schema.Document{
		{ID: "a", SourceType: schema.SourceMetadata, DocSubType: schema.SubTypeSchemaMetadata,
			Keyspace: "ks", TableName: "tb", Vector: []float32{1, 0, 0}, EventDate: day("2026-08-20")},
		{ID: "b", SourceType: schema.SourceLogSummary, DocSubType: schema.SubTypeLogsDaily,
			Keyspace: "ks", TableName: "tb", Vector: []float32{0.9, 0.1, 0}, EventDate: day("2026-08-27")},
		{ID: "c", SourceType: schema.SourceLogSummary, DocSubType: schema.SubTypeLogsDaily,
			Keyspace: "ks", TableName: "tb", Vector: []float32{0, 1, 0}, EventDate: day("2020-01-01")},
	}
	if err := m.AddDocs(context.Background(), docs); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestMemorySearchFilters(t *testing.T) {
	m := seed(t)

	res, err := m.SearchDocs(context.Background(), []float32{1, 0, 0},
		&schema.SearchOptions{TopK: 10},
		&schema.SearchFilters{SourceType: schema.SourceLogSummary})
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 2 {
		t.Fatalf("len = %d, want 2", len(res))
	}
	if res[0].Document.ID != "b" {
		t.Errorf("top doc = %s, want b", res[0].Document.ID)
	}
}

func TestMemorySearchDateWindow(t *testing.T) {
	m := seed(t)

	res, err := m.SearchDocs(context.Background(), []float32{1, 0, 0},
		&schema.SearchOptions{TopK: 10},
		&schema.SearchFilters{
			SourceType: schema.SourceLogSummary,
			From:       day("2026-01-01"),
			To:         day("2026-12-31"),
		})
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0].Document.ID != "b" {
		t.Fatalf("res = %+v, want only b", res)
	}
}

func TestMemorySearchThreshold(t *testing.T) {
	m := seed(t)

	// orthogonal vector maps to similarity 0.5; threshold above cuts it
	res, err := m.SearchDocs(context.Background(), []float32{1, 0, 0},
		&schema.SearchOptions{TopK: 10, Threshold: 0.6}, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range res {
		if r.Similarity < 0.6 {
			t.Errorf("doc %s below threshold: %v", r.Document.ID, r.Similarity)
		}
	}
	if len(res) != 2 {
		t.Fatalf("len = %d, want 2", len(res))
	}
}

func TestMemorySearchTopK(t *testing.T) {
	m := seed(t)
	res, err := m.SearchDocs(context.Background(), []float32{1, 0, 0},
		&schema.SearchOptions{TopK: 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 {
		t.Fatalf("len = %d, want 1", len(res))
	}
}

func TestCosineBounds(t *testing.T) {
	if got := cosine([]float32{1, 0}, []float32{1, 0}); got != 1 {
		t.Errorf("identical = %v", got)
	}
	if got := cosine([]float32{1, 0}, []float32{-1, 0}); got != 0 {
		t.Errorf("opposite = %v", got)
	}
	if got := cosine([]float32{1, 0}, []float32{0, 1}); got != 0.5 {
		t.Errorf("orthogonal = %v", got)
	}
	if got := cosine(nil, []float32{1}); got != 0 {
		t.Errorf("empty = %v", got)
	}
}
