package vectordb

import (
	"context"
	"fmt"
	"strings"

	"github.com/sakthi87/ragllmmvp-sub001/config"
	"github.com/sakthi87/ragllmmvp-sub001/schema"
)

// Provider is a filtered vector search backend over the platform document
// collection.
type Provider interface {
	// SearchDocs returns documents ordered by similarity descending.
	// Filters restrict the candidate set before ranking; a zero filter
	// field means no restriction.
	SearchDocs(ctx context.Context, vector []float32, opts *schema.SearchOptions, filters *schema.SearchFilters) ([]schema.SearchResult, error)
	// AddDocs upserts documents into the collection.
	AddDocs(ctx context.Context, docs []schema.Document) error
	Close() error
}

// NewProvider selects a vector store by configuration.
func NewProvider(ctx context.Context, cfg config.VectorDBConfig, dimensions int) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "milvus":
		return newMilvusProvider(ctx, cfg, dimensions)
	case "memory":
		return NewMemoryProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported vectordb provider: %s", cfg.Provider)
	}
}
