package rewrite

import (
	"testing"

	"github.com/sakthi87/ragllmmvp-sub001/config"
	"github.com/sakthi87/ragllmmvp-sub001/schema"
)

func catalog() *config.RewriteCatalog {
	return &config.RewriteCatalog{Templates: []config.RewriteTemplate{
		{
			DocSubType:          schema.SubTypeSchemaMetadata,
			SourceType:          schema.SourceMetadata,
			RewriteTemplate:     "schema definition columns and types for {keyspace}.{table}",
			SimilarityThreshold: 0.72,
		},
		{
			DocSubType:      schema.SubTypeLogsDaily,
			SourceType:      schema.SourceLogSummary,
			RewriteTemplate: "daily error summary for {keyspace}.{table}",
		},
	}}
}

func TestRewrite(t *testing.T) {
	r := New(catalog())

	got := r.Rewrite("what does the table look like", schema.SubTypeSchemaMetadata, "transaction_keyspace", "dda_transactions")
	want := "schema definition columns and types for transaction_keyspace.dda_transactions"
	if got != want {
		t.Errorf("Rewrite = %q, want %q", got, want)
	}
}

func TestRewritePassThrough(t *testing.T) {
	r := New(catalog())

	q := "what is the row count"
	if got := r.Rewrite(q, "", "ks", "tb"); got != q {
		t.Errorf("empty sub-type: got %q", got)
	}
	if got := r.Rewrite(q, schema.SubTypeMetricsDaily, "ks", "tb"); got != q {
		t.Errorf("unknown sub-type: got %q", got)
	}
	if got := r.Rewrite("  ", schema.SubTypeSchemaMetadata, "ks", "tb"); got != "  " {
		t.Errorf("blank question: got %q", got)
	}
}

func TestRewriteWithoutCatalog(t *testing.T) {
	r := New(nil)
	q := "anything at all"
	if got := r.Rewrite(q, schema.SubTypeSchemaMetadata, "ks", "tb"); got != q {
		t.Errorf("nil catalog must pass through, got %q", got)
	}
	if got := r.SimilarityThreshold(schema.SubTypeSchemaMetadata, 0.65); got != 0.65 {
		t.Errorf("nil catalog threshold = %v, want default", got)
	}
}

func TestSimilarityThreshold(t *testing.T) {
	r := New(catalog())

	if got := r.SimilarityThreshold(schema.SubTypeSchemaMetadata, 0.65); got != 0.72 {
		t.Errorf("configured threshold = %v", got)
	}
	// Template without a threshold falls back to the default.
	if got := r.SimilarityThreshold(schema.SubTypeLogsDaily, 0.65); got != 0.65 {
		t.Errorf("default threshold = %v", got)
	}
	if got := r.SimilarityThreshold("nope", 0.5); got != 0.5 {
		t.Errorf("unknown sub-type threshold = %v", got)
	}
}
