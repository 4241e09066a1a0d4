package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/sakthi87/ragllmmvp-sub001/schema"
)

func result(sourceType, subType, name, content string, sim float64) schema.SearchResult {
	d, _ := time.Parse("2006-01-02", "2026-08-27")
	return schema.SearchResult{
		Document: schema.Document{
			SourceType: sourceType,
			DocSubType: subType,
			SourceName: name,
			Content:    content,
			EventDate:  d,
		},
		Similarity: sim,
	}
}

func TestBuildSectionsCanonicalOrder(t *testing.T) {
	docs := []schema.SearchResult{
		result(schema.SourceMetricSummary, schema.SubTypeMetricsDaily, "m1", "qps 1200", 0.9),
		result(schema.SourceMetadata, schema.SubTypeSchemaMetadata, "t1", "12 columns", 0.95),
		result(schema.SourceLogSummary, schema.SubTypeLogsDaily, "l1", "3 errors", 0.8),
	}
	p := Build("how is the table doing", docs)

	iMeta := strings.Index(p, "=== METADATA ===")
	iLogs := strings.Index(p, "=== LOG_SUMMARY ===")
	iMetrics := strings.Index(p, "=== METRIC_SUMMARY ===")
	if iMeta < 0 || iLogs < 0 || iMetrics < 0 {
		t.Fatalf("missing sections in prompt:\n%s", p)
	}
	if !(iMeta < iLogs && iLogs < iMetrics) {
		t.Error("sections not in canonical order")
	}
	if !strings.Contains(p, "[Relevance: 95.0%]") {
		t.Error("relevance annotation missing")
	}
	if !strings.Contains(p, "(Date: 2026-08-27)") {
		t.Error("date annotation missing")
	}
	if !strings.Contains(p, SystemPrompt) {
		t.Error("system prompt missing")
	}
}

func TestBuildWithoutContext(t *testing.T) {
	p := Build("where is my data", nil)
	if !strings.Contains(p, "(no documents retrieved)") {
		t.Errorf("no-context marker missing:\n%s", p)
	}
}

func TestBuildForIntentScopesToOneType(t *testing.T) {
	docs := []schema.SearchResult{
		result(schema.SourceLineage, schema.SubTypeLineageKafka, "topic-a", "feeds from topic-a", 0.88),
	}
	p := BuildForIntent("where does this come from", schema.SourceLineage, docs)
	if !strings.Contains(p, "=== LINEAGE ===") {
		t.Error("lineage section missing")
	}
	if strings.Contains(p, "=== METADATA ===") {
		t.Error("unexpected section present")
	}
}

func TestBudget(t *testing.T) {
	cases := []struct {
		name      string
		requested int
		intents   int
		want      int
	}{
		{"default single intent", 0, 1, 200},
		{"default three intents", 0, 3, 350},
		{"default hits cap", 0, 10, 512},
		{"explicit below base floored", 100, 2, 200},
		{"explicit respected", 300, 2, 300},
		{"explicit above cap clamped", 900, 1, 512},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Budget(c.requested, c.intents, 200, 50, 512); got != c.want {
				t.Errorf("Budget = %d, want %d", got, c.want)
			}
		})
	}
}

func TestTokenCountPositive(t *testing.T) {
	if got := TokenCount("the quick brown fox jumps over the lazy dog"); got <= 0 {
		t.Errorf("TokenCount = %d", got)
	}
}
