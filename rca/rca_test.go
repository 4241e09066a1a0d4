package rca

import (
	"reflect"
	"strings"
	"testing"

	"github.com/sakthi87/ragllmmvp-sub001/schema"
)

func searchDoc(sourceType, name, content string) schema.SearchResult {
	return schema.SearchResult{
		Document: schema.Document{
			SourceType: sourceType,
			SourceName: name,
			Content:    content,
		},
		Similarity: 0.8,
	}
}

func TestRunNoDocuments(t *testing.T) {
	res := New().Run("why is the pipeline slow", nil)
	if res.RootCause.Identified {
		t.Error("cause identified with no documents")
	}
	if res.RootCause.Description != noCauseDescription || res.RootCause.Detail != noCauseDetail {
		t.Errorf("unexpected cause: %+v", res.RootCause)
	}
	if res.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", res.Confidence)
	}
}

func TestRunOutOfMemoryScenario(t *testing.T) {
	docs := []schema.SearchResult{
		searchDoc(schema.SourceLogSummary, "spark-executor-logs",
			"java.lang.outofmemoryerror: gc overhead limit exceeded while processing transaction batch 42"),
	}
	res := New().Run("why did the spark job fail with out of memory", docs)

	if !res.RootCause.Identified || res.RootCause.CauseType != SignalError {
		t.Fatalf("cause = %+v, want identified ERROR", res.RootCause)
	}
	if !strings.Contains(res.RootCause.Description, "error detected in LOG_SUMMARY") {
		t.Errorf("description = %q", res.RootCause.Description)
	}
	if len(res.Fixes) == 0 || res.Fixes[0].Action != "Check application logs" {
		t.Errorf("first fix = %+v", res.Fixes)
	}
	last := res.Fixes[len(res.Fixes)-1]
	if last.Action != "Implement monitoring alerts" || last.Priority != PriorityLow {
		t.Errorf("universal fix = %+v", last)
	}
	if res.Confidence <= 0 || res.Confidence > 1 {
		t.Errorf("confidence out of bounds: %v", res.Confidence)
	}
}

func TestRunMetricThresholdViolation(t *testing.T) {
	docs := []schema.SearchResult{
		searchDoc(schema.SourceMetricSummary, "dataapi-latency",
			"p99 latency crossed the configured threshold for the dataapi read path and stayed there for 40 minutes"),
	}
	res := New().Run("why is read latency so slow today", docs)

	if res.RootCause.CauseType != SignalThresholdViolation {
		t.Fatalf("cause type = %q", res.RootCause.CauseType)
	}
	if res.Fixes[0].Action != "Review threshold configuration" {
		t.Errorf("first fix = %q", res.Fixes[0].Action)
	}
}

func TestPerformanceQuestionBoostsAnomalies(t *testing.T) {
	docs := []schema.SearchResult{
		searchDoc(schema.SourceLogSummary, "logs",
			"occasional timeout observed when writing to the transaction keyspace during compaction"),
		searchDoc(schema.SourceMetricSummary, "metrics",
			"unusual spike in write latency across all dataapi nodes compared to last week"),
	}
	res := New().Run("why is write performance degraded", docs)

	if len(res.Signals) < 2 {
		t.Fatalf("signals = %d", len(res.Signals))
	}
	if res.Signals[0].Type != SignalAnomaly {
		t.Errorf("top signal = %+v, want ANOMALY boosted first", res.Signals[0])
	}
}

func TestSignalStrengthScalesWithOccurrences(t *testing.T) {
	one := searchDoc(schema.SourceLogSummary, "a", "one timeout happened during the nightly load")
	many := searchDoc(schema.SourceLogSummary, "b",
		"timeout then another timeout and a third timeout during the nightly load")

	s1 := detectSignals([]schema.SearchResult{one})
	s3 := detectSignals([]schema.SearchResult{many})
	if len(s1) == 0 || len(s3) == 0 {
		t.Fatal("missing signals")
	}
	if !(s3[0].Strength > s1[0].Strength) {
		t.Errorf("strengths %v vs %v", s3[0].Strength, s1[0].Strength)
	}
	for _, s := range append(s1, s3...) {
		if s.Strength < 0 || s.Strength > 1 {
			t.Errorf("strength out of bounds: %v", s.Strength)
		}
	}
}

func TestFilterNoiseDropsShortContext(t *testing.T) {
	kept := filterNoise([]Signal{
		{Strength: 0.6, Context: "short"},
		{Strength: 0.4, Context: "this context is long enough to keep"},
		{Strength: 0.6, Context: "this context is long enough to keep"},
	})
	if len(kept) != 1 {
		t.Errorf("kept = %d, want 1", len(kept))
	}
}

func TestEvidenceLimitedToThree(t *testing.T) {
	var docs []schema.SearchResult
	for _, name := range []string{"a", "b", "c", "d"} {
		docs = append(docs, searchDoc(schema.SourceLogSummary, name,
			"repeated connection refused while reaching the downstream service endpoint"))
	}
	res := New().Run("what caused the errors", docs)
	if len(res.RootCause.Evidence) != evidenceLimit {
		t.Errorf("evidence = %d, want %d", len(res.RootCause.Evidence), evidenceLimit)
	}
}

func TestRunDeterministic(t *testing.T) {
	docs := []schema.SearchResult{
		searchDoc(schema.SourceLogSummary, "logs",
			"failure writing batch, exception raised, then timeout during retry of the same batch"),
		searchDoc(schema.SourceMetricSummary, "metrics",
			"throughput drop after the threshold exceeded alert fired for the ingest lag metric"),
	}
	p := New()
	first := p.Run("why did ingestion fail", docs)
	for i := 0; i < 20; i++ {
		if got := p.Run("why did ingestion fail", docs); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d diverged", i)
		}
	}
}

func TestFormatIncludesSections(t *testing.T) {
	docs := []schema.SearchResult{
		searchDoc(schema.SourceLogSummary, "logs", "nullpointer exception thrown while resolving the lineage graph"),
	}
	out := New().Run("what caused the crash", docs).Format()
	for _, want := range []string{"**Root Cause Analysis:**", "Evidence:", "Recommended actions:", "Confidence:"} {
		if !strings.Contains(out, want) {
			t.Errorf("formatted output missing %q:\n%s", want, out)
		}
	}
}
