package schema

import (
	"strings"
	"time"
)

// Source types group documents by the platform subsystem that produced them.
const (
	SourceMetadata      = "METADATA"
	SourceLineage       = "LINEAGE"
	SourceLogSummary    = "LOG_SUMMARY"
	SourceMetricSummary = "METRIC_SUMMARY"
)

// Document sub-types. Each one belongs to exactly one source type,
// derived from its name prefix (see SourceTypeFor).
const (
	SubTypeBusinessMetadata     = "business_metadata"
	SubTypeSchemaMetadata       = "schema_metadata"
	SubTypeStorageConfiguration = "storage_configuration"
	SubTypeTableStatistics      = "table_statistics"
	SubTypeDataLifecycle        = "data_lifecycle"
	SubTypeLineageKafka         = "lineage_kafka"
	SubTypeLineageSpark         = "lineage_spark"
	SubTypeLineageDataAPI       = "lineage_dataapi"
	SubTypeLogsDaily            = "logs_daily"
	SubTypeLogsWeekly           = "logs_weekly"
	SubTypeMetricsDaily         = "metrics_daily"
	SubTypeMetricsWeekly        = "metrics_weekly"
)

// AllSourceTypes returns the canonical ordering of source types. The same
// ordering drives default intent expansion and answer aggregation.
func AllSourceTypes() []string {
	return []string{SourceMetadata, SourceLineage, SourceLogSummary, SourceMetricSummary}
}

// SourceTypeFor derives the source type of a document sub-type from its
// name prefix. Unknown prefixes return an empty string.
func SourceTypeFor(docSubType string) string {
	s := strings.ToLower(strings.TrimSpace(docSubType))
	switch {
	case strings.HasPrefix(s, "business_"),
		strings.HasPrefix(s, "schema_"),
		strings.HasPrefix(s, "storage_"),
		strings.HasPrefix(s, "table_"),
		strings.HasPrefix(s, "data_"):
		return SourceMetadata
	case strings.HasPrefix(s, "lineage_"):
		return SourceLineage
	case strings.HasPrefix(s, "logs_"):
		return SourceLogSummary
	case strings.HasPrefix(s, "metrics_"):
		return SourceMetricSummary
	}
	return ""
}

// Document is one retrievable unit of platform knowledge: a metadata
// description, a lineage edge summary, or a daily/weekly log or metric
// rollup for a single source component.
type Document struct {
	ID          string            `json:"id"`
	ClusterName string            `json:"cluster_name,omitempty"`
	SourceType  string            `json:"source_type"`
	DocSubType  string            `json:"doc_sub_type"`
	EntityType  string            `json:"entity_type,omitempty"`
	Component   string            `json:"component,omitempty"`
	SourceName  string            `json:"source_name"`
	Keyspace    string            `json:"keyspace,omitempty"`
	TableName   string            `json:"table_name,omitempty"`
	Domain      string            `json:"domain,omitempty"`
	SubDomain   string            `json:"sub_domain,omitempty"`
	EventDate   time.Time         `json:"event_date,omitempty"`
	TimeWindow  string            `json:"time_window,omitempty"`
	Content     string            `json:"content"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Vector      []float32         `json:"vector,omitempty"`
	CreatedAt   time.Time         `json:"created_at,omitempty"`
}

// SearchResult pairs a document with its cosine similarity to the query
// vector. Similarity is normalized to [0, 1].
type SearchResult struct {
	Document   Document `json:"document"`
	Similarity float64  `json:"similarity"`
}

// SearchOptions controls a single vector search call.
type SearchOptions struct {
	TopK      int
	Threshold float64
}

// SearchFilters restricts a vector search to matching scalar fields.
// Zero values mean "no restriction" for that field.
type SearchFilters struct {
	ClusterName string
	SourceType  string
	DocSubType  string
	Keyspace    string
	TableName   string
	From        time.Time
	To          time.Time
}

// DetectedIntent is one classified facet of a user question.
type DetectedIntent struct {
	DocSubType     string
	SourceType     string
	TimeWindowDays int
}

// SectionHeader returns the aggregation header for a source type section.
func SectionHeader(sourceType string) string {
	switch sourceType {
	case SourceMetadata:
		return "**Schema Information:**"
	case SourceLogSummary:
		return "**Recent Errors (Last 24 Hours):**"
	case SourceMetricSummary:
		return "**Current Metrics:**"
	case SourceLineage:
		return "**Data Lineage:**"
	default:
		return "**" + sourceType + ":**"
	}
}

// CloneDocument returns a deep copy so cached results cannot be mutated
// by callers.
func CloneDocument(d Document) Document {
	out := d
	if d.Metadata != nil {
		out.Metadata = make(map[string]string, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	if d.Vector != nil {
		out.Vector = make([]float32, len(d.Vector))
		copy(out.Vector, d.Vector)
	}
	return out
}

// CloneResults deep-copies a result slice.
func CloneResults(in []SearchResult) []SearchResult {
	if in == nil {
		return nil
	}
	out := make([]SearchResult, len(in))
	for i, r := range in {
		out[i] = SearchResult{Document: CloneDocument(r.Document), Similarity: r.Similarity}
	}
	return out
}
