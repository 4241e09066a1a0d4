package intent

import (
	"strings"

	"github.com/sakthi87/ragllmmvp-sub001/config"
	"github.com/sakthi87/ragllmmvp-sub001/schema"
)

// Classifier maps free-text questions to platform source types and
// document sub-types using ordered keyword rule tables. All rule state is
// built once at construction and never mutated, so classification is
// deterministic and safe for concurrent use.
type Classifier struct {
	sourceRules  []sourceRule
	metadataSubs []keywordSub
	configured   []config.IntentRule
	examples     []exampleRule
}

type sourceRule struct {
	keywords    []string
	sourceTypes []string
}

type keywordSub struct {
	keywords   []string
	docSubType string
}

type exampleRule struct {
	docSubType string
	sourceType string
	words      [][]string // significant words per example question
}

// Built-in keyword table, evaluated in order. A question can match any
// number of rules; the union of their source types is the intent set.
var defaultSourceRules = []sourceRule{
	{[]string{"schema", "column", "data type", "datatype", "table structure"}, []string{schema.SourceMetadata}},
	{[]string{"description", "business", "owner", "domain"}, []string{schema.SourceMetadata}},
	{[]string{"storage", "disk", "compression", "compaction"}, []string{schema.SourceMetadata}},
	{[]string{"statistics", "row count", "rows", "cardinality"}, []string{schema.SourceMetadata}},
	{[]string{"retention", "lifecycle", "ttl", "expiry"}, []string{schema.SourceMetadata}},
	{[]string{"lineage", "upstream", "downstream", "flow", "pipeline", "feeds"}, []string{schema.SourceLineage}},
	{[]string{"kafka", "topic"}, []string{schema.SourceLineage}},
	{[]string{"spark", "job"}, []string{schema.SourceLineage}},
	{[]string{"api", "endpoint"}, []string{schema.SourceLineage}},
	{[]string{"error", "exception", "fail", "crash", "log", "issue", "problem"}, []string{schema.SourceLogSummary}},
	{[]string{"latency", "throughput", "performance", "metric", "slow", "qps", "p99"}, []string{schema.SourceMetricSummary}},
	{[]string{"yesterday", "today", "delayed"}, []string{schema.SourceLogSummary, schema.SourceMetricSummary}},
	{[]string{"why", "root cause", "what caused", "rca"}, []string{schema.SourceLogSummary, schema.SourceMetricSummary, schema.SourceLineage}},
}

// Metadata sub-type keywords, first match wins.
var defaultMetadataSubs = []keywordSub{
	{[]string{"schema", "column", "data type", "datatype", "structure"}, schema.SubTypeSchemaMetadata},
	{[]string{"storage", "disk", "compression", "compaction"}, schema.SubTypeStorageConfiguration},
	{[]string{"statistics", "row count", "rows", "cardinality", "size"}, schema.SubTypeTableStatistics},
	{[]string{"retention", "lifecycle", "ttl", "expiry", "archival"}, schema.SubTypeDataLifecycle},
	{[]string{"description", "business", "owner", "domain", "purpose"}, schema.SubTypeBusinessMetadata},
}

var dailyKeywords = []string{"today", "yesterday", "last 24 hours", "last 24h", "now", "currently", "recent", "just now"}
var weeklyKeywords = []string{"this week", "last week", "past week", "last 7 days", "weekly"}

var rcaKeywords = []string{"why", "root cause", "what caused", "rca", "delayed", "bottleneck"}

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "what": {}, "are": {}, "was": {}, "were": {},
	"how": {}, "with": {}, "this": {}, "that": {}, "have": {}, "has": {}, "does": {},
	"can": {}, "its": {}, "any": {}, "all": {}, "there": {}, "about": {}, "into": {},
	"from": {}, "show": {}, "tell": {}, "give": {},
}

// New builds a classifier. Both catalogs are optional; nil catalogs leave
// only the built-in rule tables active.
func New(intents *config.IntentCatalog, rewrites *config.RewriteCatalog) *Classifier {
	c := &Classifier{
		sourceRules:  defaultSourceRules,
		metadataSubs: defaultMetadataSubs,
	}
	if intents != nil {
		c.configured = intents.Rules
	}
	if rewrites != nil {
		for _, t := range rewrites.Templates {
			if t.DocSubType == "" || len(t.ExampleQuestions) == 0 {
				continue
			}
			er := exampleRule{docSubType: t.DocSubType, sourceType: t.SourceType}
			if er.sourceType == "" {
				er.sourceType = schema.SourceTypeFor(t.DocSubType)
			}
			for _, q := range t.ExampleQuestions {
				if ws := significantWords(q); len(ws) > 0 {
					er.words = append(er.words, ws)
				}
			}
			if len(er.words) > 0 {
				c.examples = append(c.examples, er)
			}
		}
	}
	return c
}

// DetectIntents returns the ordered, distinct source types a question
// touches. A blank question or one matching no rule returns all source
// types in canonical order.
func (c *Classifier) DetectIntents(question string) []string {
	q := normalize(question)
	if q == "" {
		return schema.AllSourceTypes()
	}

	seen := make(map[string]struct{}, 4)
	var out []string
	for _, r := range c.sourceRules {
		if !matchesAny(q, r.keywords) {
			continue
		}
		for _, st := range r.sourceTypes {
			if _, ok := seen[st]; ok {
				continue
			}
			seen[st] = struct{}{}
			out = append(out, st)
		}
	}
	if len(out) == 0 {
		return schema.AllSourceTypes()
	}
	return out
}

// DetectIntentsDetailed resolves each detected source type to a concrete
// sub-type and time window.
func (c *Classifier) DetectIntentsDetailed(question string) []schema.DetectedIntent {
	types := c.DetectIntents(question)
	out := make([]schema.DetectedIntent, 0, len(types))
	for _, st := range types {
		di := schema.DetectedIntent{SourceType: st}
		if sub, ok := c.DetectSubType(question, st); ok {
			di.DocSubType = sub
			switch {
			case strings.HasSuffix(sub, "_daily"):
				di.TimeWindowDays = 1
			case strings.HasSuffix(sub, "_weekly"):
				di.TimeWindowDays = 7
			}
		}
		out = append(out, di)
	}
	return out
}

// DetectSubType narrows a source type to a document sub-type. Resolution
// order: example-question overlap, configured keyword rules, built-in
// fallback tables. Returns false when no sub-type applies.
func (c *Classifier) DetectSubType(question, sourceType string) (string, bool) {
	q := normalize(question)
	if q == "" {
		return "", false
	}

	if sub, ok := c.matchExamples(q, sourceType); ok {
		return sub, true
	}
	if sub, ok := c.matchConfigured(q, sourceType); ok {
		return sub, true
	}

	switch sourceType {
	case schema.SourceLogSummary:
		if c.DetectTimeScope(question) == "weekly" {
			return schema.SubTypeLogsWeekly, true
		}
		return schema.SubTypeLogsDaily, true
	case schema.SourceMetricSummary:
		if c.DetectTimeScope(question) == "weekly" {
			return schema.SubTypeMetricsWeekly, true
		}
		return schema.SubTypeMetricsDaily, true
	case schema.SourceLineage:
		if comp := c.DetectComponent(question); comp != "" {
			return "lineage_" + comp, true
		}
		return "", false
	case schema.SourceMetadata:
		for _, ks := range c.metadataSubs {
			if matchesAny(q, ks.keywords) && schema.SourceTypeFor(ks.docSubType) == schema.SourceMetadata {
				return ks.docSubType, true
			}
		}
		return "", false
	}
	return "", false
}

// DetectTimeScope returns "daily", "weekly" or "" for a question.
// Weekly markers win over daily ones so "errors this week vs yesterday"
// widens the window rather than narrowing it.
func (c *Classifier) DetectTimeScope(question string) string {
	q := normalize(question)
	if matchesAny(q, weeklyKeywords) {
		return "weekly"
	}
	if matchesAny(q, dailyKeywords) {
		return "daily"
	}
	return ""
}

// DetectComponent returns the lineage component a question refers to.
func (c *Classifier) DetectComponent(question string) string {
	q := normalize(question)
	switch {
	case strings.Contains(q, "kafka"):
		return "kafka"
	case strings.Contains(q, "spark"):
		return "spark"
	case strings.Contains(q, "dataapi") || strings.Contains(q, "data api") || strings.Contains(q, "api"):
		return "dataapi"
	}
	return ""
}

// IsRCAQuery reports whether a question asks for root cause analysis.
func (c *Classifier) IsRCAQuery(question string) bool {
	return matchesAny(normalize(question), rcaKeywords)
}

func (c *Classifier) matchExamples(q, sourceType string) (string, bool) {
	qWords := significantWords(q)
	if len(qWords) == 0 {
		return "", false
	}
	qSet := make(map[string]struct{}, len(qWords))
	for _, w := range qWords {
		qSet[w] = struct{}{}
	}

	best := ""
	bestScore := 0
	for _, er := range c.examples {
		if er.sourceType != sourceType {
			continue
		}
		for _, ews := range er.words {
			score := 0
			for _, w := range ews {
				if _, ok := qSet[w]; ok {
					score++
				}
			}
			if score > bestScore {
				bestScore = score
				best = er.docSubType
			}
		}
	}
	if bestScore >= 2 {
		return best, true
	}
	return "", false
}

func (c *Classifier) matchConfigured(q, sourceType string) (string, bool) {
	for _, r := range c.configured {
		if r.DocType == "" || schema.SourceTypeFor(r.DocType) != sourceType {
			continue
		}
		if matchesAny(q, r.Keywords) {
			return r.DocType, true
		}
	}
	return "", false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func matchesAny(q string, keywords []string) bool {
	if q == "" {
		return false
	}
	for _, k := range keywords {
		if k != "" && strings.Contains(q, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func significantWords(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) <= 2 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}
