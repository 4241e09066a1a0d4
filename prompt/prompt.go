package prompt

import (
	"fmt"
	"strings"

	"github.com/sakthi87/ragllmmvp-sub001/schema"
)

// SystemPrompt grounds the model strictly in retrieved context.
const SystemPrompt = `You are an enterprise data platform assistant.
You must answer only using the provided metadata sections.
Do not use prior knowledge and do not guess.
CRITICAL: If the answer does not explicitly appear in the metadata context,
respond with: 'I cannot find this information in the current metadata.'
Keep answers concise and factual.`

const separatorWidth = 80

// Build renders the full grounded prompt: system instructions, the user
// question, and retrieved documents grouped into per-source-type sections
// in canonical order.
func Build(question string, docs []schema.SearchResult) string {
	if len(docs) == 0 {
		return BuildWithoutContext(question)
	}

	var b strings.Builder
	b.WriteString(SystemPrompt)
	b.WriteString("\n\nUser Question: ")
	b.WriteString(question)
	b.WriteString("\n\nContext:\n")
	b.WriteString(strings.Repeat("=", separatorWidth))
	b.WriteString("\n")

	grouped := groupBySourceType(docs)
	for _, st := range sectionOrder(grouped) {
		b.WriteString(fmt.Sprintf("=== %s ===\n", st))
		for i, res := range grouped[st] {
			writeEntry(&b, i+1, res)
		}
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat("=", separatorWidth))
	b.WriteString("\n")
	b.WriteString("Please provide a comprehensive answer based on the context above.\n")
	return b.String()
}

// BuildForIntent renders an intent-scoped prompt containing only one
// source type's documents.
func BuildForIntent(question, sourceType string, docs []schema.SearchResult) string {
	var b strings.Builder
	b.WriteString(SystemPrompt)
	b.WriteString("\n\nUser Question: ")
	b.WriteString(question)
	b.WriteString("\n\nContext:\n")
	b.WriteString(strings.Repeat("=", separatorWidth))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("=== %s ===\n", sourceType))
	for i, res := range docs {
		writeEntry(&b, i+1, res)
	}
	b.WriteString(strings.Repeat("=", separatorWidth))
	b.WriteString("\n")
	b.WriteString("Please answer this part of the question using only the context above.\n")
	return b.String()
}

// BuildWithoutContext renders the prompt used when retrieval found
// nothing; the system instructions force the model to say so.
func BuildWithoutContext(question string) string {
	var b strings.Builder
	b.WriteString(SystemPrompt)
	b.WriteString("\n\nUser Question: ")
	b.WriteString(question)
	b.WriteString("\n\nContext: (no documents retrieved)\n")
	return b.String()
}

func writeEntry(b *strings.Builder, idx int, res schema.SearchResult) {
	d := res.Document
	component := d.Component
	if component == "" {
		component = d.DocSubType
	}
	date := ""
	if !d.EventDate.IsZero() {
		date = d.EventDate.Format("2006-01-02")
	}
	b.WriteString(fmt.Sprintf("[%d] %s - %s (Date: %s) [Relevance: %.1f%%]\n",
		idx, component, d.SourceName, date, res.Similarity*100))
	b.WriteString(d.Content)
	b.WriteString("\n\n")
}

func groupBySourceType(docs []schema.SearchResult) map[string][]schema.SearchResult {
	out := make(map[string][]schema.SearchResult)
	for _, d := range docs {
		out[d.Document.SourceType] = append(out[d.Document.SourceType], d)
	}
	return out
}

// sectionOrder returns present source types in canonical order, then any
// remaining types sorted by name for stable output.
func sectionOrder(grouped map[string][]schema.SearchResult) []string {
	var out []string
	seen := make(map[string]bool)
	for _, st := range schema.AllSourceTypes() {
		if _, ok := grouped[st]; ok {
			out = append(out, st)
			seen[st] = true
		}
	}
	var rest []string
	for st := range grouped {
		if !seen[st] {
			rest = append(rest, st)
		}
	}
	for i := 0; i < len(rest); i++ {
		for j := i + 1; j < len(rest); j++ {
			if rest[j] < rest[i] {
				rest[i], rest[j] = rest[j], rest[i]
			}
		}
	}
	return append(out, rest...)
}
