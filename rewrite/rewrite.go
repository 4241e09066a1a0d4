package rewrite

import (
	"strings"

	"github.com/sakthi87/ragllmmvp-sub001/config"
)

// Rewriter replaces a user question with the canonical retrieval query for
// a document sub-type. Templates are indexed once at construction; with no
// catalog every rewrite is a pass-through.
type Rewriter struct {
	templates map[string]config.RewriteTemplate
}

// New builds a rewriter from an optional catalog.
func New(catalog *config.RewriteCatalog) *Rewriter {
	r := &Rewriter{templates: map[string]config.RewriteTemplate{}}
	if catalog != nil {
		r.templates = catalog.ByDocSubType()
	}
	return r
}

// Rewrite returns the canonical query for docSubType with {keyspace} and
// {table} placeholders substituted. The original question is returned
// unchanged when it is blank, the sub-type is empty, or no template exists.
func (r *Rewriter) Rewrite(question, docSubType, keyspace, table string) string {
	if strings.TrimSpace(question) == "" {
		return question
	}
	if docSubType == "" {
		return question
	}
	tpl, ok := r.templates[docSubType]
	if !ok || tpl.RewriteTemplate == "" {
		return question
	}
	out := tpl.RewriteTemplate
	out = strings.ReplaceAll(out, "{keyspace}", keyspace)
	out = strings.ReplaceAll(out, "{table}", table)
	return out
}

// SimilarityThreshold returns the configured per-sub-type threshold, or
// def when the sub-type has no template or no positive threshold.
func (r *Rewriter) SimilarityThreshold(docSubType string, def float64) float64 {
	if tpl, ok := r.templates[docSubType]; ok && tpl.SimilarityThreshold > 0 {
		return tpl.SimilarityThreshold
	}
	return def
}
