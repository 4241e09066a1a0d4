package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sakthi87/ragllmmvp-sub001/common/logger"
	"github.com/sakthi87/ragllmmvp-sub001/config"
	"github.com/sakthi87/ragllmmvp-sub001/llm"
	"github.com/sakthi87/ragllmmvp-sub001/metrics"
	"github.com/sakthi87/ragllmmvp-sub001/prompt"
	"github.com/sakthi87/ragllmmvp-sub001/schema"
)

// Answer texts for degraded paths. These are part of the response
// contract, not log messages.
const (
	NoDocsForIntent = "No relevant documents found for this part of the query."
	NoInfoForIntent = "No information available for this part of the query."
	UnformattedInfo = "Information found but could not be formatted."
	Apology         = "I apologize, but I was unable to generate answers for your query. " +
		"Please try rephrasing your question or check if the relevant data is available."
)

const fallbackExcerptLen = 500

// Request is one generation request. DocTypes preserves intent detection
// order; aggregation follows it regardless of completion order.
type Request struct {
	Question    string
	DocTypes    []string
	Documents   []schema.SearchResult
	MaxTokens   int
	Temperature float64
}

// IntentAnswer is the per-intent outcome of a multi-intent generation.
type IntentAnswer struct {
	DocType  string
	Text     string
	Elapsed  time.Duration
	Attempts int
	FellBack bool
}

// Orchestrator turns retrieved documents into a final answer. It never
// surfaces a collaborator error to the caller: every failure path
// degrades to a fallback text.
type Orchestrator struct {
	LLM llm.Provider
	Cfg config.GenerationConfig

	// Sleep is the retry backoff clock; tests replace it.
	Sleep func(time.Duration)
}

func (o *Orchestrator) sleep(d time.Duration) {
	if o.Sleep != nil {
		o.Sleep(d)
		return
	}
	time.Sleep(d)
}

// Generate produces the aggregated answer and the per-intent answers it
// was assembled from.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (string, []IntentAnswer, error) {
	start := time.Now()
	defer metrics.ObserveStage("generation", start)

	docTypes := distinct(req.DocTypes)
	if len(docTypes) == 0 {
		docTypes = []string{schema.SourceMetadata}
	}

	if len(docTypes) == 1 {
		ans := o.generateSingle(ctx, req, docTypes[0])
		return ans.Text, []IntentAnswer{ans}, nil
	}
	return o.generateMulti(ctx, req, docTypes)
}

func (o *Orchestrator) generateSingle(ctx context.Context, req Request, docType string) IntentAnswer {
	start := time.Now()
	if len(req.Documents) == 0 {
		return IntentAnswer{DocType: docType, Text: Apology, Elapsed: time.Since(start)}
	}

	budget := prompt.Budget(req.MaxTokens, 1, o.Cfg.BaseTokens, o.Cfg.TokensPerIntent, o.Cfg.MaxTokenBudget)
	p := prompt.Build(req.Question, req.Documents)
	logger.Debugf("orchestrator: single-intent prompt is %d tokens", prompt.TokenCount(p))

	text, attempts, err := o.generateWithRetry(ctx, req.Question, p, budget, req.Temperature)
	if err != nil {
		logger.Warnf("orchestrator: generation exhausted retries: %v", err)
		metrics.IncGenerationFallback()
		return IntentAnswer{
			DocType:  docType,
			Text:     fallbackAnswer(req.Documents),
			Elapsed:  time.Since(start),
			Attempts: attempts,
			FellBack: true,
		}
	}
	return IntentAnswer{DocType: docType, Text: text, Elapsed: time.Since(start), Attempts: attempts}
}

func (o *Orchestrator) generateMulti(ctx context.Context, req Request, docTypes []string) (string, []IntentAnswer, error) {
	grouped := groupBySourceType(req.Documents)
	answers := make([]IntentAnswer, len(docTypes))

	poolSize := len(docTypes)
	if poolSize > o.Cfg.MaxParallel {
		poolSize = o.Cfg.MaxParallel
	}
	budget := prompt.Budget(req.MaxTokens, len(docTypes), o.Cfg.BaseTokens, o.Cfg.TokensPerIntent, o.Cfg.MaxTokenBudget)

	// Wait for every intent; a failed sibling never cancels the others,
	// so the group context is not propagated into workers.
	g := new(errgroup.Group)
	g.SetLimit(poolSize)
	for i, docType := range docTypes {
		docs := grouped[docType]
		if len(docs) == 0 {
			answers[i] = IntentAnswer{DocType: docType, Text: NoDocsForIntent}
			continue
		}
		i, docType, docs := i, docType, docs
		g.Go(func() error {
			start := time.Now()
			p := prompt.BuildForIntent(req.Question, docType, docs)
			text, attempts, err := o.generateWithRetry(ctx, req.Question, p, budget, req.Temperature)
			if err != nil {
				logger.Warnf("orchestrator: intent %s fell back after %d attempts: %v", docType, attempts, err)
				metrics.IncGenerationFallback()
				answers[i] = IntentAnswer{
					DocType:  docType,
					Text:     fallbackAnswer(docs),
					Elapsed:  time.Since(start),
					Attempts: attempts,
					FellBack: true,
				}
				return nil
			}
			answers[i] = IntentAnswer{DocType: docType, Text: text, Elapsed: time.Since(start), Attempts: attempts}
			return nil
		})
	}
	_ = g.Wait()

	return aggregate(answers), answers, nil
}

// generateWithRetry runs one generation call with the configured timeout
// and linear backoff. Timeout, transport failure and empty completion are
// all retry-eligible.
func (o *Orchestrator) generateWithRetry(ctx context.Context, question, promptText string, maxTokens int, temperature float64) (string, int, error) {
	timeout := time.Duration(o.Cfg.TimeoutSeconds) * time.Second
	if temperature <= 0 {
		temperature = o.Cfg.Temperature
	}

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= o.Cfg.MaxRetries; attempt++ {
		attempts++
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		text, err := o.LLM.GenerateAnswer(callCtx, llm.GenerateRequest{
			Query:       question,
			Context:     promptText,
			MaxTokens:   maxTokens,
			Temperature: temperature,
		})
		cancel()
		if err == nil {
			return text, attempts, nil
		}
		lastErr = err
		metrics.IncGenerationRetry(retryKind(err))
		if attempt < o.Cfg.MaxRetries {
			o.sleep(time.Duration(attempt+1) * time.Second)
		}
	}
	return "", attempts, lastErr
}

// fallbackAnswer excerpts the top-ranked document when generation is
// unavailable.
func fallbackAnswer(docs []schema.SearchResult) string {
	if len(docs) == 0 {
		return NoInfoForIntent
	}
	content := strings.TrimSpace(docs[0].Document.Content)
	if content == "" {
		return UnformattedInfo
	}
	if len(content) > fallbackExcerptLen {
		return content[:fallbackExcerptLen] + "..."
	}
	return content
}

// aggregate assembles per-intent answers into one response in detection
// order, with canonical section headers.
func aggregate(answers []IntentAnswer) string {
	var b strings.Builder
	empty := true
	for _, a := range answers {
		text := strings.TrimSpace(a.Text)
		if text == "" {
			continue
		}
		empty = false
		b.WriteString(schema.SectionHeader(a.DocType))
		b.WriteString("\n")
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	if empty {
		return Apology
	}
	return strings.TrimSpace(b.String())
}

func retryKind(err error) string {
	var ce *schema.CollaboratorError
	if errors.As(err, &ce) {
		return string(ce.Kind)
	}
	return string(schema.KindFailure)
}

func groupBySourceType(docs []schema.SearchResult) map[string][]schema.SearchResult {
	out := make(map[string][]schema.SearchResult)
	for _, d := range docs {
		out[d.Document.SourceType] = append(out[d.Document.SourceType], d)
	}
	return out
}

func distinct(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
