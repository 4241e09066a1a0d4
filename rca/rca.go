package rca

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sakthi87/ragllmmvp-sub001/metrics"
	"github.com/sakthi87/ragllmmvp-sub001/schema"
)

// Signal types.
const (
	SignalError              = "ERROR"
	SignalAnomaly            = "ANOMALY"
	SignalThresholdViolation = "THRESHOLD_VIOLATION"
)

// Fix priorities.
const (
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"
)

// Signal is one evidence fragment extracted from a retrieved document.
type Signal struct {
	Type        string  `json:"type"`
	Keyword     string  `json:"keyword"`
	Context     string  `json:"context"`
	Strength    float64 `json:"strength"`
	Correlation float64 `json:"correlation"`
	SourceType  string  `json:"source_type"`
	SourceName  string  `json:"source_name"`
}

// RootCause is the pipeline's conclusion.
type RootCause struct {
	Identified  bool     `json:"identified"`
	CauseType   string   `json:"cause_type,omitempty"`
	Description string   `json:"description"`
	Detail      string   `json:"detail"`
	Evidence    []string `json:"evidence,omitempty"`
	Confidence  float64  `json:"confidence"`
}

// FixRecommendation is one suggested remediation step.
type FixRecommendation struct {
	Action       string `json:"action"`
	Description  string `json:"description"`
	Priority     string `json:"priority"`
	TimeEstimate string `json:"time_estimate"`
}

// Result is the full RCA outcome. Confidence is always in [0, 1].
type Result struct {
	Question   string              `json:"question"`
	Signals    []Signal            `json:"signals"`
	RootCause  RootCause           `json:"root_cause"`
	Fixes      []FixRecommendation `json:"fixes"`
	Confidence float64             `json:"confidence"`
}

const (
	contextRadius      = 100
	evidenceLimit      = 3
	minSignalStrength  = 0.5
	minContextLength   = 10
	thresholdStrength  = 0.8
	noCauseDescription = "No root cause identified"
	noCauseDetail      = "Insufficient evidence in retrieved documents"
)

var errorKeywords = []string{
	"error", "exception", "failed", "failure", "timeout", "crash",
	"outofmemory", "nullpointer", "connection refused", "503", "500",
	"latency spike", "throughput drop", "lag", "delayed",
}

var anomalyKeywords = []string{
	"unusual", "abnormal", "spike", "drop", "increase", "decrease",
	"threshold exceeded", "above normal", "below normal",
}

// Pipeline runs deterministic rule-based root cause analysis over
// retrieved documents. It has no collaborators and never fails: the
// worst outcome is an unidentified cause at zero confidence.
type Pipeline struct{}

// New creates an RCA pipeline.
func New() *Pipeline { return &Pipeline{} }

// Run executes all six stages. Identical inputs produce identical output.
func (p *Pipeline) Run(question string, docs []schema.SearchResult) Result {
	start := time.Now()
	defer metrics.ObserveStage("rca", start)

	signals := detectSignals(docs)
	signals = filterNoise(signals)
	signals = rankByCorrelation(question, signals)
	cause := extractRootCause(signals)
	fixes := recommendFixes(cause)
	confidence := overallConfidence(cause, len(signals), len(fixes))

	causeLabel := "none"
	if cause.Identified {
		causeLabel = cause.CauseType
	}
	metrics.IncRCARun(causeLabel)

	return Result{
		Question:   question,
		Signals:    signals,
		RootCause:  cause,
		Fixes:      fixes,
		Confidence: confidence,
	}
}

// detectSignals scans each document for error and anomaly keywords plus
// the metric threshold rule.
func detectSignals(docs []schema.SearchResult) []Signal {
	var out []Signal
	for _, res := range docs {
		d := res.Document
		content := strings.ToLower(d.Content)
		if content == "" {
			continue
		}

		for _, kw := range errorKeywords {
			if sig, ok := keywordSignal(SignalError, kw, content, d); ok {
				out = append(out, sig)
			}
		}
		for _, kw := range anomalyKeywords {
			if sig, ok := keywordSignal(SignalAnomaly, kw, content, d); ok {
				out = append(out, sig)
			}
		}
		if d.SourceType == schema.SourceMetricSummary &&
			(strings.Contains(content, "threshold") || strings.Contains(content, "exceeded")) {
			out = append(out, Signal{
				Type:       SignalThresholdViolation,
				Keyword:    "metric_threshold",
				Context:    extractContext(content, "threshold"),
				Strength:   thresholdStrength,
				SourceType: d.SourceType,
				SourceName: d.SourceName,
			})
		}
	}
	return out
}

func keywordSignal(sigType, keyword, content string, d schema.Document) (Signal, bool) {
	count := strings.Count(content, keyword)
	if count == 0 {
		return Signal{}, false
	}
	strength := 0.5 + 0.1*float64(count)
	if strength > 1.0 {
		strength = 1.0
	}
	return Signal{
		Type:       sigType,
		Keyword:    keyword,
		Context:    extractContext(content, keyword),
		Strength:   strength,
		SourceType: d.SourceType,
		SourceName: d.SourceName,
	}, true
}

// extractContext returns up to contextRadius characters on either side of
// the keyword's first occurrence.
func extractContext(content, keyword string) string {
	idx := strings.Index(content, keyword)
	if idx < 0 {
		return ""
	}
	from := idx - contextRadius
	if from < 0 {
		from = 0
	}
	to := idx + len(keyword) + contextRadius
	if to > len(content) {
		to = len(content)
	}
	return strings.TrimSpace(content[from:to])
}

// filterNoise drops weak signals and those with no usable context.
func filterNoise(signals []Signal) []Signal {
	out := make([]Signal, 0, len(signals))
	for _, s := range signals {
		if s.Strength >= minSignalStrength && len(s.Context) > minContextLength {
			out = append(out, s)
		}
	}
	return out
}

// rankByCorrelation scores each signal against the question and sorts
// strongest-correlation first. The sort is stable so equal scores keep
// detection order.
func rankByCorrelation(question string, signals []Signal) []Signal {
	q := strings.ToLower(question)
	qWords := strings.Fields(q)

	for i := range signals {
		s := &signals[i]
		boost := 0.0
		for _, w := range qWords {
			if len(w) > 3 && strings.Contains(s.Context, w) {
				boost += 0.1
			}
		}
		if (strings.Contains(q, "error") || strings.Contains(q, "fail")) && s.Type == SignalError {
			boost += 0.3
		}
		if strings.Contains(q, "slow") || strings.Contains(q, "latency") || strings.Contains(q, "performance") {
			if s.Type == SignalAnomaly || s.Type == SignalThresholdViolation {
				boost += 0.3
			}
		}
		corr := boost + s.Strength
		if corr > 1.0 {
			corr = 1.0
		}
		s.Correlation = corr
	}

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].Correlation > signals[j].Correlation
	})
	return signals
}

// extractRootCause promotes the top-ranked signal to a conclusion.
func extractRootCause(signals []Signal) RootCause {
	if len(signals) == 0 {
		return RootCause{
			Description: noCauseDescription,
			Detail:      noCauseDetail,
		}
	}

	top := signals[0]
	description := fmt.Sprintf("Root cause identified: %s detected in %s (supported by %d additional signal(s))",
		strings.ToLower(strings.ReplaceAll(top.Type, "_", " ")), top.SourceType, len(signals)-1)

	evidence := make([]string, 0, evidenceLimit)
	for _, s := range signals {
		if len(evidence) >= evidenceLimit {
			break
		}
		ctx := s.Context
		if len(ctx) > 100 {
			ctx = ctx[:100]
		}
		evidence = append(evidence, fmt.Sprintf("%s: %s (from %s)", s.Type, ctx, s.SourceName))
	}

	return RootCause{
		Identified:  true,
		CauseType:   top.Type,
		Description: description,
		Detail:      top.Context,
		Evidence:    evidence,
		Confidence:  (top.Correlation + top.Strength) / 2,
	}
}

// recommendFixes returns the per-cause fix table plus the universal
// monitoring recommendation.
func recommendFixes(cause RootCause) []FixRecommendation {
	var out []FixRecommendation
	switch cause.CauseType {
	case SignalError:
		out = append(out,
			FixRecommendation{
				Action:       "Check application logs",
				Description:  "Inspect recent application logs around the failure window",
				Priority:     PriorityHigh,
				TimeEstimate: "Immediate",
			},
			FixRecommendation{
				Action:       "Verify system resources",
				Description:  "Confirm memory, CPU and disk headroom on the affected nodes",
				Priority:     PriorityMedium,
				TimeEstimate: "Within 1 hour",
			})
	case SignalAnomaly:
		out = append(out,
			FixRecommendation{
				Action:       "Investigate metric trends",
				Description:  "Compare the anomalous metric against its weekly baseline",
				Priority:     PriorityHigh,
				TimeEstimate: "Within 30 minutes",
			},
			FixRecommendation{
				Action:       "Check dependent services",
				Description:  "Verify upstream and downstream services for correlated issues",
				Priority:     PriorityMedium,
				TimeEstimate: "Within 1 hour",
			})
	case SignalThresholdViolation:
		out = append(out,
			FixRecommendation{
				Action:       "Review threshold configuration",
				Description:  "Confirm the violated threshold still matches expected load",
				Priority:     PriorityHigh,
				TimeEstimate: "Immediate",
			},
			FixRecommendation{
				Action:       "Scale resources if needed",
				Description:  "Add capacity if the violation reflects genuine load growth",
				Priority:     PriorityMedium,
				TimeEstimate: "Within 2 hours",
			})
	}
	out = append(out, FixRecommendation{
		Action:       "Implement monitoring alerts",
		Description:  "Set up proactive alerts for similar issues",
		Priority:     PriorityLow,
		TimeEstimate: "Within 24 hours",
	})
	return out
}

// overallConfidence blends cause confidence with small boosts for
// corroborating signals and available fixes, clamped to [0, 1].
func overallConfidence(cause RootCause, signalCount, fixCount int) float64 {
	if signalCount == 0 {
		return 0
	}
	signalBoost := 0.05 * float64(signalCount)
	if signalBoost > 0.2 {
		signalBoost = 0.2
	}
	fixBoost := 0.02 * float64(fixCount)
	if fixBoost > 0.1 {
		fixBoost = 0.1
	}
	conf := cause.Confidence + signalBoost + fixBoost
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}

// Format renders the result as a readable answer section.
func (r Result) Format() string {
	var b strings.Builder
	b.WriteString("**Root Cause Analysis:**\n")
	b.WriteString(r.RootCause.Description)
	b.WriteString("\n")
	if len(r.RootCause.Evidence) > 0 {
		b.WriteString("\nEvidence:\n")
		for _, e := range r.RootCause.Evidence {
			b.WriteString("- ")
			b.WriteString(e)
			b.WriteString("\n")
		}
	}
	if len(r.Fixes) > 0 {
		b.WriteString("\nRecommended actions:\n")
		for _, f := range r.Fixes {
			b.WriteString(fmt.Sprintf("- [%s] %s (%s)\n", f.Priority, f.Action, f.TimeEstimate))
		}
	}
	b.WriteString(fmt.Sprintf("\nConfidence: %.0f%%\n", r.Confidence*100))
	return b.String()
}
