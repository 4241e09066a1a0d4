package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sakthi87/ragllmmvp-sub001/cache"
	"github.com/sakthi87/ragllmmvp-sub001/common/httpx"
	"github.com/sakthi87/ragllmmvp-sub001/common/logger"
	"github.com/sakthi87/ragllmmvp-sub001/config"
	"github.com/sakthi87/ragllmmvp-sub001/embedding"
	"github.com/sakthi87/ragllmmvp-sub001/intent"
	"github.com/sakthi87/ragllmmvp-sub001/llm"
	"github.com/sakthi87/ragllmmvp-sub001/metrics"
	"github.com/sakthi87/ragllmmvp-sub001/orchestrator"
	"github.com/sakthi87/ragllmmvp-sub001/rca"
	"github.com/sakthi87/ragllmmvp-sub001/retriever"
	"github.com/sakthi87/ragllmmvp-sub001/rewrite"
	"github.com/sakthi87/ragllmmvp-sub001/schema"
	"github.com/sakthi87/ragllmmvp-sub001/vectordb"
)

// Query modes recorded in the query log.
const (
	ModeSingleIntent = "SINGLE_INTENT"
	ModeMultiIntent  = "MULTI_INTENT"
)

// AskRequest is one question against the platform knowledge base. Only
// Question is required; zero values fall back to configured defaults.
type AskRequest struct {
	Question    string  `json:"question"`
	Keyspace    string  `json:"keyspace,omitempty"`
	Table       string  `json:"table,omitempty"`
	Cluster     string  `json:"cluster,omitempty"`
	TopK        int     `json:"top_k,omitempty"`
	DaysBack    int     `json:"days_back,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// StageTrace is one pipeline stage timing from AskWithTrace.
type StageTrace struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
	Detail   string        `json:"detail,omitempty"`
}

// Assistant is the top-level pipeline: intent detection, retrieval,
// generation and optional root cause analysis behind one Ask call.
type Assistant struct {
	cfg        *config.Config
	classifier *intent.Classifier
	rewriter   *rewrite.Rewriter
	retriever  *retriever.VectorRetriever
	orch       *orchestrator.Orchestrator
	rca        *rca.Pipeline
	store      vectordb.Provider
	queryLog   *metrics.QueryLog
}

// New wires an assistant from configuration. The context bounds provider
// startup (vector store connection); it is not retained.
func New(ctx context.Context, cfg *config.Config) (*Assistant, error) {
	if cfg == nil {
		return nil, schema.ErrConfigurationMissing
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	intents, err := config.LoadIntentCatalog(cfg.IntentRulesPath)
	if err != nil {
		return nil, fmt.Errorf("load intent rules: %w", err)
	}
	rewrites, err := config.LoadRewriteCatalog(cfg.RewriteTemplatesPath)
	if err != nil {
		return nil, fmt.Errorf("load rewrite templates: %w", err)
	}

	hc := httpx.NewFromConfig(cfg.HTTPClient)

	embedder, err := embedding.NewProvider(cfg.Embedding, hc)
	if err != nil {
		return nil, fmt.Errorf("create embedding provider: %w", err)
	}
	generator, err := llm.NewProvider(cfg.LLM, hc)
	if err != nil {
		return nil, fmt.Errorf("create llm provider: %w", err)
	}
	store, err := vectordb.NewProvider(ctx, cfg.VectorDB, cfg.Embedding.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("create vector store provider: %w", err)
	}

	classifier := intent.New(intents, rewrites)
	rewriter := rewrite.New(rewrites)
	vectors := cache.NewVectorCache(cache.NewLRU(
		cfg.Cache.Capacity, time.Duration(cfg.Cache.TTLSeconds)*time.Second))

	return &Assistant{
		cfg:        cfg,
		classifier: classifier,
		rewriter:   rewriter,
		retriever: &retriever.VectorRetriever{
			Classifier: classifier,
			Rewriter:   rewriter,
			Embed:      embedder,
			Store:      store,
			Cache:      vectors,
			Cfg:        cfg.Retrieval,
		},
		orch:     &orchestrator.Orchestrator{LLM: generator, Cfg: cfg.Generation},
		rca:      rca.New(),
		store:    store,
		queryLog: metrics.NewQueryLog(0),
	}, nil
}

// Ask answers a question end to end.
func (a *Assistant) Ask(ctx context.Context, req AskRequest) (string, error) {
	answer, _, err := a.ask(ctx, req)
	return answer, err
}

// AskWithTrace answers a question and reports per-stage timings.
func (a *Assistant) AskWithTrace(ctx context.Context, req AskRequest) (string, []StageTrace, error) {
	return a.ask(ctx, req)
}

func (a *Assistant) ask(ctx context.Context, req AskRequest) (string, []StageTrace, error) {
	if strings.TrimSpace(req.Question) == "" {
		return "", nil, &schema.ValidationError{Field: "question", Message: "question is required"}
	}

	requestID := uuid.New().String()
	start := time.Now()
	var trace []StageTrace

	stageStart := time.Now()
	docTypes := a.classifier.DetectIntents(req.Question)
	for _, dt := range docTypes {
		metrics.IncIntent(dt)
	}
	isRCA := a.classifier.IsRCAQuery(req.Question)
	trace = append(trace, StageTrace{
		Stage:    "intent",
		Duration: time.Since(stageStart),
		Detail:   strings.Join(docTypes, ","),
	})
	logger.Infof("assistant: request %s detected intents %v (rca=%t)", requestID, docTypes, isRCA)

	stageStart = time.Now()
	docs, err := a.retriever.Search(ctx, retriever.Query{
		Question:    req.Question,
		DocTypes:    docTypes,
		ClusterName: req.Cluster,
		Keyspace:    req.Keyspace,
		TableName:   req.Table,
		TopKPerType: req.TopK,
		DaysBack:    req.DaysBack,
	})
	if err != nil {
		a.record(requestID, req.Question, docTypes, 0, isRCA, start, err)
		return "", trace, err
	}
	trace = append(trace, StageTrace{
		Stage:    "retrieval",
		Duration: time.Since(stageStart),
		Detail:   fmt.Sprintf("%d documents", len(docs)),
	})

	stageStart = time.Now()
	answer, answers, err := a.orch.Generate(ctx, orchestrator.Request{
		Question:    req.Question,
		DocTypes:    docTypes,
		Documents:   docs,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		a.record(requestID, req.Question, docTypes, len(docs), isRCA, start, err)
		return "", trace, err
	}
	trace = append(trace, StageTrace{
		Stage:    "generation",
		Duration: time.Since(stageStart),
		Detail:   fmt.Sprintf("%d intent answers", len(answers)),
	})

	if isRCA && len(docs) > 0 {
		stageStart = time.Now()
		analysis := a.rca.Run(req.Question, docs)
		answer = answer + "\n\n" + strings.TrimSpace(analysis.Format())
		trace = append(trace, StageTrace{
			Stage:    "rca",
			Duration: time.Since(stageStart),
			Detail:   analysis.RootCause.Description,
		})
	}

	a.record(requestID, req.Question, docTypes, len(docs), isRCA, start, nil)
	return answer, trace, nil
}

// SearchDocuments runs retrieval only, without generation.
func (a *Assistant) SearchDocuments(ctx context.Context, req AskRequest) ([]schema.SearchResult, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, &schema.ValidationError{Field: "question", Message: "question is required"}
	}
	return a.retriever.Search(ctx, retriever.Query{
		Question:    req.Question,
		DocTypes:    a.classifier.DetectIntents(req.Question),
		ClusterName: req.Cluster,
		Keyspace:    req.Keyspace,
		TableName:   req.Table,
		TopKPerType: req.TopK,
		DaysBack:    req.DaysBack,
	})
}

// Analyze runs retrieval followed by root cause analysis, skipping answer
// generation.
func (a *Assistant) Analyze(ctx context.Context, req AskRequest) (rca.Result, error) {
	docs, err := a.SearchDocuments(ctx, req)
	if err != nil {
		return rca.Result{}, err
	}
	return a.rca.Run(req.Question, docs), nil
}

// AddDocuments upserts documents into the vector store, deriving the
// source type from the sub-type prefix when absent.
func (a *Assistant) AddDocuments(ctx context.Context, docs []schema.Document) error {
	for i := range docs {
		if docs[i].SourceType == "" {
			docs[i].SourceType = schema.SourceTypeFor(docs[i].DocSubType)
		}
	}
	return a.store.AddDocs(ctx, docs)
}

// QueryStats reports aggregate statistics over the retained query log.
func (a *Assistant) QueryStats() metrics.Stats {
	return a.queryLog.Stats()
}

// RecentQueries returns the retained query records, oldest first.
func (a *Assistant) RecentQueries() []metrics.QueryRecord {
	return a.queryLog.Snapshot()
}

// Close releases provider connections.
func (a *Assistant) Close() error {
	return a.store.Close()
}

func (a *Assistant) record(requestID, question string, docTypes []string, docsUsed int, isRCA bool, start time.Time, err error) {
	mode := ModeSingleIntent
	if len(docTypes) > 1 {
		mode = ModeMultiIntent
	}
	rec := metrics.QueryRecord{
		RequestID:   requestID,
		Question:    question,
		Intents:     docTypes,
		DocsUsed:    docsUsed,
		Mode:        mode,
		RCA:         isRCA,
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		CompletedAt: time.Now(),
	}
	if err != nil {
		rec.ErrorMsg = err.Error()
	}
	rec.Log()
	a.queryLog.Add(rec)
}
