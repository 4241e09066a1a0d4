package retriever

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"time"

	"github.com/sakthi87/ragllmmvp-sub001/cache"
	"github.com/sakthi87/ragllmmvp-sub001/common/logger"
	"github.com/sakthi87/ragllmmvp-sub001/config"
	"github.com/sakthi87/ragllmmvp-sub001/embedding"
	"github.com/sakthi87/ragllmmvp-sub001/intent"
	"github.com/sakthi87/ragllmmvp-sub001/metrics"
	"github.com/sakthi87/ragllmmvp-sub001/rewrite"
	"github.com/sakthi87/ragllmmvp-sub001/schema"
	"github.com/sakthi87/ragllmmvp-sub001/vectordb"
)

// Query is one retrieval request. DocTypes lists the source types to
// search; empty means all of them.
type Query struct {
	Question    string
	DocTypes    []string
	ClusterName string
	Keyspace    string
	TableName   string
	TopKPerType int
	DaysBack    int
}

// VectorRetriever runs the per-intent retrieval pipeline: sub-type
// resolution, query rewriting, embedding and filtered vector search, then
// a merged, threshold-filtered, globally capped ranking. One failing
// source type never fails the whole search.
type VectorRetriever struct {
	Classifier *intent.Classifier
	Rewriter   *rewrite.Rewriter
	Embed      embedding.Provider
	Store      vectordb.Provider
	Cache      *cache.VectorCache
	Cfg        config.RetrievalConfig

	// Now is the clock used for date windows; tests override it.
	Now func() time.Time
}

func (r *VectorRetriever) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Search returns at most Cfg.MaxTopK documents ordered by similarity
// descending. A blank question returns an empty result without touching
// any collaborator.
func (r *VectorRetriever) Search(ctx context.Context, q Query) ([]schema.SearchResult, error) {
	start := time.Now()
	defer metrics.ObserveStage("retrieval", start)

	if normalizeBlank(q.Question) {
		return []schema.SearchResult{}, nil
	}

	docTypes := q.DocTypes
	if len(docTypes) == 0 {
		docTypes = schema.AllSourceTypes()
	}

	topK := r.Cfg.TopKPerType
	if q.TopKPerType > 0 {
		topK = q.TopKPerType
	}
	if topK > r.Cfg.MaxTopK {
		topK = r.Cfg.MaxTopK
	}

	from, to := r.resolveDateRange(q.DaysBack)

	merged := make(map[string]schema.SearchResult)
	for _, docType := range docTypes {
		results := r.searchByDocType(ctx, q, docType, topK, from, to)
		metrics.ObserveRetrieved(docType, len(results))
		for _, res := range results {
			id := res.Document.ID
			if id == "" {
				continue
			}
			if existing, ok := merged[id]; !ok || res.Similarity > existing.Similarity {
				merged[id] = res
			}
		}
	}

	out := make([]schema.SearchResult, 0, len(merged))
	for _, res := range merged {
		threshold := r.Rewriter.SimilarityThreshold(res.Document.DocSubType, r.Cfg.DefaultThreshold)
		if res.Similarity < threshold {
			metrics.IncThresholdDrop(res.Document.DocSubType)
			continue
		}
		out = append(out, res)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		di, dj := out[i].Document, out[j].Document
		if di.SourceName != dj.SourceName {
			return di.SourceName < dj.SourceName
		}
		return di.DocSubType < dj.DocSubType
	})

	if len(out) > r.Cfg.MaxTopK {
		out = out[:r.Cfg.MaxTopK]
	}
	return out, nil
}

// searchByDocType runs one source type end to end. Any failure is logged
// and collapses to an empty contribution for that type only.
func (r *VectorRetriever) searchByDocType(ctx context.Context, q Query, docType string, topK int, from, to time.Time) []schema.SearchResult {
	subType, _ := r.Classifier.DetectSubType(q.Question, docType)

	keyspace := q.Keyspace
	if keyspace == "" {
		keyspace = r.Cfg.DefaultKeyspace
	}
	table := q.TableName
	if table == "" {
		table = r.Cfg.DefaultTable
	}
	query := r.Rewriter.Rewrite(q.Question, subType, keyspace, table)

	vec, err := r.embed(ctx, query)
	if err != nil {
		logger.Warnf("retriever: embedding failed for %s: %v", docType, err)
		return nil
	}

	cluster := q.ClusterName
	if cluster == "" {
		cluster = r.Cfg.ClusterName
	}
	filters := &schema.SearchFilters{
		ClusterName: cluster,
		SourceType:  docType,
		DocSubType:  subType,
		Keyspace:    keyspace,
		TableName:   table,
		From:        from,
		To:          to,
	}
	results, err := r.Store.SearchDocs(ctx, vec, &schema.SearchOptions{TopK: topK}, filters)
	if err != nil {
		logger.Warnf("retriever: vector search failed for %s: %v", docType, err)
		return nil
	}
	return results
}

func (r *VectorRetriever) embed(ctx context.Context, query string) ([]float32, error) {
	key := embeddingCacheKey(query)
	if r.Cache != nil {
		if vec, ok := r.Cache.Get(key); ok {
			return vec, nil
		}
	}
	vec, err := r.Embed.GetEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}
	if r.Cache != nil {
		r.Cache.Set(key, vec, 0)
	}
	return vec, nil
}

// resolveDateRange coerces out-of-range look-back values to the default
// window and returns [today-daysBack, today].
func (r *VectorRetriever) resolveDateRange(daysBack int) (time.Time, time.Time) {
	if daysBack <= 0 || daysBack > r.Cfg.MaxDaysBack {
		daysBack = r.Cfg.DefaultDaysBack
	}
	today := r.now().Truncate(24 * time.Hour)
	return today.AddDate(0, 0, -daysBack), today
}

func embeddingCacheKey(query string) string {
	sum := sha1.Sum([]byte("emb:" + query))
	return hex.EncodeToString(sum[:])
}

func normalizeBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
