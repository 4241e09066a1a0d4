package vectordb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/sakthi87/ragllmmvp-sub001/common/logger"
	"github.com/sakthi87/ragllmmvp-sub001/config"
	"github.com/sakthi87/ragllmmvp-sub001/schema"
)

const dateLayout = "2006-01-02"

// milvusProvider stores platform documents in a Milvus collection. Scalar
// fields are mapped through the configured field mapping so an existing
// collection with different raw column names can be reused.
type milvusProvider struct {
	c          client.Client
	collection string
	mapping    config.MappingConfig
	raw        map[string]string // standard name -> raw name
	dims       int
}

func newMilvusProvider(ctx context.Context, cfg config.VectorDBConfig, dimensions int) (*milvusProvider, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	c, err := client.NewClient(ctx, client.Config{
		Address:  addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("connect milvus %s: %w", addr, err)
	}

	raw := make(map[string]string, len(cfg.Mapping.Fields))
	for _, f := range cfg.Mapping.Fields {
		raw[f.StandardName] = f.RawName
	}

	p := &milvusProvider{
		c:          c,
		collection: cfg.Collection,
		mapping:    cfg.Mapping,
		raw:        raw,
		dims:       dimensions,
	}
	if err := p.ensureCollection(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return p, nil
}

func (p *milvusProvider) rawName(standard string) string {
	if n, ok := p.raw[standard]; ok && n != "" {
		return n
	}
	return standard
}

func (p *milvusProvider) ensureCollection(ctx context.Context) error {
	has, err := p.c.HasCollection(ctx, p.collection)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if !has {
		sch := entity.NewSchema().WithName(p.collection)
		for _, f := range p.mapping.Fields {
			field := entity.NewField().WithName(f.RawName)
			switch {
			case f.IsPrimaryKey():
				field = field.WithDataType(entity.FieldTypeVarChar).
					WithIsPrimaryKey(true).
					WithIsAutoID(f.IsAutoID()).
					WithMaxLength(int64(f.MaxLength()))
			case f.IsVectorField():
				field = field.WithDataType(entity.FieldTypeFloatVector).WithDim(int64(p.dims))
			default:
				ml := f.MaxLength()
				if ml <= 0 {
					ml = 256
				}
				field = field.WithDataType(entity.FieldTypeVarChar).WithMaxLength(int64(ml))
			}
			sch = sch.WithField(field)
		}
		if err := p.c.CreateCollection(ctx, sch, 1); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}

		m, efc := 8, 64
		if v, err := p.mapping.Index.ParamsInt64("M"); err == nil {
			m = int(v)
		}
		if v, err := p.mapping.Index.ParamsInt64("efConstruction"); err == nil {
			efc = int(v)
		}
		idx, err := entity.NewIndexHNSW(entity.IP, m, efc)
		if err != nil {
			return fmt.Errorf("build index: %w", err)
		}
		if err := p.c.CreateIndex(ctx, p.collection, p.rawName("vector"), idx, false); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
		logger.Infof("vectordb: created collection %s (dim=%d, HNSW M=%d efConstruction=%d)", p.collection, p.dims, m, efc)
	}
	if err := p.c.LoadCollection(ctx, p.collection, false); err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	return nil
}

func (p *milvusProvider) SearchDocs(ctx context.Context, vector []float32, opts *schema.SearchOptions, filters *schema.SearchFilters) ([]schema.SearchResult, error) {
	topK := 10
	if opts != nil && opts.TopK > 0 {
		topK = opts.TopK
	}

	sp, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, schema.NewCollaboratorError("vectordb.milvus", schema.KindFailure, err)
	}

	outputFields := []string{
		p.rawName("cluster_name"), p.rawName("source_type"), p.rawName("doc_sub_type"),
		p.rawName("source_name"), p.rawName("keyspace"), p.rawName("table_name"),
		p.rawName("event_date"), p.rawName("content"),
	}

	res, err := p.c.Search(ctx, p.collection, nil, p.buildExpr(filters), outputFields,
		[]entity.Vector{entity.FloatVector(vector)}, p.rawName("vector"), entity.IP, topK, sp)
	if err != nil {
		kind := schema.KindFailure
		if ctx.Err() == context.DeadlineExceeded {
			kind = schema.KindTimeout
		}
		return nil, schema.NewCollaboratorError("vectordb.milvus", kind, err)
	}

	threshold := 0.0
	if opts != nil {
		threshold = opts.Threshold
	}

	var out []schema.SearchResult
	for _, rs := range res {
		for i := 0; i < rs.ResultCount; i++ {
			doc := schema.Document{}
			if rs.IDs != nil {
				if id, err := rs.IDs.GetAsString(i); err == nil {
					doc.ID = id
				}
			}
			for _, col := range rs.Fields {
				val, err := col.GetAsString(i)
				if err != nil {
					continue
				}
				switch col.Name() {
				case p.rawName("cluster_name"):
					doc.ClusterName = val
				case p.rawName("source_type"):
					doc.SourceType = val
				case p.rawName("doc_sub_type"):
					doc.DocSubType = val
				case p.rawName("source_name"):
					doc.SourceName = val
				case p.rawName("keyspace"):
					doc.Keyspace = val
				case p.rawName("table_name"):
					doc.TableName = val
				case p.rawName("event_date"):
					if ts, err := time.Parse(dateLayout, val); err == nil {
						doc.EventDate = ts
					}
				case p.rawName("content"):
					doc.Content = val
				}
			}
			sim := normalizeScore(rs.Scores[i])
			if sim < threshold {
				continue
			}
			out = append(out, schema.SearchResult{Document: doc, Similarity: sim})
		}
	}
	return out, nil
}

func (p *milvusProvider) AddDocs(ctx context.Context, docs []schema.Document) error {
	if len(docs) == 0 {
		return nil
	}
	n := len(docs)
	ids := make([]string, n)
	clusters := make([]string, n)
	sourceTypes := make([]string, n)
	subTypes := make([]string, n)
	sourceNames := make([]string, n)
	keyspaces := make([]string, n)
	tables := make([]string, n)
	dates := make([]string, n)
	contents := make([]string, n)
	vectors := make([][]float32, n)
	for i, d := range docs {
		ids[i] = d.ID
		clusters[i] = d.ClusterName
		sourceTypes[i] = d.SourceType
		subTypes[i] = d.DocSubType
		sourceNames[i] = d.SourceName
		keyspaces[i] = d.Keyspace
		tables[i] = d.TableName
		if !d.EventDate.IsZero() {
			dates[i] = d.EventDate.Format(dateLayout)
		}
		contents[i] = d.Content
		vectors[i] = d.Vector
	}

	cols := []entity.Column{
		entity.NewColumnVarChar(p.rawName("id"), ids),
		entity.NewColumnVarChar(p.rawName("cluster_name"), clusters),
		entity.NewColumnVarChar(p.rawName("source_type"), sourceTypes),
		entity.NewColumnVarChar(p.rawName("doc_sub_type"), subTypes),
		entity.NewColumnVarChar(p.rawName("source_name"), sourceNames),
		entity.NewColumnVarChar(p.rawName("keyspace"), keyspaces),
		entity.NewColumnVarChar(p.rawName("table_name"), tables),
		entity.NewColumnVarChar(p.rawName("event_date"), dates),
		entity.NewColumnVarChar(p.rawName("content"), contents),
		entity.NewColumnFloatVector(p.rawName("vector"), p.dims, vectors),
	}
	if _, err := p.c.Upsert(ctx, p.collection, "", cols...); err != nil {
		return schema.NewCollaboratorError("vectordb.milvus", schema.KindFailure, err)
	}
	return nil
}

func (p *milvusProvider) Close() error {
	return p.c.Close()
}

// buildExpr renders the scalar filter expression. Event dates are stored
// as ISO day strings so lexicographic comparison matches date order.
func (p *milvusProvider) buildExpr(f *schema.SearchFilters) string {
	if f == nil {
		return ""
	}
	var parts []string
	add := func(standard, val string) {
		if val != "" {
			parts = append(parts, fmt.Sprintf("%s == %q", p.rawName(standard), val))
		}
	}
	add("cluster_name", f.ClusterName)
	add("source_type", f.SourceType)
	add("doc_sub_type", f.DocSubType)
	add("keyspace", f.Keyspace)
	add("table_name", f.TableName)
	if !f.From.IsZero() {
		parts = append(parts, fmt.Sprintf("%s >= %q", p.rawName("event_date"), f.From.Format(dateLayout)))
	}
	if !f.To.IsZero() {
		parts = append(parts, fmt.Sprintf("%s <= %q", p.rawName("event_date"), f.To.Format(dateLayout)))
	}
	return strings.Join(parts, " && ")
}

// normalizeScore maps an IP score on unit vectors onto [0, 1].
func normalizeScore(score float32) float64 {
	sim := (float64(score) + 1) / 2
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
