package config

import "fmt"

// Config is the root configuration for the data platform assistant.
type Config struct {
	Retrieval  RetrievalConfig  `json:"retrieval" yaml:"retrieval"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	LLM        LLMConfig        `json:"llm" yaml:"llm"`
	Embedding  EmbeddingConfig  `json:"embedding" yaml:"embedding"`
	VectorDB   VectorDBConfig   `json:"vectordb" yaml:"vectordb"`
	HTTPClient *HTTPClientConfig `json:"http_client,omitempty" yaml:"http_client,omitempty"`
	Cache      CacheConfig      `json:"cache,omitempty" yaml:"cache,omitempty"`

	// Optional rule catalogs. Absent files degrade to built-in rules
	// (intents) and pass-through rewriting (templates); they never fail
	// startup.
	IntentRulesPath      string `json:"intent_rules_path,omitempty" yaml:"intent_rules_path,omitempty"`
	RewriteTemplatesPath string `json:"rewrite_templates_path,omitempty" yaml:"rewrite_templates_path,omitempty"`
}

// RetrievalConfig bounds the vector search stage.
type RetrievalConfig struct {
	ClusterName      string  `json:"cluster_name,omitempty" yaml:"cluster_name,omitempty"`
	DefaultKeyspace  string  `json:"default_keyspace,omitempty" yaml:"default_keyspace,omitempty"`
	DefaultTable     string  `json:"default_table,omitempty" yaml:"default_table,omitempty"`
	TopKPerType      int     `json:"top_k_per_type,omitempty" yaml:"top_k_per_type,omitempty"`
	MaxTopK          int     `json:"max_top_k,omitempty" yaml:"max_top_k,omitempty"`
	DefaultThreshold float64 `json:"default_threshold,omitempty" yaml:"default_threshold,omitempty"`
	DefaultDaysBack  int     `json:"default_days_back,omitempty" yaml:"default_days_back,omitempty"`
	MaxDaysBack      int     `json:"max_days_back,omitempty" yaml:"max_days_back,omitempty"`
}

// GenerationConfig bounds the answer generation stage.
type GenerationConfig struct {
	TimeoutSeconds  int     `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
	MaxRetries      int     `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`
	MaxParallel     int     `json:"max_parallel,omitempty" yaml:"max_parallel,omitempty"`
	BaseTokens      int     `json:"base_tokens,omitempty" yaml:"base_tokens,omitempty"`
	TokensPerIntent int     `json:"tokens_per_intent,omitempty" yaml:"tokens_per_intent,omitempty"`
	MaxTokenBudget  int     `json:"max_token_budget,omitempty" yaml:"max_token_budget,omitempty"`
	Temperature     float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
}

// LLMConfig defines configuration for the generation model.
type LLMConfig struct {
	Provider    string  `json:"provider" yaml:"provider"` // Available options: openai, local
	APIKey      string  `json:"api_key,omitempty" yaml:"api_key"`
	BaseURL     string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
}

// EmbeddingConfig defines configuration for the embedding model.
type EmbeddingConfig struct {
	Provider   string `json:"provider" yaml:"provider"` // Available options: openai, local
	APIKey     string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model      string `json:"model,omitempty" yaml:"model,omitempty"`
	Dimensions int    `json:"dimensions,omitempty" yaml:"dimension,omitempty"`
}

// VectorDBConfig defines configuration for the vector store.
type VectorDBConfig struct {
	Provider   string        `json:"provider" yaml:"provider"` // Available options: milvus, memory
	Host       string        `json:"host,omitempty" yaml:"host,omitempty"`
	Port       int           `json:"port,omitempty" yaml:"port,omitempty"`
	Database   string        `json:"database,omitempty" yaml:"database,omitempty"`
	Collection string        `json:"collection,omitempty" yaml:"collection,omitempty"`
	Username   string        `json:"username,omitempty" yaml:"username,omitempty"`
	Password   string        `json:"password,omitempty" yaml:"password,omitempty"`
	Mapping    MappingConfig `json:"mapping,omitempty" yaml:"mapping,omitempty"`
}

// HTTPClientConfig tunes the shared outbound HTTP client used by the
// local embedding/generation providers.
type HTTPClientConfig struct {
	TimeoutMs              int      `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	Retry                  int      `json:"retry,omitempty" yaml:"retry,omitempty"`
	BackoffMinMs           int      `json:"backoff_min_ms,omitempty" yaml:"backoff_min_ms,omitempty"`
	BackoffMaxMs           int      `json:"backoff_max_ms,omitempty" yaml:"backoff_max_ms,omitempty"`
	HostAllowlist          []string `json:"host_allowlist,omitempty" yaml:"host_allowlist,omitempty"`
	MaxConsecutiveFailures int      `json:"max_consecutive_failures,omitempty" yaml:"max_consecutive_failures,omitempty"`
	CircuitOpenSeconds     int      `json:"circuit_open_seconds,omitempty" yaml:"circuit_open_seconds,omitempty"`
}

// CacheConfig tunes the embedding LRU cache.
type CacheConfig struct {
	Capacity   int `json:"capacity,omitempty" yaml:"capacity,omitempty"`
	TTLSeconds int `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
}

// MappingConfig defines field mapping configuration for vector stores.
type MappingConfig struct {
	Fields []FieldMapping `json:"fields,omitempty" yaml:"fields,omitempty"`
	Index  IndexConfig    `json:"index,omitempty" yaml:"index,omitempty"`
	Search SearchConfig   `json:"search,omitempty" yaml:"search,omitempty"`
}

// FieldMapping defines mapping for a single field.
type FieldMapping struct {
	StandardName string                 `json:"standard_name" yaml:"standard_name"`
	RawName      string                 `json:"raw_name" yaml:"raw_name"`
	Properties   map[string]interface{} `json:"properties,omitempty" yaml:"properties,omitempty"`
}

func (f FieldMapping) IsPrimaryKey() bool {
	return f.StandardName == "id"
}

func (f FieldMapping) IsAutoID() bool {
	if f.Properties == nil {
		return false
	}
	autoID, ok := f.Properties["auto_id"].(bool)
	if !ok {
		return false
	}
	return autoID
}

func (f FieldMapping) IsVectorField() bool {
	return f.StandardName == "vector"
}

func (f FieldMapping) MaxLength() int {
	if f.Properties == nil {
		return 0
	}
	maxLength, ok := f.Properties["max_length"].(int)
	if !ok {
		return 256
	}
	return maxLength
}

// IndexConfig defines configuration for index parameters.
type IndexConfig struct {
	// Index type, e.g., IVF_FLAT, IVF_SQ8, HNSW, etc.
	IndexType string `json:"index_type" yaml:"index_type"`
	// Index parameter configuration
	Params map[string]interface{} `json:"params" yaml:"params"`
}

func (i IndexConfig) ParamsString(key string) (string, error) {
	if mVal, ok := i.Params[key].(string); ok {
		return mVal, nil
	}
	return "", fmt.Errorf("params %s not found", key)
}

func (i IndexConfig) ParamsInt64(key string) (int64, error) {
	if mVal, ok := i.Params[key].(int64); ok {
		return mVal, nil
	}
	if mVal, ok := i.Params[key].(int); ok {
		return int64(mVal), nil
	}
	return 0, fmt.Errorf("params %s not found", key)
}

// SearchConfig defines configuration for search parameters.
type SearchConfig struct {
	// Metric type, e.g., L2, IP, etc.
	MetricType string `json:"metric_type,omitempty" yaml:"metric_type,omitempty"`
	// Search parameter configuration
	Params map[string]interface{} `json:"params" yaml:"params"`
}

func (s SearchConfig) ParamsInt64(key string) (int64, error) {
	if mVal, ok := s.Params[key].(int64); ok {
		return mVal, nil
	}
	if mVal, ok := s.Params[key].(int); ok {
		return int64(mVal), nil
	}
	return 0, fmt.Errorf("params %s not found", key)
}

// Default returns a fully defaulted configuration suitable for local runs.
func Default() *Config {
	cfg := &Config{
		Retrieval: RetrievalConfig{
			DefaultKeyspace: "transaction_keyspace",
			DefaultTable:    "dda_transactions",
		},
		LLM: LLMConfig{
			Provider:    "local",
			BaseURL:     "http://localhost:8081",
			Model:       "phi-4",
			Temperature: 0.3,
		},
		Embedding: EmbeddingConfig{
			Provider:   "local",
			BaseURL:    "http://localhost:8082",
			Model:      "all-MiniLM-L6-v2",
			Dimensions: 384,
		},
		VectorDB: VectorDBConfig{
			Provider:   "memory",
			Collection: "rag_documents",
			Mapping:    DefaultMapping(),
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// DefaultMapping returns the standard document field mapping for the
// platform document collection.
func DefaultMapping() MappingConfig {
	return MappingConfig{
		Fields: []FieldMapping{
			{StandardName: "id", RawName: "id", Properties: map[string]interface{}{"max_length": 256, "auto_id": false}},
			{StandardName: "cluster_name", RawName: "cluster_name", Properties: map[string]interface{}{"max_length": 128}},
			{StandardName: "source_type", RawName: "source_type", Properties: map[string]interface{}{"max_length": 64}},
			{StandardName: "doc_sub_type", RawName: "doc_sub_type", Properties: map[string]interface{}{"max_length": 64}},
			{StandardName: "source_name", RawName: "source_name", Properties: map[string]interface{}{"max_length": 256}},
			{StandardName: "keyspace", RawName: "keyspace_name", Properties: map[string]interface{}{"max_length": 128}},
			{StandardName: "table_name", RawName: "table_name", Properties: map[string]interface{}{"max_length": 128}},
			{StandardName: "event_date", RawName: "event_date", Properties: make(map[string]interface{})},
			{StandardName: "content", RawName: "content", Properties: map[string]interface{}{"max_length": 8192}},
			{StandardName: "vector", RawName: "vector", Properties: make(map[string]interface{})},
		},
		Index: IndexConfig{
			IndexType: "HNSW",
			Params:    map[string]interface{}{"M": 8, "efConstruction": 64},
		},
		Search: SearchConfig{
			MetricType: "IP",
			Params:     make(map[string]interface{}),
		},
	}
}

// ApplyDefaults fills zero-valued tunables with their documented defaults.
func (c *Config) ApplyDefaults() {
	if c.Retrieval.TopKPerType <= 0 {
		c.Retrieval.TopKPerType = 6
	}
	if c.Retrieval.MaxTopK <= 0 {
		c.Retrieval.MaxTopK = 10
	}
	if c.Retrieval.DefaultThreshold <= 0 {
		c.Retrieval.DefaultThreshold = 0.65
	}
	if c.Retrieval.DefaultDaysBack <= 0 {
		c.Retrieval.DefaultDaysBack = 180
	}
	if c.Retrieval.MaxDaysBack <= 0 {
		c.Retrieval.MaxDaysBack = 3650
	}
	if c.Generation.TimeoutSeconds <= 0 {
		c.Generation.TimeoutSeconds = 60
	}
	if c.Generation.MaxRetries <= 0 {
		c.Generation.MaxRetries = 2
	}
	if c.Generation.MaxParallel <= 0 {
		c.Generation.MaxParallel = 4
	}
	if c.Generation.BaseTokens <= 0 {
		c.Generation.BaseTokens = 200
	}
	if c.Generation.TokensPerIntent <= 0 {
		c.Generation.TokensPerIntent = 50
	}
	if c.Generation.MaxTokenBudget <= 0 {
		c.Generation.MaxTokenBudget = 512
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 384
	}
	if c.Cache.Capacity <= 0 {
		c.Cache.Capacity = 512
	}
	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = 300
	}
}
