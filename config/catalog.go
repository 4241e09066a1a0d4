package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// IntentRule maps question keywords to a document sub-type. Rules are
// loaded once at startup and treated as immutable afterwards.
type IntentRule struct {
	IntentName     string   `json:"intent_name" yaml:"intent_name"`
	DocType        string   `json:"doc_type" yaml:"doc_type"`
	Keywords       []string `json:"keywords" yaml:"keywords"`
	TimeWindowDays int      `json:"time_window_days" yaml:"time_window_days"`
}

// RewriteTemplate is a canonical query rewrite for one document sub-type.
// The template may reference {keyspace} and {table} placeholders.
type RewriteTemplate struct {
	DocSubType          string   `json:"doc_sub_type" yaml:"doc_sub_type"`
	SourceType          string   `json:"source_type" yaml:"source_type"`
	RewriteTemplate     string   `json:"rewrite_template" yaml:"rewrite_template"`
	Description         string   `json:"description,omitempty" yaml:"description,omitempty"`
	Example             string   `json:"example,omitempty" yaml:"example,omitempty"`
	SimilarityThreshold float64  `json:"similarity_threshold,omitempty" yaml:"similarity_threshold,omitempty"`
	ExampleQuestions    []string `json:"example_questions,omitempty" yaml:"example_questions,omitempty"`
}

// IntentCatalog holds the configured intent rules.
type IntentCatalog struct {
	Rules []IntentRule `json:"rules" yaml:"rules"`
}

// RewriteCatalog holds the configured rewrite templates keyed by sub-type.
type RewriteCatalog struct {
	Templates []RewriteTemplate `json:"templates" yaml:"templates"`
}

// ByDocSubType indexes the catalog for lookup.
func (c *RewriteCatalog) ByDocSubType() map[string]RewriteTemplate {
	out := make(map[string]RewriteTemplate, len(c.Templates))
	for _, t := range c.Templates {
		if t.DocSubType != "" {
			out[t.DocSubType] = t
		}
	}
	return out
}

// LoadIntentCatalog reads intent rules from a YAML file. A missing path or
// file returns (nil, nil): the classifier falls back to built-in rules.
func LoadIntentCatalog(path string) (*IntentCatalog, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read intent catalog: %w", err)
	}
	var cat IntentCatalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse intent catalog: %w", err)
	}
	return &cat, nil
}

// LoadRewriteCatalog reads rewrite templates from a YAML file. A missing
// path or file returns (nil, nil): rewriting becomes a pass-through.
func LoadRewriteCatalog(path string) (*RewriteCatalog, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read rewrite catalog: %w", err)
	}
	var cat RewriteCatalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse rewrite catalog: %w", err)
	}
	return &cat, nil
}

// Load reads the root configuration from a YAML file, applies defaults
// and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.VectorDB.Mapping.Fields == nil {
		cfg.VectorDB.Mapping = DefaultMapping()
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
