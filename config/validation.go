package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s]: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("found %d configuration error(s):\n", len(errs)))
	for i, err := range errs {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Message))
	}
	return b.String()
}

// Validate validates the complete configuration
func (c *Config) Validate() error {
	var errs ValidationErrors

	if err := c.validateEmbedding(); err != nil {
		errs = append(errs, err...)
	}
	if err := c.validateLLM(); err != nil {
		errs = append(errs, err...)
	}
	if err := c.validateVectorDB(); err != nil {
		errs = append(errs, err...)
	}
	if err := c.validateRetrieval(); err != nil {
		errs = append(errs, err...)
	}
	if err := c.validateGeneration(); err != nil {
		errs = append(errs, err...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateEmbedding validates embedding configuration
func (c *Config) validateEmbedding() ValidationErrors {
	var errs ValidationErrors

	if c.Embedding.Provider == "" {
		errs = append(errs, ValidationError{
			Field:   "embedding.provider",
			Message: "embedding provider is required",
		})
	}

	if c.Embedding.Dimensions <= 0 {
		errs = append(errs, ValidationError{
			Field:   "embedding.dimensions",
			Message: fmt.Sprintf("embedding dimensions must be positive, got %d", c.Embedding.Dimensions),
		})
	}

	// Validate dimensions are reasonable (typical range: 128-4096)
	if c.Embedding.Dimensions > 0 && (c.Embedding.Dimensions < 128 || c.Embedding.Dimensions > 4096) {
		errs = append(errs, ValidationError{
			Field:   "embedding.dimensions",
			Message: fmt.Sprintf("embedding dimensions %d is outside typical range [128, 4096]", c.Embedding.Dimensions),
		})
	}

	if strings.EqualFold(c.Embedding.Provider, "local") && c.Embedding.BaseURL == "" {
		errs = append(errs, ValidationError{
			Field:   "embedding.base_url",
			Message: "base_url is required for local embedding provider",
		})
	}

	return errs
}

// validateLLM validates generation model configuration
func (c *Config) validateLLM() ValidationErrors {
	var errs ValidationErrors

	if c.LLM.Provider == "" {
		errs = append(errs, ValidationError{
			Field:   "llm.provider",
			Message: "llm provider is required",
		})
	}

	if strings.EqualFold(c.LLM.Provider, "local") && c.LLM.BaseURL == "" {
		errs = append(errs, ValidationError{
			Field:   "llm.base_url",
			Message: "base_url is required for local llm provider",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "llm.temperature",
			Message: fmt.Sprintf("llm.temperature must be in [0, 2], got %.2f", c.LLM.Temperature),
		})
	}

	return errs
}

// validateVectorDB validates vector store configuration
func (c *Config) validateVectorDB() ValidationErrors {
	var errs ValidationErrors

	if c.VectorDB.Provider == "" {
		errs = append(errs, ValidationError{
			Field:   "vectordb.provider",
			Message: "vectordb provider is required",
		})
	}

	switch strings.ToLower(c.VectorDB.Provider) {
	case "milvus":
		if c.VectorDB.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "vectordb.host",
				Message: fmt.Sprintf("vectordb host is required for %s provider", c.VectorDB.Provider),
			})
		}
		if c.VectorDB.Collection == "" {
			errs = append(errs, ValidationError{
				Field:   "vectordb.collection",
				Message: fmt.Sprintf("collection name is required for %s provider", c.VectorDB.Provider),
			})
		}
	}

	return errs
}

// validateRetrieval validates retrieval bounds
func (c *Config) validateRetrieval() ValidationErrors {
	var errs ValidationErrors

	if c.Retrieval.TopKPerType > c.Retrieval.MaxTopK {
		errs = append(errs, ValidationError{
			Field:   "retrieval.top_k_per_type",
			Message: fmt.Sprintf("top_k_per_type %d exceeds max_top_k %d", c.Retrieval.TopKPerType, c.Retrieval.MaxTopK),
		})
	}

	if c.Retrieval.MaxTopK > 100 {
		errs = append(errs, ValidationError{
			Field:   "retrieval.max_top_k",
			Message: fmt.Sprintf("retrieval.max_top_k %d is too large (max recommended: 100)", c.Retrieval.MaxTopK),
		})
	}

	if c.Retrieval.DefaultThreshold < 0 || c.Retrieval.DefaultThreshold > 1 {
		errs = append(errs, ValidationError{
			Field:   "retrieval.default_threshold",
			Message: fmt.Sprintf("retrieval.default_threshold must be in [0, 1], got %.2f", c.Retrieval.DefaultThreshold),
		})
	}

	return errs
}

// validateGeneration validates generation bounds
func (c *Config) validateGeneration() ValidationErrors {
	var errs ValidationErrors

	if c.Generation.MaxParallel > 32 {
		errs = append(errs, ValidationError{
			Field:   "generation.max_parallel",
			Message: fmt.Sprintf("generation.max_parallel %d is too large (max recommended: 32)", c.Generation.MaxParallel),
		})
	}

	if c.Generation.MaxTokenBudget < c.Generation.BaseTokens {
		errs = append(errs, ValidationError{
			Field:   "generation.max_token_budget",
			Message: fmt.Sprintf("max_token_budget %d is below base_tokens %d", c.Generation.MaxTokenBudget, c.Generation.BaseTokens),
		})
	}

	return errs
}
