package prompt

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/sakthi87/ragllmmvp-sub001/common/logger"
)

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

// TokenCount estimates the token count of text with the cl100k_base
// encoding. When the encoding cannot be loaded (offline environments) it
// falls back to a 4-chars-per-token estimate.
func TokenCount(text string) int {
	encOnce.Do(func() {
		var err error
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			logger.Warnf("prompt: tiktoken unavailable, using length estimate: %v", err)
		}
	})
	if enc == nil {
		return (len(text) + 3) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

// Budget computes the generation token budget. An explicit caller value
// is floored to base and clamped to cap. With no caller value a single
// intent gets the base; multiple intents get base plus a per-intent
// allowance, capped.
func Budget(requested, intentCount, base, perIntent, limit int) int {
	if intentCount < 1 {
		intentCount = 1
	}
	if requested > 0 {
		if requested < base {
			return base
		}
		if requested > limit {
			return limit
		}
		return requested
	}
	if intentCount == 1 {
		return base
	}
	budget := base + perIntent*intentCount
	if budget > limit {
		budget = limit
	}
	return budget
}
