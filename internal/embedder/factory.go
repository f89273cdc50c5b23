package embedder

import (
	"fmt"
	"os"
	"strings"
)

// Config holds embedder configuration
type Config struct {
	Provider  string
	Model     string
	APIKey    string
	CacheSize int
}

// ParseModelID splits a model identifier into provider and model parts.
// Accepted forms: "local", "jina", "openai", or "provider/model-name"
// (e.g. "openai/text-embedding-3-small").
func ParseModelID(modelID string) (provider, model string) {
	if i := strings.IndexByte(modelID, '/'); i >= 0 {
		return strings.ToLower(modelID[:i]), modelID[i+1:]
	}
	return strings.ToLower(modelID), ""
}

// NewForModel creates an embedder for the given model identifier.
// API keys come from the environment.
func NewForModel(modelID string) (Embedder, error) {
	provider, model := ParseModelID(modelID)
	return New(Config{
		Provider:  provider,
		Model:     model,
		CacheSize: 10000,
	})
}

// New creates an embedder with explicit configuration
func New(cfg Config) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	provider := strings.ToLower(cfg.Provider)
	switch provider {
	case ProviderJina:
		return NewJinaProvider(cfg.APIKey, cfg.Model, cache)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cache)
	case ProviderLocal:
		return NewLocalProvider(cache)
	default:
		return nil, fmt.Errorf("%w: unknown provider %s", ErrUnsupportedModel, cfg.Provider)
	}
}

// DefaultModelID returns the model identifier that would be used based on
// the current environment.
// Priority:
//  1. RAGSERVE_EMBEDDING_PROVIDER (jina, openai, local)
//  2. Check for API keys: JINA_API_KEY, OPENAI_API_KEY
//  3. Default to local if no API keys found
func DefaultModelID() string {
	provider := os.Getenv(EnvProvider)
	if provider != "" {
		return strings.ToLower(provider)
	}

	if os.Getenv(EnvJinaAPIKey) != "" {
		return ProviderJina
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}

	return ProviderLocal
}
