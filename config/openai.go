package config

import "os"

type OpenAIConfig struct {
	// APIKey for the embedding provider.
	// Default: read from OPENAI_API_KEY
	APIKey string `json:"-"`

	// EmbeddingModel specifies which embedding model to use
	// Default: "text-embedding-3-small"
	EmbeddingModel string `json:"embeddingModel,omitempty"`

	// EmbeddingDimensions is the fixed dimension of produced vectors
	// Default: 1536 (text-embedding-3-small)
	EmbeddingDimensions int `json:"embeddingDimensions,omitempty"`
}

func NewOpenAIConfig() *OpenAIConfig {
	return &OpenAIConfig{
		APIKey:              os.Getenv("OPENAI_API_KEY"),
		EmbeddingModel:      "text-embedding-3-small",
		EmbeddingDimensions: 1536,
	}
}
