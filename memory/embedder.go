package memory

import (
	"context"

	goopenai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/pkg/errors"

	"github.com/nucleusmind/contextengine/config"
)

type (
	// Embedder interface for generating embeddings
	Embedder interface {
		Embed(ctx context.Context, texts ...string) ([][]float32, error)
	}

	// OpenAIEmbedder implements Embedder via the OpenAI embeddings API
	OpenAIEmbedder struct {
		client *goopenai.Client
		model  string
	}
)

var _ Embedder = (*OpenAIEmbedder)(nil)

// NewOpenAIEmbedder creates a new embedder backed by OpenAI
func NewOpenAIEmbedder(conf *config.OpenAIConfig) *OpenAIEmbedder {
	client := goopenai.NewClient(
		option.WithAPIKey(conf.APIKey),
	)
	return &OpenAIEmbedder{
		client: &client,
		model:  conf.EmbeddingModel,
	}
}

// Embed generates embeddings for the given texts
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts ...string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var input goopenai.EmbeddingNewParamsInputUnion
	input.OfArrayOfStrings = append(input.OfArrayOfStrings, texts...)

	params := goopenai.EmbeddingNewParams{
		Input:          input,
		Model:          e.model,
		EncodingFormat: goopenai.EmbeddingNewParamsEncodingFormatFloat,
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create embeddings")
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, emb := range resp.Data {
		embedding := make([]float32, len(emb.Embedding))
		for j, val := range emb.Embedding {
			embedding[j] = float32(val)
		}
		embeddings[i] = embedding
	}

	return embeddings, nil
}
