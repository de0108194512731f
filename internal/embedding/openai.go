package embedding

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/rcliao/recall/internal/errs"
)

// OpenAIEmbedder uses any OpenAI-compatible embedding API.
type OpenAIEmbedder struct {
	client openai.Client
	model  openai.EmbeddingModel
	dims   int
	custom bool // send dims as the dimensions parameter
}

// NewOpenAIEmbedder creates an embedder using an OpenAI-compatible API.
func NewOpenAIEmbedder(baseURL, apiKey, model string, dims int) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, errs.New(errs.CodeConfigValidateInvalidValue, "openai: missing api key")
	}
	m := openai.EmbeddingModel(model)
	if m == "" {
		m = openai.EmbeddingModelTextEmbedding3Small
	}
	custom := dims > 0
	if !custom {
		dims = 1536
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIEmbedder{
		client: openai.NewClient(opts...),
		model:  m,
		dims:   dims,
		custom: custom,
	}, nil
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: e.model,
	}
	if e.custom {
		params.Dimensions = openai.Int(int64(e.dims))
	}
	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeEmbedUpstreamFailure, "openai embeddings request failed")
	}
	if len(resp.Data) == 0 {
		return nil, errs.New(errs.CodeEmbedResponseInvalid, "no embedding returned")
	}

	src := resp.Data[0].Embedding
	v := make(Vector, len(src))
	for i, x := range src {
		v[i] = float32(x)
	}
	return v, nil
}

func (e *OpenAIEmbedder) Dims() int { return e.dims }

func (e *OpenAIEmbedder) ID() string { return "openai:" + string(e.model) }
