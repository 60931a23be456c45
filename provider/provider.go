package provider

import (
	"context"
	"errors"

	"github.com/oalvarez/petfolio/config"
	openai_provider "github.com/oalvarez/petfolio/provider/openai"
)

// Message represents a message in a conversation
type Message = openai_provider.Message

// Provider is the black-box language-model and embedding contract.
type Provider interface {
	// ChatCompletion sends the conversation and returns the model's reply text.
	ChatCompletion(ctx context.Context, messages []Message) (string, error)
	// CreateEmbedding generates one vector per input text.
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// NewProvider constructs the configured provider.
func NewProvider(cfg config.ProvidersConfig) (Provider, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, errors.New("openai api key not configured (providers.openai.api_key)")
	}
	o := cfg.OpenAI.Normalize()
	return openai_provider.NewOpenAIClient(o.APIKey, o.CompletionModel, o.EmbeddingModel, o.Temperature, o.MaxTokens, o.Timeout), nil
}
