package app

import (
	"context"

	"pdfqa/internal/ai"
)

// Embedder converts text into vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer generates a chat completion for the given messages.
type Completer interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

// LLM binds an OpenAI-compatible client to its model configuration so the
// services do not carry config structs around.
type LLM struct {
	client     *ai.OpenAICompatibleClient
	embConfig  ai.EmbeddingConfig
	chatConfig ai.ChatConfig
}

func NewLLM(client *ai.OpenAICompatibleClient, embConfig ai.EmbeddingConfig, chatConfig ai.ChatConfig) *LLM {
	return &LLM{
		client:     client,
		embConfig:  embConfig,
		chatConfig: chatConfig,
	}
}

func (l *LLM) Embed(ctx context.Context, text string) ([]float32, error) {
	return l.client.Embed(ctx, l.embConfig, text)
}

func (l *LLM) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return l.client.EmbedBatch(ctx, l.embConfig, texts)
}

func (l *LLM) Complete(ctx context.Context, messages []ai.ChatMessage) (string, error) {
	return l.client.Complete(ctx, l.chatConfig, messages)
}
