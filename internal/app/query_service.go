package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"pdfqa/internal/ai"
	"pdfqa/internal/model"
	"pdfqa/internal/vectorstore"
)

const snippetMaxRunes = 200

// ExchangePublisher hands an answered exchange to the async persistence
// path.
type ExchangePublisher interface {
	Publish(ctx context.Context, ex model.QAExchange) error
}

// HistoryAppender records an exchange in the recent-history cache.
type HistoryAppender interface {
	Append(ctx context.Context, ex model.QAExchange) error
}

type QueryService struct {
	store     vectorstore.Store
	embedder  Embedder
	completer Completer
	publisher ExchangePublisher
	history   HistoryAppender

	topK          int
	answerTimeout time.Duration
}

func NewQueryService(
	store vectorstore.Store,
	embedder Embedder,
	completer Completer,
	publisher ExchangePublisher,
	history HistoryAppender,
	topK int,
	answerTimeout time.Duration,
) *QueryService {
	if topK <= 0 {
		topK = 5
	}
	if answerTimeout <= 0 {
		answerTimeout = 60 * time.Second
	}
	return &QueryService{
		store:         store,
		embedder:      embedder,
		completer:     completer,
		publisher:     publisher,
		history:       history,
		topK:          topK,
		answerTimeout: answerTimeout,
	}
}

// AskInput carries one user question.
type AskInput struct {
	Question string
}

// Source identifies one retrieved chunk backing the answer.
type Source struct {
	ChunkID string `json:"chunk_id"`
	Snippet string `json:"snippet"`
}

// AskResult is the synthesized answer plus the chunks it was grounded on.
// Unsupported is set when retrieval found nothing, so the answer came from
// the model alone.
type AskResult struct {
	Answer      string   `json:"answer"`
	Sources     []Source `json:"source"`
	Unsupported bool     `json:"unsupported,omitempty"`
}

// Ask embeds the question, retrieves the closest chunks, and asks the LLM
// to answer from them.
func (s *QueryService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, ErrInvalidInput
	}

	queryVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	matches, err := s.store.Search(ctx, queryVec, s.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	answerCtx, cancel := context.WithTimeout(ctx, s.answerTimeout)
	defer cancel()

	answer, err := s.completer.Complete(answerCtx, buildPrompt(question, matches))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(answerCtx.Err(), context.DeadlineExceeded) {
			return nil, ErrAnswerTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	result := &AskResult{
		Answer:      strings.TrimSpace(answer),
		Sources:     make([]Source, 0, len(matches)),
		Unsupported: len(matches) == 0,
	}
	for _, m := range matches {
		result.Sources = append(result.Sources, Source{
			ChunkID: m.ChunkID,
			Snippet: snippet(m.Text),
		})
	}

	s.record(ctx, question, result)
	return result, nil
}

// buildPrompt frames the retrieved chunks as the only allowed context.
// With no matches the model is told the document contains nothing
// relevant, so it answers from general knowledge and says so.
func buildPrompt(question string, matches []vectorstore.Match) []ai.ChatMessage {
	systemContent := "You are a helpful assistant. Answer the user's question based only on the following context. If the context does not contain enough information, say so. Do not make up facts."

	var contextBlock strings.Builder
	if len(matches) == 0 {
		contextBlock.WriteString("\n---\n(no relevant passages were found in the uploaded document)\n---")
	} else {
		for _, m := range matches {
			contextBlock.WriteString("\n---\n")
			contextBlock.WriteString(m.Text)
		}
		contextBlock.WriteString("\n---")
	}

	userContent := "Context:" + contextBlock.String() + "\n\nQuestion: " + question + "\n\nAnswer:"
	return []ai.ChatMessage{
		{Role: "system", Content: systemContent},
		{Role: "user", Content: userContent},
	}
}

// record pushes the exchange to the persistence queue and history cache.
// Both are best effort; a full answer already in hand is never failed
// over bookkeeping.
func (s *QueryService) record(ctx context.Context, question string, result *AskResult) {
	ids := make([]string, len(result.Sources))
	for i, src := range result.Sources {
		ids[i] = src.ChunkID
	}
	ex := model.QAExchange{
		Question:    question,
		Answer:      result.Answer,
		SourceIDs:   strings.Join(ids, ","),
		Unsupported: result.Unsupported,
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, ex); err != nil {
			log.Warn().Err(err).Msg("publish qa exchange failed")
		}
	}
	if s.history != nil {
		if err := s.history.Append(ctx, ex); err != nil {
			log.Warn().Err(err).Msg("append qa history failed")
		}
	}
}

func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetMaxRunes {
		return text
	}
	return string(runes[:snippetMaxRunes])
}
