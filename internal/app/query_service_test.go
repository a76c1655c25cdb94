package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pdfqa/internal/ai"
	"pdfqa/internal/model"
	"pdfqa/internal/vectorstore"
)

type fakeCompleter struct {
	answer   string
	err      error
	lastMsgs []ai.ChatMessage
	delay    time.Duration
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []ai.ChatMessage) (string, error) {
	f.lastMsgs = messages
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.answer, f.err
}

type fakePublisher struct {
	published []model.QAExchange
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, ex model.QAExchange) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, ex)
	return nil
}

type fakeHistory struct {
	appended []model.QAExchange
}

func (f *fakeHistory) Append(_ context.Context, ex model.QAExchange) error {
	f.appended = append(f.appended, ex)
	return nil
}

func matchesFixture() []vectorstore.Match {
	return []vectorstore.Match{
		{ChunkID: "report:chunk_0", Text: "revenue grew twelve percent", Score: 0.91},
		{ChunkID: "report:chunk_3", Text: "costs were flat year over year", Score: 0.77},
	}
}

func TestAskAnswersFromRetrievedChunks(t *testing.T) {
	store := &fakeStore{matches: matchesFixture()}
	completer := &fakeCompleter{answer: " Revenue grew 12%. "}
	publisher := &fakePublisher{}
	history := &fakeHistory{}
	s := NewQueryService(store, &fakeEmbedder{}, completer, publisher, history, 5, time.Minute)

	result, err := s.Ask(context.Background(), AskInput{Question: "How did revenue develop?"})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if result.Answer != "Revenue grew 12%." {
		t.Errorf("answer = %q", result.Answer)
	}
	if result.Unsupported {
		t.Error("unsupported set despite retrieved chunks")
	}
	if len(result.Sources) != 2 || result.Sources[0].ChunkID != "report:chunk_0" {
		t.Errorf("sources = %+v", result.Sources)
	}
	if store.lastTopK != 5 {
		t.Errorf("topK = %d, want 5", store.lastTopK)
	}

	// Retrieved text must reach the model.
	prompt := completer.lastMsgs[len(completer.lastMsgs)-1].Content
	if !strings.Contains(prompt, "revenue grew twelve percent") {
		t.Errorf("prompt missing chunk text: %q", prompt)
	}
	if !strings.Contains(prompt, "How did revenue develop?") {
		t.Errorf("prompt missing question: %q", prompt)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("published %d exchanges, want 1", len(publisher.published))
	}
	if publisher.published[0].SourceIDs != "report:chunk_0,report:chunk_3" {
		t.Errorf("source ids = %q", publisher.published[0].SourceIDs)
	}
	if len(history.appended) != 1 {
		t.Errorf("history entries = %d, want 1", len(history.appended))
	}
}

func TestAskEmptyIndexStillAnswers(t *testing.T) {
	store := &fakeStore{}
	completer := &fakeCompleter{answer: "The document does not cover this."}
	s := NewQueryService(store, &fakeEmbedder{}, completer, nil, nil, 5, time.Minute)

	result, err := s.Ask(context.Background(), AskInput{Question: "Anything?"})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if !result.Unsupported {
		t.Error("unsupported not set with empty retrieval")
	}
	if len(result.Sources) != 0 {
		t.Errorf("sources = %+v, want none", result.Sources)
	}
	if result.Answer == "" {
		t.Error("empty answer")
	}
}

func TestAskEmptyQuestion(t *testing.T) {
	s := NewQueryService(&fakeStore{}, &fakeEmbedder{}, &fakeCompleter{}, nil, nil, 5, time.Minute)
	for _, q := range []string{"", "   "} {
		if _, err := s.Ask(context.Background(), AskInput{Question: q}); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Ask(%q) err = %v, want ErrInvalidInput", q, err)
		}
	}
}

func TestAskTimeout(t *testing.T) {
	store := &fakeStore{matches: matchesFixture()}
	completer := &fakeCompleter{answer: "late", delay: 200 * time.Millisecond}
	s := NewQueryService(store, &fakeEmbedder{}, completer, nil, nil, 5, 20*time.Millisecond)

	_, err := s.Ask(context.Background(), AskInput{Question: "slow?"})
	if !errors.Is(err, ErrAnswerTimeout) {
		t.Errorf("err = %v, want ErrAnswerTimeout", err)
	}
}

func TestAskStorageUnavailable(t *testing.T) {
	store := &fakeStore{searchErr: errors.New("milvus down")}
	s := NewQueryService(store, &fakeEmbedder{}, &fakeCompleter{}, nil, nil, 5, time.Minute)

	_, err := s.Ask(context.Background(), AskInput{Question: "anything?"})
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("err = %v, want ErrStorageUnavailable", err)
	}
}

func TestAskEmbedFailure(t *testing.T) {
	s := NewQueryService(&fakeStore{}, &fakeEmbedder{err: errors.New("quota")}, &fakeCompleter{}, nil, nil, 5, time.Minute)

	_, err := s.Ask(context.Background(), AskInput{Question: "anything?"})
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("err = %v, want ErrServiceUnavailable", err)
	}
}

func TestAskPublisherFailureDoesNotFailAnswer(t *testing.T) {
	store := &fakeStore{matches: matchesFixture()}
	publisher := &fakePublisher{err: errors.New("broker gone")}
	s := NewQueryService(store, &fakeEmbedder{}, &fakeCompleter{answer: "ok"}, publisher, nil, 5, time.Minute)

	result, err := s.Ask(context.Background(), AskInput{Question: "still works?"})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if result.Answer != "ok" {
		t.Errorf("answer = %q", result.Answer)
	}
}

func TestSnippetTruncation(t *testing.T) {
	long := strings.Repeat("가", 300)
	got := snippet(long)
	if runes := []rune(got); len(runes) != snippetMaxRunes {
		t.Errorf("snippet length = %d runes, want %d", len(runes), snippetMaxRunes)
	}
	if short := "short"; snippet(short) != short {
		t.Errorf("short text modified: %q", snippet(short))
	}
}
