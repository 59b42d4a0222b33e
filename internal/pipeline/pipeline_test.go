package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docsense/docsense/internal/chatstore"
	"github.com/docsense/docsense/internal/embedding"
	"github.com/docsense/docsense/internal/llm"
	"github.com/docsense/docsense/internal/models"
	"github.com/docsense/docsense/internal/vector"
)

const testDims = 8

type fixture struct {
	pipeline *Pipeline
	history  chatstore.Store
	vectors  *vector.Store
	embedder *embedding.MockEmbedder
	session  string
}

func newFixture(t *testing.T, model llm.ChatModel) *fixture {
	t.Helper()
	store, err := chatstore.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	sessionID := uuid.NewString()
	if err := store.CreateSession(context.Background(), models.Session{
		ID:             sessionID,
		CollectionName: "docs-test",
		CreatedAt:      time.Now().UTC(),
	}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	vectors := vector.NewStore(t.TempDir(), testDims)
	emb := embedding.NewMockEmbedder(testDims)
	return &fixture{
		pipeline: New(model, emb, vectors, store, 3, zap.NewNop()),
		history:  store,
		vectors:  vectors,
		embedder: emb,
		session:  sessionID,
	}
}

func (f *fixture) index(t *testing.T, texts ...string) {
	t.Helper()
	vecs, err := f.embedder.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	chunks := make([]models.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = models.Chunk{
			ID:        uuid.NewString(),
			Text:      text,
			Metadata:  models.ChunkMetadata{Source: "doc.pdf", Page: 1, ChunkIndex: i},
			Embedding: vecs[i],
		}
	}
	if _, err := f.vectors.Build(f.session, chunks); err != nil {
		t.Fatalf("Build: %v", err)
	}
}

// echoContextModel answers with the context it was given, so tests can assert
// what was retrieved.
func echoContextModel() llm.ChatModel {
	return llm.ModelFunc(func(ctx context.Context, system string, history []models.Message, user string) (string, error) {
		return "answer given context: " + system, nil
	})
}

func TestAnswerRetrievesAndRecords(t *testing.T) {
	f := newFixture(t, echoContextModel())
	f.index(t, "the warranty lasts two years", "shipping takes five days")

	answer, err := f.pipeline.Answer(context.Background(), f.session, "How long is the warranty?")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !strings.Contains(answer, "warranty lasts two years") {
		t.Errorf("retrieved context missing from synthesis: %q", answer)
	}

	history, err := f.history.History(context.Background(), f.session)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("got %d messages, want 2", len(history))
	}
	if history[0].Role != models.RoleHuman || history[0].Content != "How long is the warranty?" {
		t.Errorf("human message wrong: %+v", history[0])
	}
	if history[1].Role != models.RoleAssistant || history[1].Content != answer {
		t.Errorf("assistant message wrong: %+v", history[1])
	}
	if !history[1].Timestamp.After(history[0].Timestamp) {
		t.Error("assistant timestamp not after human timestamp")
	}
}

func TestAnswerNoIndex(t *testing.T) {
	f := newFixture(t, echoContextModel())

	_, err := f.pipeline.Answer(context.Background(), f.session, "anything")
	if !errors.Is(err, vector.ErrIndexNotFound) {
		t.Fatalf("got %v, want ErrIndexNotFound", err)
	}
	var pe *PipelineError
	if !errors.As(err, &pe) {
		t.Fatalf("error is not a PipelineError: %v", err)
	}
	if pe.Stage != StageRetrieve {
		t.Errorf("stage = %q, want %q", pe.Stage, StageRetrieve)
	}

	history, _ := f.history.History(context.Background(), f.session)
	if len(history) != 0 {
		t.Errorf("failed turn wrote %d messages", len(history))
	}
}

func TestAnswerSkipsReformulationOnEmptyHistory(t *testing.T) {
	calls := 0
	model := llm.ModelFunc(func(ctx context.Context, system string, history []models.Message, user string) (string, error) {
		calls++
		if system == contextualizePrompt {
			t.Error("reformulation requested with empty history")
		}
		return "ok", nil
	})
	f := newFixture(t, model)
	f.index(t, "some content")

	if _, err := f.pipeline.Answer(context.Background(), f.session, "first question"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if calls != 1 {
		t.Errorf("model called %d times, want 1 (synthesis only)", calls)
	}
}

func TestAnswerReformulatesWithHistory(t *testing.T) {
	var reformulated string
	model := llm.ModelFunc(func(ctx context.Context, system string, history []models.Message, user string) (string, error) {
		if system == contextualizePrompt {
			reformulated = "What is the warranty period for the laptop?"
			return reformulated, nil
		}
		// Synthesis must receive the user's original words, not the rewrite.
		if len(history) > 0 && user != "what about it?" {
			t.Errorf("synthesis got %q, want original query", user)
		}
		return "two years", nil
	})
	f := newFixture(t, model)
	f.index(t, "laptop warranty is two years")

	// seed a prior exchange so history is non-empty
	if _, err := f.pipeline.Answer(context.Background(), f.session, "Tell me about the laptop"); err != nil {
		t.Fatalf("seed Answer: %v", err)
	}

	if _, err := f.pipeline.Answer(context.Background(), f.session, "what about it?"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if reformulated == "" {
		t.Error("follow-up was never reformulated")
	}
}

func TestAnswerSynthesisFailureWritesNothing(t *testing.T) {
	boom := errors.New("model unavailable")
	model := llm.ModelFunc(func(ctx context.Context, system string, history []models.Message, user string) (string, error) {
		return "", boom
	})
	f := newFixture(t, model)
	f.index(t, "some content")

	_, err := f.pipeline.Answer(context.Background(), f.session, "question")
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want wrapped model error", err)
	}
	var pe *PipelineError
	if !errors.As(err, &pe) || pe.Stage != StageSynthesize {
		t.Fatalf("got %v, want PipelineError at synthesize", err)
	}

	history, _ := f.history.History(context.Background(), f.session)
	if len(history) != 0 {
		t.Errorf("failed turn wrote %d messages", len(history))
	}
}

// historyFailStore fails history reads while leaving everything else intact.
type historyFailStore struct {
	chatstore.Store
}

func (s *historyFailStore) History(ctx context.Context, sessionID string) ([]models.Message, error) {
	return nil, errors.New("history table unavailable")
}

func TestAnswerHistoryFailureStage(t *testing.T) {
	f := newFixture(t, echoContextModel())
	f.index(t, "some content")

	failing := New(echoContextModel(), f.embedder, f.vectors, &historyFailStore{Store: f.history}, 3, zap.NewNop())

	_, err := failing.Answer(context.Background(), f.session, "question")
	var pe *PipelineError
	if !errors.As(err, &pe) {
		t.Fatalf("got %v, want PipelineError", err)
	}
	if pe.Stage != StageHistory {
		t.Errorf("stage = %q, want %q", pe.Stage, StageHistory)
	}
}

// appendFailStore lets reads succeed but rejects exchange writes.
type appendFailStore struct {
	chatstore.Store
}

func (s *appendFailStore) AppendExchange(ctx context.Context, sessionID string, human, assistant models.Message) error {
	return errors.New("disk full")
}

func TestAnswerPersistenceFailureStillReturnsAnswer(t *testing.T) {
	f := newFixture(t, echoContextModel())
	f.index(t, "some content")

	failing := New(echoContextModel(), f.embedder, f.vectors, &appendFailStore{Store: f.history}, 3, zap.NewNop())

	answer, err := failing.Answer(context.Background(), f.session, "question")
	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("got %v, want PersistenceError", err)
	}
	if answer == "" {
		t.Error("answer lost on persistence failure")
	}

	history, _ := f.history.History(context.Background(), f.session)
	if len(history) != 0 {
		t.Errorf("failed persistence wrote %d messages", len(history))
	}
}

func TestAnswerTopKBound(t *testing.T) {
	var contextTexts string
	model := llm.ModelFunc(func(ctx context.Context, system string, history []models.Message, user string) (string, error) {
		contextTexts = system
		return "ok", nil
	})
	f := newFixture(t, model)

	texts := make([]string, 10)
	for i := range texts {
		texts[i] = fmt.Sprintf("distinct chunk number %d with unique content", i)
	}
	f.index(t, texts...)

	if _, err := f.pipeline.Answer(context.Background(), f.session, "query"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	count := 0
	for i := range texts {
		if strings.Contains(contextTexts, fmt.Sprintf("distinct chunk number %d ", i)) {
			count++
		}
	}
	if count != 3 {
		t.Errorf("context holds %d chunks, want top-k of 3", count)
	}
}
