// Package pipeline answers questions against a session's indexed documents:
// history-aware reformulation, vector retrieval, and answer synthesis, with
// the exchange recorded in chat history.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docsense/docsense/internal/chatstore"
	"github.com/docsense/docsense/internal/embedding"
	"github.com/docsense/docsense/internal/llm"
	"github.com/docsense/docsense/internal/models"
	"github.com/docsense/docsense/internal/vector"
	"github.com/docsense/docsense/pkg/utils"
)

// Pipeline orchestrates a full question-answering turn.
type Pipeline struct {
	llm      llm.ChatModel
	embedder embedding.Embedder
	vectors  *vector.Store
	history  chatstore.Store
	topK     int
	logger   *zap.Logger
	locks    *utils.KeyedMutex
}

// New creates a pipeline.
func New(model llm.ChatModel, embedder embedding.Embedder, vectors *vector.Store, history chatstore.Store, topK int, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		llm:      model,
		embedder: embedder,
		vectors:  vectors,
		history:  history,
		topK:     topK,
		logger:   logger,
		locks:    utils.NewKeyedMutex(),
	}
}

// Answer runs one question-answering turn for the session. On a stage
// failure it returns a PipelineError and writes nothing. If the answer is
// produced but cannot be recorded, the answer is returned alongside a
// PersistenceError.
func (p *Pipeline) Answer(ctx context.Context, sessionID, query string) (string, error) {
	// Serialize turns within one session so concurrent queries cannot
	// interleave history writes. Different sessions proceed in parallel.
	unlock := p.locks.Lock(sessionID)
	defer unlock()

	history, err := p.history.History(ctx, sessionID)
	if err != nil {
		return "", &PipelineError{Stage: StageHistory, Err: err}
	}

	standalone, err := p.reformulate(ctx, history, query)
	if err != nil {
		return "", &PipelineError{Stage: StageReformulate, Err: err}
	}

	chunks, err := p.retrieve(ctx, sessionID, standalone)
	if err != nil {
		return "", &PipelineError{Stage: StageRetrieve, Err: err}
	}

	askedAt := time.Now().UTC()
	answer, err := p.synthesize(ctx, history, chunks, query)
	if err != nil {
		return "", &PipelineError{Stage: StageSynthesize, Err: err}
	}
	answeredAt := time.Now().UTC()

	human := models.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      models.RoleHuman,
		Content:   query,
		Timestamp: askedAt,
	}
	assistant := models.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      models.RoleAssistant,
		Content:   answer,
		Timestamp: answeredAt,
	}
	if err := p.history.AppendExchange(ctx, sessionID, human, assistant); err != nil {
		p.logger.Warn("answer produced but exchange not recorded",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return answer, &PersistenceError{Err: err}
	}

	p.logger.Info("query answered",
		zap.String("session_id", sessionID),
		zap.String("query", utils.Truncate(query, 120)),
		zap.Int("retrieved", len(chunks)))
	return answer, nil
}

// reformulate rewrites the query as a standalone question using the chat
// history. With no history there is nothing to resolve, so the query passes
// through untouched without a model call.
func (p *Pipeline) reformulate(ctx context.Context, history []models.Message, query string) (string, error) {
	if len(history) == 0 {
		return query, nil
	}
	standalone, err := p.llm.Complete(ctx, contextualizePrompt, history, query)
	if err != nil {
		return "", err
	}
	standalone = strings.TrimSpace(standalone)
	if standalone == "" {
		return query, nil
	}
	return standalone, nil
}

// retrieve embeds the standalone question and returns the session's top-k
// nearest chunks. A session with no index propagates vector.ErrIndexNotFound.
func (p *Pipeline) retrieve(ctx context.Context, sessionID, standalone string) ([]models.ScoredChunk, error) {
	idx, err := p.vectors.Load(sessionID)
	if err != nil {
		return nil, err
	}
	queryVec, err := p.embedder.Embed(ctx, standalone)
	if err != nil {
		return nil, err
	}
	return idx.Search(queryVec, p.topK)
}

// synthesize asks the model to answer the original query from the retrieved
// context and the conversation so far.
func (p *Pipeline) synthesize(ctx context.Context, history []models.Message, chunks []models.ScoredChunk, query string) (string, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Chunk.Text
	}
	system := fmt.Sprintf(qaSystemTemplate, strings.Join(texts, "\n\n"))
	return p.llm.Complete(ctx, system, history, query)
}
