// Package ingest runs the document ingestion pipeline: extract pages, split
// into chunks, embed, and index for the owning session.
package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docsense/docsense/internal/embedding"
	"github.com/docsense/docsense/internal/models"
	"github.com/docsense/docsense/internal/splitter"
	"github.com/docsense/docsense/internal/vector"
)

// DocumentLoader extracts pages from raw document bytes.
type DocumentLoader interface {
	Load(content []byte, sourceType, filename string) ([]models.Page, error)
}

// UploadFile is one file submitted for ingestion.
type UploadFile struct {
	Name       string
	SourceType string
	Content    []byte
}

// Result summarizes a completed ingestion.
type Result struct {
	Files  int `json:"files"`
	Pages  int `json:"pages"`
	Chunks int `json:"chunks"`
}

// Ingester turns uploaded documents into indexed, searchable chunks.
type Ingester struct {
	loader   DocumentLoader
	splitter *splitter.Splitter
	embedder embedding.Embedder
	vectors  *vector.Store
	logger   *zap.Logger
}

// NewIngester creates an ingester from its pipeline stages.
func NewIngester(ld DocumentLoader, sp *splitter.Splitter, emb embedding.Embedder, vectors *vector.Store, logger *zap.Logger) *Ingester {
	return &Ingester{loader: ld, splitter: sp, embedder: emb, vectors: vectors, logger: logger}
}

// Ingest processes files for a session. Extraction or embedding failure on
// any file aborts the whole batch without touching the session's index.
// Documents yielding no chunks are not an error; the result reports zero.
func (g *Ingester) Ingest(ctx context.Context, sessionID string, files []UploadFile) (Result, error) {
	var pages []models.Page
	for _, f := range files {
		extracted, err := g.loader.Load(f.Content, f.SourceType, f.Name)
		if err != nil {
			return Result{}, fmt.Errorf("load %s: %w", f.Name, err)
		}
		pages = append(pages, extracted...)
	}

	var chunks []models.Chunk
	for _, p := range pages {
		for i, text := range g.splitter.Split(p.Text) {
			chunks = append(chunks, models.Chunk{
				Text: text,
				Metadata: models.ChunkMetadata{
					Source:     p.Source,
					Page:       p.Number,
					ChunkIndex: i,
				},
			})
		}
	}

	result := Result{Files: len(files), Pages: len(pages), Chunks: len(chunks)}
	if len(chunks) == 0 {
		g.logger.Info("ingestion produced no chunks",
			zap.String("session_id", sessionID),
			zap.Int("files", result.Files))
		return result, nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := g.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return Result{}, fmt.Errorf("embed chunks: %w", err)
	}
	for i := range chunks {
		chunks[i].ID = uuid.NewString()
		chunks[i].Embedding = vectors[i]
	}

	if _, err := g.vectors.Build(sessionID, chunks); err != nil {
		return Result{}, fmt.Errorf("index chunks: %w", err)
	}

	g.logger.Info("documents ingested",
		zap.String("session_id", sessionID),
		zap.Int("files", result.Files),
		zap.Int("pages", result.Pages),
		zap.Int("chunks", result.Chunks))
	return result, nil
}
