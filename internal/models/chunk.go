package models

// Page is one extracted text unit of an uploaded document.
type Page struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Number int    `json:"page"`
}

// ChunkMetadata identifies where a chunk came from.
type ChunkMetadata struct {
	Source     string `json:"source"`
	Page       int    `json:"page"`
	ChunkIndex int    `json:"chunk_index"`
}

// Chunk is a bounded text fragment of a source document, the unit of
// embedding and retrieval. Chunks are immutable once created.
type Chunk struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Metadata  ChunkMetadata `json:"metadata"`
	Embedding []float32     `json:"-"`
}

// ScoredChunk is a retrieval hit: a chunk plus its similarity score.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}
