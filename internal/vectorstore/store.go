package vectorstore

import "context"

// Record is one chunk as persisted in the vector index.
type Record struct {
	ChunkID string
	Text    string
	Vector  []float32
}

// Match is one retrieval hit, ordered by similarity.
type Match struct {
	ChunkID string
	Text    string
	Score   float32
}

// Stats mirrors the index statistics exposed over /system-status.
type Stats struct {
	VectorCount int64   `json:"vector_count"`
	Dimension   int     `json:"index_dimension"`
	Fullness    float64 `json:"index_fullness"`
}

// Store persists chunk embeddings and supports similarity search. The
// backing service provides per-operation atomicity; nothing here wraps
// multiple calls in a transaction.
type Store interface {
	Upsert(ctx context.Context, records []Record) error
	Search(ctx context.Context, vector []float32, topK int) ([]Match, error)
	Stats(ctx context.Context) (Stats, error)
	Clear(ctx context.Context) error
}
