package vectorstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
	"github.com/rs/zerolog/log"
)

const (
	fieldChunkID = "chunk_id"
	fieldText    = "text"
	fieldVector  = "vector"

	maxIDLength   = "255"
	maxTextLength = "65535"
)

// Milvus implements Store on a single Milvus collection with a COSINE HNSW
// index.
type Milvus struct {
	client     *milvusclient.Client
	collection string
	dim        int
}

func NewMilvus(ctx context.Context, addr, collection string, dim int) (*Milvus, error) {
	cli, err := milvusclient.New(ctx, &milvusclient.ClientConfig{Address: addr})
	if err != nil {
		return nil, fmt.Errorf("connect to milvus failed: %w", err)
	}

	m := &Milvus{client: cli, collection: collection, dim: dim}
	if err := m.ensureCollection(ctx); err != nil {
		_ = cli.Close(ctx)
		return nil, err
	}
	return m, nil
}

func (m *Milvus) Close(ctx context.Context) error {
	return m.client.Close(ctx)
}

func (m *Milvus) ensureCollection(ctx context.Context) error {
	exists, err := m.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(m.collection))
	if err != nil {
		return fmt.Errorf("check collection exists failed: %w", err)
	}

	if !exists {
		schema := &entity.Schema{
			CollectionName: m.collection,
			Description:    "PDF chunk embeddings for question answering",
			Fields: []*entity.Field{
				{
					Name:       fieldChunkID,
					DataType:   entity.FieldTypeVarChar,
					PrimaryKey: true,
					AutoID:     false,
					TypeParams: map[string]string{"max_length": maxIDLength},
				},
				{
					Name:       fieldText,
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": maxTextLength},
				},
				{
					Name:       fieldVector,
					DataType:   entity.FieldTypeFloatVector,
					TypeParams: map[string]string{"dim": strconv.Itoa(m.dim)},
				},
			},
		}

		if err := m.client.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(m.collection, schema)); err != nil {
			return fmt.Errorf("create collection failed: %w", err)
		}

		idx := index.NewHNSWIndex(entity.COSINE, 16, 200)
		if _, err := m.client.CreateIndex(ctx, milvusclient.NewCreateIndexOption(m.collection, fieldVector, idx)); err != nil {
			return fmt.Errorf("create vector index failed: %w", err)
		}
		log.Info().Str("collection", m.collection).Int("dim", m.dim).Msg("created milvus collection")
	}

	if _, err := m.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(m.collection)); err != nil {
		return fmt.Errorf("load collection failed: %w", err)
	}
	return nil
}

func (m *Milvus) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]string, len(records))
	texts := make([]string, len(records))
	vectors := make([][]float32, len(records))
	for i, r := range records {
		ids[i] = r.ChunkID
		texts[i] = r.Text
		vectors[i] = r.Vector
	}

	opt := milvusclient.NewColumnBasedInsertOption(m.collection,
		column.NewColumnVarChar(fieldChunkID, ids),
		column.NewColumnVarChar(fieldText, texts),
		column.NewColumnFloatVector(fieldVector, m.dim, vectors),
	)
	if _, err := m.client.Upsert(ctx, opt); err != nil {
		return fmt.Errorf("upsert %d chunks failed: %w", len(records), err)
	}
	return nil
}

func (m *Milvus) Search(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = 5
	}

	opt := milvusclient.NewSearchOption(m.collection, topK, []entity.Vector{entity.FloatVector(vector)}).
		WithANNSField(fieldVector).
		WithOutputFields(fieldChunkID, fieldText)

	resultSets, err := m.client.Search(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}
	if len(resultSets) == 0 {
		return nil, nil
	}

	rs := resultSets[0]
	textCol := rs.GetColumn(fieldText)
	matches := make([]Match, 0, rs.ResultCount)
	for i := 0; i < rs.ResultCount; i++ {
		id, err := rs.IDs.GetAsString(i)
		if err != nil {
			continue
		}
		text := ""
		if textCol != nil {
			text, _ = textCol.GetAsString(i)
		}
		score := float32(0)
		if i < len(rs.Scores) {
			score = rs.Scores[i]
		}
		matches = append(matches, Match{ChunkID: id, Text: text, Score: score})
	}
	return matches, nil
}

func (m *Milvus) Stats(ctx context.Context) (Stats, error) {
	stats, err := m.client.GetCollectionStats(ctx, milvusclient.NewGetCollectionStatsOption(m.collection))
	if err != nil {
		return Stats{}, fmt.Errorf("get collection stats failed: %w", err)
	}

	var count int64
	if raw, ok := stats["row_count"]; ok {
		count, _ = strconv.ParseInt(raw, 10, 64)
	}
	// Milvus has no fullness notion; the field stays 0 for contract
	// compatibility with Pinecone-style status payloads.
	return Stats{VectorCount: count, Dimension: m.dim, Fullness: 0}, nil
}

func (m *Milvus) Clear(ctx context.Context) error {
	opt := milvusclient.NewDeleteOption(m.collection).WithExpr(fieldChunkID + ` != ""`)
	if _, err := m.client.Delete(ctx, opt); err != nil {
		return fmt.Errorf("clear collection failed: %w", err)
	}
	return nil
}
