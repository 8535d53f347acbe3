package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/akolanti/RAGChat/internal/config"
	"github.com/akolanti/RAGChat/internal/domain/chatModel"
	"github.com/akolanti/RAGChat/internal/domain/commonModels"
	"github.com/akolanti/RAGChat/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

var logger *logger_i.Logger
var qdrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)
var collectionName = config.ChunkCollection

// ClientHolder is the qdrant-backed Index. All chats share one collection;
// isolation comes from a mandatory chat_id payload filter on every query.
type ClientHolder struct {
	QObj  *qdrant.Client
	model string
}

func GetQdrantIndex(ctx context.Context, host string, port int, modelTag string) *ClientHolder {

	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient(host, port)
		if res != nil {
			qdrantInstance = res
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj:  qdrantInstance,
		model: modelTag,
	}
}

func newClient(host string, port int) *qdrant.Client {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil
	}

	err = createCollection(context.Background(), client, collectionName)
	if err != nil {
		logger.Error("could not create collection: ", "collectionName", collectionName, "error:", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, chatId string, chunks []commonModels.DocChunk, embeddings []commonModels.Embedding) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("mismatch: got %d chunks but %d embeddings", len(chunks), len(embeddings))
	}
	for _, emb := range embeddings {
		if emb.Model != db.model {
			return fmt.Errorf("%w: index holds %q, got %q", chatModel.ErrModelMismatch, db.model, emb.Model)
		}
	}

	// seq orders entries across upserts within a chat - the tie-breaker
	seq := time.Now().UnixNano()
	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(embeddings[i].Values...),
			Payload: qdrant.NewValueMap(map[string]any{
				"chunk_id":      chunk.ChunkId,
				"chat_id":       chatId,
				"content":       chunk.Chunk,
				"source_doc_id": chunk.Doc.Id,
				"doc_name":      chunk.Doc.Name,
				"ordinal":       chunk.Ordinal,
				"seq":           seq,
				"model":         db.model,
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) Query(ctx context.Context, chatId string, query commonModels.Embedding, k int) ([]commonModels.ScoredChunk, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if query.Model != db.model {
		return nil, fmt.Errorf("%w: index holds %q, got %q", chatModel.ErrModelMismatch, db.model, query.Model)
	}
	if k <= 0 {
		return nil, nil
	}

	// over-fetch so the deterministic tie-break below can reorder equal scores
	limit := uint64(k * 3)
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(query.Values...),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         chatFilter(chatId),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	type hit struct {
		scored  commonModels.ScoredChunk
		seq     int64
		ordinal int64
	}
	hits := make([]hit, 0, len(result))
	for _, h := range result {
		payload := h.Payload
		hits = append(hits, hit{
			scored: commonModels.ScoredChunk{
				Chunk: commonModels.DocChunk{
					Doc: commonModels.Document{
						Id:     payload["source_doc_id"].GetStringValue(),
						ChatId: chatId,
						Name:   payload["doc_name"].GetStringValue(),
					},
					ChunkId: payload["chunk_id"].GetStringValue(),
					Chunk:   payload["content"].GetStringValue(),
					Ordinal: int(payload["ordinal"].GetIntegerValue()),
				},
				Score: h.Score,
			},
			seq:     payload["seq"].GetIntegerValue(),
			ordinal: payload["ordinal"].GetIntegerValue(),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].scored.Score != hits[j].scored.Score {
			return hits[i].scored.Score > hits[j].scored.Score
		}
		if hits[i].seq != hits[j].seq {
			return hits[i].seq < hits[j].seq
		}
		return hits[i].ordinal < hits[j].ordinal
	})

	if k > len(hits) {
		k = len(hits)
	}
	matches := make([]commonModels.ScoredChunk, k)
	for i := 0; i < k; i++ {
		matches[i] = hits[i].scored
	}
	return matches, nil
}

func (db *ClientHolder) DeleteChat(ctx context.Context, chatId string) error {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	loggr.Info("Tearing down chat index", "chatId", chatId)

	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collectionName,
		Points:         qdrant.NewPointsSelectorFilter(chatFilter(chatId)),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		loggr.Error("Error deleting chat entries: ", "error:", err)
	}
	return err
}

func chatFilter(chatId string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("chat_id", chatId),
		},
	}
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	return err
}
