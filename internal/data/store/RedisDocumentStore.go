package store

import (
	"context"
	"encoding/json"

	"github.com/akolanti/RAGChat/internal/config"
	"github.com/akolanti/RAGChat/internal/data/redisStore"
	"github.com/akolanti/RAGChat/internal/domain/commonModels"
	"github.com/akolanti/RAGChat/pkg/logger_i"
)

type RedisDocumentStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisDocumentStore(ctx context.Context) *RedisDocumentStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisDocumentStore)
	if inner == nil {
		return nil
	}
	return &RedisDocumentStore{
		store:  inner,
		logger: logger_i.NewLogger("DocumentStore"),
	}
}

func TestDocumentStore(store *redisStore.Store) *RedisDocumentStore {
	return &RedisDocumentStore{
		store:  store,
		logger: logger_i.NewLogger("test document store"),
	}
}

func docKey(docId string) string      { return "doc:" + docId }
func chatDocsKey(chatId string) string { return "chatdocs:" + chatId }

func (s *RedisDocumentStore) SaveDocument(ctx context.Context, doc commonModels.Document) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "doc Id", doc.Id)
	log.Debug("saving document")

	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	existed, _ := s.store.Exists(ctx, docKey(doc.Id))
	if err := s.store.Set(ctx, docKey(doc.Id), data, config.RedisDocumentStoreTTL); err != nil {
		return err
	}
	// status updates re-save the same id, only first save joins the chat list
	if !existed {
		return s.store.ListPush(ctx, chatDocsKey(doc.ChatId), doc.Id)
	}
	return nil
}

func (s *RedisDocumentStore) GetDocument(ctx context.Context, docId string) (commonModels.Document, bool) {
	var doc commonModels.Document
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "doc Id", docId)

	val, err := s.store.Get(ctx, docKey(docId))
	if s.store.IsNil(err) {
		return doc, false
	} else if err != nil {
		log.Error("Error getting document", "error", err)
		return doc, false
	}

	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		log.Error("Error unmarshalling document", "error", err)
		return doc, false
	}
	return doc, true
}

func (s *RedisDocumentStore) ListByChat(ctx context.Context, chatId string) ([]commonModels.Document, error) {
	ids, err := s.store.ListGetAll(ctx, chatDocsKey(chatId))
	if err != nil {
		return nil, err
	}

	docs := make([]commonModels.Document, 0, len(ids))
	for _, id := range ids {
		if doc, found := s.GetDocument(ctx, id); found {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (s *RedisDocumentStore) DeleteByChat(ctx context.Context, chatId string) error {
	ids, err := s.store.ListGetAll(ctx, chatDocsKey(chatId))
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, docKey(id))
	}
	keys = append(keys, chatDocsKey(chatId))
	return s.store.Del(ctx, keys...)
}
