package store

import (
	"context"
	"sync"

	"github.com/akolanti/RAGChat/internal/domain/commonModels"
)

type InMemoryDocumentStore struct {
	lock    *sync.RWMutex
	docs    map[string]commonModels.Document
	byChats map[string][]string //chat id -> doc ids in save order
}

func InitDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		lock:    new(sync.RWMutex),
		docs:    make(map[string]commonModels.Document),
		byChats: make(map[string][]string),
	}
}

func (store *InMemoryDocumentStore) SaveDocument(ctx context.Context, doc commonModels.Document) error {
	store.lock.Lock()
	defer store.lock.Unlock()
	if _, exists := store.docs[doc.Id]; !exists {
		store.byChats[doc.ChatId] = append(store.byChats[doc.ChatId], doc.Id)
	}
	store.docs[doc.Id] = doc
	return nil
}

func (store *InMemoryDocumentStore) GetDocument(ctx context.Context, docId string) (commonModels.Document, bool) {
	store.lock.RLock()
	defer store.lock.RUnlock()
	doc, ok := store.docs[docId]
	return doc, ok
}

func (store *InMemoryDocumentStore) ListByChat(ctx context.Context, chatId string) ([]commonModels.Document, error) {
	store.lock.RLock()
	defer store.lock.RUnlock()

	ids := store.byChats[chatId]
	docs := make([]commonModels.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := store.docs[id]; ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (store *InMemoryDocumentStore) DeleteByChat(ctx context.Context, chatId string) error {
	store.lock.Lock()
	defer store.lock.Unlock()

	for _, id := range store.byChats[chatId] {
		delete(store.docs, id)
	}
	delete(store.byChats, chatId)
	return nil
}
