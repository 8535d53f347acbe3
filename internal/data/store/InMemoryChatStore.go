package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/akolanti/RAGChat/internal/domain/chatModel"
	"github.com/akolanti/RAGChat/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMemory Store")

// InMemoryChatStore is the fallback when redis is offline. Same contract,
// nothing survives a restart.
type InMemoryChatStore struct {
	chatLock *sync.RWMutex
	sessions map[string]chatModel.ChatSession
	messages map[string][]chatModel.Message
}

func InitChatStore() *InMemoryChatStore {
	return &InMemoryChatStore{
		chatLock: new(sync.RWMutex),
		sessions: make(map[string]chatModel.ChatSession),
		messages: make(map[string][]chatModel.Message),
	}
}

func (store *InMemoryChatStore) InitNewChat(ctx context.Context, chat chatModel.ChatSession) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.sessions[chat.Id] = chat
	store.messages[chat.Id] = make([]chatModel.Message, 0)
	inMemLogger.Info("Initialized chat", "chatId", chat.Id)
	return nil
}

func (store *InMemoryChatStore) ValidateChatId(ctx context.Context, chatId string) bool {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	_, ok := store.sessions[chatId]
	return ok
}

func (store *InMemoryChatStore) AppendExchange(ctx context.Context, chatId string, userMsg chatModel.Message, assistantMsg chatModel.Message) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	if _, ok := store.sessions[chatId]; !ok {
		return fmt.Errorf("%w: %s", chatModel.ErrChatNotFound, chatId)
	}
	store.messages[chatId] = append(store.messages[chatId], userMsg, assistantMsg)
	return nil
}

func (store *InMemoryChatStore) GetMessageHistory(ctx context.Context, chatId string, lastN int) ([]chatModel.Message, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()

	all := store.messages[chatId]
	if lastN <= 0 || lastN >= len(all) {
		lastN = len(all)
	}
	out := make([]chatModel.Message, lastN)
	copy(out, all[len(all)-lastN:])
	return out, nil
}

func (store *InMemoryChatStore) GetAllMessages(ctx context.Context, chatId string) ([]chatModel.Message, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()

	if _, ok := store.sessions[chatId]; !ok {
		return nil, fmt.Errorf("%w: %s", chatModel.ErrChatNotFound, chatId)
	}
	out := make([]chatModel.Message, len(store.messages[chatId]))
	copy(out, store.messages[chatId])
	return out, nil
}

func (store *InMemoryChatStore) DeleteChat(ctx context.Context, chatId string) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	delete(store.sessions, chatId)
	delete(store.messages, chatId)
	return nil
}
