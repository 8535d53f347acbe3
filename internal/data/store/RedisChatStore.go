package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/akolanti/RAGChat/internal/config"
	"github.com/akolanti/RAGChat/internal/data/redisStore"
	"github.com/akolanti/RAGChat/internal/domain/chatModel"
	"github.com/akolanti/RAGChat/pkg/logger_i"
)

type RedisChatStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisChatStore(ctx context.Context) *RedisChatStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisChatStore)
	if inner == nil {
		return nil
	}
	return &RedisChatStore{
		store:  inner,
		logger: logger_i.NewLogger("ChatStore"),
	}
}

// TestChatStore wires a store to an injected redis client, for miniredis.
func TestChatStore(store *redisStore.Store) *RedisChatStore {
	return &RedisChatStore{
		store:  store,
		logger: logger_i.NewLogger("test chat store"),
	}
}

func metaKey(chatId string) string     { return "chatmeta:" + chatId }
func messagesKey(chatId string) string { return "chatmsgs:" + chatId }

func (s *RedisChatStore) InitNewChat(ctx context.Context, chat chatModel.ChatSession) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chat.Id)
	log.Debug("Initializing new chat")

	data, err := json.Marshal(chat)
	if err != nil {
		return err
	}
	if err := s.store.Del(ctx, messagesKey(chat.Id)); err != nil {
		log.Error("Error clearing message list", "error", err)
	}
	return s.store.Set(ctx, metaKey(chat.Id), data, config.RedisChatStoreTTL)
}

func (s *RedisChatStore) ValidateChatId(ctx context.Context, chatId string) bool {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	isFound, err := s.store.Exists(ctx, metaKey(chatId))
	if s.store.IsNil(err) {
		return false
	} else if err != nil {
		log.Error("Failed to check if chatId exists", "err", err)
		return false
	}
	return isFound
}

func (s *RedisChatStore) AppendExchange(ctx context.Context, chatId string, userMsg chatModel.Message, assistantMsg chatModel.Message) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	if !s.ValidateChatId(ctx, chatId) {
		log.Error("Failed validation before saving")
		return fmt.Errorf("%w: %s", chatModel.ErrChatNotFound, chatId)
	}

	userData, err := json.Marshal(userMsg)
	if err != nil {
		return err
	}
	assistantData, err := json.Marshal(assistantMsg)
	if err != nil {
		return err
	}

	err = s.store.ListPushPair(ctx, messagesKey(chatId), userData, assistantData, config.RedisChatStoreTTL)
	if err != nil {
		log.Error("error saving exchange", "error:", err)
		return err
	}
	log.Debug("Saved exchange successfully")
	return nil
}

func (s *RedisChatStore) GetMessageHistory(ctx context.Context, chatId string, lastN int) ([]chatModel.Message, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	log.Debug("Getting message history")

	raw, err := s.store.ListGetLastN(ctx, messagesKey(chatId), lastN)
	if err != nil {
		log.Error("Error getting history", "error:", err)
		return nil, err
	}
	return unmarshalMessages(raw, s.logger)
}

func (s *RedisChatStore) GetAllMessages(ctx context.Context, chatId string) ([]chatModel.Message, error) {
	if !s.ValidateChatId(ctx, chatId) {
		return nil, fmt.Errorf("%w: %s", chatModel.ErrChatNotFound, chatId)
	}
	raw, err := s.store.ListGetAll(ctx, messagesKey(chatId))
	if err != nil {
		return nil, err
	}
	return unmarshalMessages(raw, s.logger)
}

func (s *RedisChatStore) DeleteChat(ctx context.Context, chatId string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	log.Debug("Deleting chat")
	return s.store.Del(ctx, metaKey(chatId), messagesKey(chatId))
}

func unmarshalMessages(raw []string, logger *logger_i.Logger) ([]chatModel.Message, error) {
	messages := make([]chatModel.Message, 0, len(raw))
	for _, item := range raw {
		var msg chatModel.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			logger.Error("Error unmarshalling message :", "error", err)
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
