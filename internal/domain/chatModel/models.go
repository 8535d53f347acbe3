package chatModel

import (
	"context"
	"time"

	"github.com/akolanti/RAGChat/internal/domain/commonModels"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is immutable once persisted.
type Message struct {
	Id          string    `json:"id"`
	ChatId      string    `json:"chat_id"`
	Role        Role      `json:"role"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	DocumentIds []string  `json:"document_ids,omitempty"`
}

type ChatSession struct {
	Id        string    `json:"id"`
	OwnerId   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatStore interface {
	InitNewChat(ctx context.Context, chat ChatSession) error
	ValidateChatId(ctx context.Context, chatId string) bool
	// AppendExchange persists the user/assistant pair atomically - both or neither.
	AppendExchange(ctx context.Context, chatId string, userMsg Message, assistantMsg Message) error
	GetMessageHistory(ctx context.Context, chatId string, lastN int) ([]Message, error)
	GetAllMessages(ctx context.Context, chatId string) ([]Message, error)
	DeleteChat(ctx context.Context, chatId string) error
}

type DocumentStore interface {
	SaveDocument(ctx context.Context, doc commonModels.Document) error
	GetDocument(ctx context.Context, docId string) (commonModels.Document, bool)
	ListByChat(ctx context.Context, chatId string) ([]commonModels.Document, error)
	DeleteByChat(ctx context.Context, chatId string) error
}
