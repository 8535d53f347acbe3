package api

import "time"

type ExternalStatus string

const (
	StatusError ExternalStatus = "Error"
)

type ChatResponse struct {
	ChatId    string    `json:"chat_id" example:"chat_550"`
	OwnerId   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type SendMessageResponse struct {
	ChatId             string   `json:"chat_id"`
	Answer             string   `json:"answer"`
	UserMessageId      string   `json:"user_message_id"`
	AssistantMessageId string   `json:"assistant_message_id"`
	IncludedChunkIds   []string `json:"included_chunk_ids"`
	IncludedMessageIds []string `json:"included_message_ids"`
	FailedDocumentIds  []string `json:"failed_document_ids"`
}

type MessageResponse struct {
	Id          string    `json:"id"`
	Role        string    `json:"role" example:"user"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	DocumentIds []string  `json:"document_ids,omitempty"`
}

type MessageListResponse struct {
	ChatId   string            `json:"chat_id"`
	Messages []MessageResponse `json:"messages"`
}

type DocumentResponse struct {
	Id         string    `json:"id"`
	Name       string    `json:"name"`
	Status     string    `json:"status" example:"ingested"`
	FailReason string    `json:"fail_reason,omitempty"`
	IngestedAt time.Time `json:"ingested_at,omitempty"`
}

type DocumentListResponse struct {
	ChatId    string             `json:"chat_id"`
	Documents []DocumentResponse `json:"documents"`
}

type OutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Chat not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type ErrorResponse struct {
	Id     string         `json:"id,omitempty"`
	Status string         `json:"status"`
	Error  *OutgoingError `json:"error,omitempty"`
}

// requests---------------------

type CreateChatRequest struct {
	// reserved for future fields, the owner comes from the resolved header
}
