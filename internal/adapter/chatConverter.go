package adapter

import (
	"github.com/akolanti/RAGChat/internal/api"
	"github.com/akolanti/RAGChat/internal/chat"
	"github.com/akolanti/RAGChat/internal/domain/chatModel"
	"github.com/akolanti/RAGChat/internal/domain/commonModels"
)

func ToChatResponse(session chatModel.ChatSession) api.ChatResponse {
	return api.ChatResponse{
		ChatId:    session.Id,
		OwnerId:   session.OwnerId,
		CreatedAt: session.CreatedAt,
	}
}

func ToSendMessageResponse(result chat.SendResult) api.SendMessageResponse {
	return api.SendMessageResponse{
		ChatId:             result.ChatId,
		Answer:             result.Answer,
		UserMessageId:      result.UserMessageId,
		AssistantMessageId: result.AssistantMessageId,
		IncludedChunkIds:   result.IncludedChunkIds,
		IncludedMessageIds: result.IncludedMessageIds,
		FailedDocumentIds:  result.FailedDocumentIds,
	}
}

func ToMessageListResponse(chatId string, messages []chatModel.Message) api.MessageListResponse {
	out := make([]api.MessageResponse, len(messages))
	for i, msg := range messages {
		out[i] = api.MessageResponse{
			Id:          msg.Id,
			Role:        string(msg.Role),
			Content:     msg.Content,
			CreatedAt:   msg.CreatedAt,
			DocumentIds: msg.DocumentIds,
		}
	}
	return api.MessageListResponse{ChatId: chatId, Messages: out}
}

func ToDocumentListResponse(chatId string, docs []commonModels.Document) api.DocumentListResponse {
	out := make([]api.DocumentResponse, len(docs))
	for i, doc := range docs {
		out[i] = api.DocumentResponse{
			Id:         doc.Id,
			Name:       doc.Name,
			Status:     string(doc.Status),
			FailReason: doc.FailReason,
			IngestedAt: doc.IngestedAt,
		}
	}
	return api.DocumentListResponse{ChatId: chatId, Documents: out}
}

func BadRequest(id string, message string, code int) api.ErrorResponse {
	return api.ErrorResponse{
		Id:     id,
		Status: string(api.StatusError),
		Error: &api.OutgoingError{
			Code:    code,
			Message: message,
			Retry:   false,
		},
	}
}
