package chat

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/akolanti/RAGChat/internal/adapter/utils"
	"github.com/akolanti/RAGChat/internal/config"
	"github.com/akolanti/RAGChat/internal/domain/chatModel"
	"github.com/akolanti/RAGChat/internal/domain/commonModels"
	"github.com/akolanti/RAGChat/internal/job"
	"github.com/akolanti/RAGChat/internal/metrics"
	"github.com/akolanti/RAGChat/internal/rag"
	"github.com/akolanti/RAGChat/pkg/logger_i"
)

// Upload is one file attached to a message, already saved to a temp path by
// the transport layer.
type Upload struct {
	Name string
	Path string
}

// SendResult is the response manifest for one completed turn.
type SendResult struct {
	ChatId             string   `json:"chat_id"`
	Answer             string   `json:"answer"`
	UserMessageId      string   `json:"user_message_id"`
	AssistantMessageId string   `json:"assistant_message_id"`
	IncludedChunkIds   []string `json:"included_chunk_ids"`
	IncludedMessageIds []string `json:"included_message_ids"`
	FailedDocumentIds  []string `json:"failed_document_ids"`
}

// Orchestrator sequences one chat turn: ingest attachments, retrieve,
// assemble, generate, persist. Turns on the same chat run strictly one at a
// time; a chat is Idle again the moment its turn finishes or fails.
type Orchestrator struct {
	chats      chatModel.ChatStore
	docs       chatModel.DocumentStore
	ragService rag.Service
	jobService *job.Service
	locks      *keyedLock
	logger     *logger_i.Logger
}

func NewOrchestrator(chats chatModel.ChatStore, docs chatModel.DocumentStore, ragService rag.Service, jobService *job.Service) *Orchestrator {
	return &Orchestrator{
		chats:      chats,
		docs:       docs,
		ragService: ragService,
		jobService: jobService,
		locks:      newKeyedLock(),
		logger:     logger_i.NewLogger("Chat Orchestrator"),
	}
}

func (o *Orchestrator) CreateChat(ctx context.Context, ownerId string) (chatModel.ChatSession, error) {
	chat := chatModel.ChatSession{
		Id:        utils.GetNewUUID(),
		OwnerId:   ownerId,
		CreatedAt: time.Now().UTC(),
	}
	if err := o.chats.InitNewChat(ctx, chat); err != nil {
		return chatModel.ChatSession{}, err
	}
	o.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY)).Info("Created chat", "chatId", chat.Id)
	return chat, nil
}

// SendMessage runs one full turn. Attachment failures do not fail the turn,
// they are reported in FailedDocumentIds and generation proceeds on whatever
// was indexed. A generation failure persists nothing, the caller keeps the
// user's text and may retry.
func (o *Orchestrator) SendMessage(ctx context.Context, chatId string, query string, uploads []Upload) (SendResult, error) {
	start := time.Now()
	status := "ok"
	defer func() { metrics.CaptureMessageMetrics(status, time.Since(start)) }()

	log := o.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chatId", chatId)

	// the assembler reserves the preamble and the query unconditionally, so
	// queries are bounded here to keep the assembled prompt inside the budget
	if queryRunes := utf8.RuneCountInString(query); queryRunes > config.MaxQueryLength {
		status = "query_too_long"
		return SendResult{}, fmt.Errorf("%w: %d runes, limit %d", chatModel.ErrQueryTooLong, queryRunes, config.MaxQueryLength)
	}

	if !o.chats.ValidateChatId(ctx, chatId) {
		status = "not_found"
		return SendResult{}, fmt.Errorf("%w: %s", chatModel.ErrChatNotFound, chatId)
	}

	// One turn per chat at a time. The bound ctx guarantees the slot is
	// given up within one timeout interval even if generation hangs.
	turnCtx, cancel := context.WithTimeout(ctx, config.GenerationTimeout)
	defer cancel()

	sem, err := o.locks.acquire(turnCtx, chatId)
	if err != nil {
		status = "lock_timeout"
		return SendResult{}, fmt.Errorf("%w: chat busy: %v", chatModel.ErrGeneration, err)
	}
	defer o.locks.release(sem)

	docIds, failedDocIds := o.ingestUploads(turnCtx, log, chatId, uploads)

	history, err := o.chats.GetMessageHistory(turnCtx, chatId, config.HistoryWindow)
	if err != nil {
		log.Error("Could not load history, assembling without it", "error", err)
		history = nil
	}

	result, err := o.ragService.ProcessQuery(turnCtx, chatId, query, history)
	if err != nil {
		status = "generation_failed"
		return SendResult{}, err
	}

	userMsg := chatModel.Message{
		Id:          utils.GetNewUUID(),
		ChatId:      chatId,
		Role:        chatModel.RoleUser,
		Content:     query,
		CreatedAt:   time.Now().UTC(),
		DocumentIds: docIds,
	}
	assistantMsg := chatModel.Message{
		Id:        utils.GetNewUUID(),
		ChatId:    chatId,
		Role:      chatModel.RoleAssistant,
		Content:   result.Answer,
		CreatedAt: time.Now().UTC(),
	}
	if err := o.chats.AppendExchange(turnCtx, chatId, userMsg, assistantMsg); err != nil {
		status = "persist_failed"
		return SendResult{}, err
	}

	return SendResult{
		ChatId:             chatId,
		Answer:             result.Answer,
		UserMessageId:      userMsg.Id,
		AssistantMessageId: assistantMsg.Id,
		IncludedChunkIds:   result.IncludedChunkIds,
		IncludedMessageIds: result.IncludedMessageIds,
		FailedDocumentIds:  failedDocIds,
	}, nil
}

// ingestUploads fans the attachments out to the worker pool and waits for
// every verdict. Returns all document ids and the failed subset.
func (o *Orchestrator) ingestUploads(ctx context.Context, log *logger_i.Logger, chatId string, uploads []Upload) (docIds []string, failedDocIds []string) {
	docIds = []string{}
	failedDocIds = []string{}
	if len(uploads) == 0 {
		return docIds, failedDocIds
	}

	traceId, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	resultCh := make(chan job.IngestResult, len(uploads))

	submitted := 0
	for _, upload := range uploads {
		doc := commonModels.Document{
			Id:     utils.GetNewUUID(),
			ChatId: chatId,
			Name:   upload.Name,
			Status: commonModels.DocStatusPending,
		}
		docIds = append(docIds, doc.Id)

		if err := o.docs.SaveDocument(ctx, doc); err != nil {
			log.Error("Could not register document", "name", upload.Name, "error", err)
			failedDocIds = append(failedDocIds, doc.Id)
			continue
		}

		o.jobService.IngestChannel <- job.IngestJob{
			Doc:      doc,
			Path:     upload.Path,
			TraceId:  traceId,
			ResultCh: resultCh,
		}
		metrics.IncrementDocsInQueue()
		submitted++

		// nudge the pool, it grows up to the cap when signals pile up
		select {
		case o.jobService.DispatcherChannel <- true:
			metrics.StartDispatcherSignalCount()
		default:
		}
	}

	for i := 0; i < submitted; i++ {
		select {
		case result := <-resultCh:
			if result.Err != nil {
				log.Error("Attachment failed ingestion", "docId", result.DocId, "error", result.Err)
				failedDocIds = append(failedDocIds, result.DocId)
			} else {
				log.Info("Attachment ingested", "docId", result.DocId, "chunks", result.Chunks)
			}
		case <-ctx.Done():
			log.Error("Ingestion wait cancelled", "error", ctx.Err())
			return docIds, failedDocIds
		}
	}
	return docIds, failedDocIds
}

func (o *Orchestrator) GetMessages(ctx context.Context, chatId string) ([]chatModel.Message, error) {
	return o.chats.GetAllMessages(ctx, chatId)
}

func (o *Orchestrator) ListDocuments(ctx context.Context, chatId string) ([]commonModels.Document, error) {
	if !o.chats.ValidateChatId(ctx, chatId) {
		return nil, fmt.Errorf("%w: %s", chatModel.ErrChatNotFound, chatId)
	}
	return o.docs.ListByChat(ctx, chatId)
}

// DeleteChat tears down messages, documents and vectors. It takes the chat's
// turn slot first so no generation is mid-flight while state disappears.
func (o *Orchestrator) DeleteChat(ctx context.Context, chatId string) error {
	log := o.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chatId", chatId)

	if !o.chats.ValidateChatId(ctx, chatId) {
		return fmt.Errorf("%w: %s", chatModel.ErrChatNotFound, chatId)
	}
	if _, err := o.locks.acquire(ctx, chatId); err != nil {
		return err
	}
	defer o.locks.forget(chatId)

	if err := o.ragService.DeleteChatIndex(ctx, chatId); err != nil {
		log.Error("Could not delete chat vectors", "error", err)
	}
	if err := o.docs.DeleteByChat(ctx, chatId); err != nil {
		log.Error("Could not delete chat documents", "error", err)
	}
	return o.chats.DeleteChat(ctx, chatId)
}
