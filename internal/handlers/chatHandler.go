package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/akolanti/RAGChat/internal/adapter"
	"github.com/akolanti/RAGChat/internal/adapter/utils"
	"github.com/akolanti/RAGChat/internal/chat"
	"github.com/akolanti/RAGChat/internal/config"
	"github.com/akolanti/RAGChat/pkg/logger_i"
)

var (
	handlerInstance *ChatHandlerState //private singleton
	once            sync.Once
	logRH           *logger_i.Logger
)

type ChatHandlerState struct {
	orchestrator *chat.Orchestrator
}

func InitChatHandler(orchestrator *chat.Orchestrator) {
	once.Do(func() {
		handlerInstance = &ChatHandlerState{orchestrator: orchestrator}
		logRH = logger_i.NewLogger("RequestHandler")
		logRH.Info("Starting chat handler")
	})
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// CreateChatHandler godoc
// @Summary      Create a chat session
// @Description  Opens a new chat owned by the resolved user and returns its id.
// @Tags         Chats
// @Produce      json
// @Success      201  {object}  api.ChatResponse  "Chat created"
// @Failure      500  {object}  api.ErrorResponse "Storage error"
// @Router       /chats [post]
func CreateChatHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", "remote", r.RemoteAddr)
		return
	}

	ownerId, _ := r.Context().Value(config.USER_ID_KEY).(string)
	session, err := handlerInstance.orchestrator.CreateChat(r.Context(), ownerId)
	if err != nil {
		writeDomainError(w, "", err)
		return
	}
	writeJsonResponse(w, http.StatusCreated, adapter.ToChatResponse(session))
}

// SendMessageHandler godoc
// @Summary      Send a message with optional documents
// @Description  Accepts a prompt plus attachments via multipart/form-data, runs the retrieval pipeline and returns the assistant's answer with a manifest.
// @Tags         Messaging
// @Accept       multipart/form-data
// @Produce      json
// @Param        chatID  path      string  true   "Chat ID"
// @Param        prompt  formData  string  true   "The user's message"
// @Param        files   formData  file    false  "PDF, DOCX, TXT or RTF attachments"
// @Success      200  {object}  api.SendMessageResponse "Completed turn"
// @Failure      400  {object}  api.ErrorResponse "Missing prompt or oversized upload"
// @Failure      404  {object}  api.ErrorResponse "Chat not found"
// @Failure      502  {object}  api.ErrorResponse "Generation failed"
// @Failure      504  {object}  api.ErrorResponse "Generation timed out"
// @Router       /chats/{chatID}/messages [post]
func SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", "remote", r.RemoteAddr)
		return
	}

	chatId := utils.GetChiURLParam(r, "chatID")

	const maxUploadSize = 32 << 20 //32mb
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, chatId, "File too large or bad request")
		return
	}

	prompt := r.FormValue("prompt")
	if prompt == "" {
		WriteErrorResponse(w, http.StatusBadRequest, chatId, "prompt is required")
		return
	}

	uploads, errString := saveUploads(r)
	if errString != "" {
		WriteErrorResponse(w, http.StatusInternalServerError, chatId, errString)
		return
	}

	result, err := handlerInstance.orchestrator.SendMessage(r.Context(), chatId, prompt, uploads)
	if err != nil {
		writeDomainError(w, chatId, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSendMessageResponse(result))
}

// saveUploads copies every attached file to the temp directory so ingestion
// can run after this request body is gone.
func saveUploads(r *http.Request) ([]chat.Upload, string) {
	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		return nil, ""
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logRH.Error("Couldn't get target directory :", "err", errString)
		return nil, errString
	}

	var uploads []chat.Upload
	for _, fileHeader := range r.MultipartForm.File["files"] {
		fileReader, err := fileHeader.Open()
		if err != nil {
			return nil, "Could not retrieve file"
		}

		filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileHeader.Filename)
		tempFilePath := filepath.Join(targetDir, filename)
		destinationFileWriter, err := os.Create(tempFilePath)
		if err != nil {
			fileReader.Close()
			return nil, "Storage error"
		}

		if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
			destinationFileWriter.Close()
			fileReader.Close()
			return nil, "Write error"
		}
		destinationFileWriter.Close()
		fileReader.Close()

		uploads = append(uploads, chat.Upload{Name: fileHeader.Filename, Path: tempFilePath})
	}
	return uploads, ""
}

// GetMessagesHandler godoc
// @Summary      Get chat transcript
// @Description  Returns every persisted message of the chat in order.
// @Tags         Chats
// @Produce      json
// @Param        chatID  path      string  true  "Chat ID"
// @Success      200  {object}  api.MessageListResponse "The transcript"
// @Failure      404  {object}  api.ErrorResponse "Chat not found"
// @Router       /chats/{chatID}/messages [get]
func GetMessagesHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	chatId := utils.GetChiURLParam(r, "chatID")
	messages, err := handlerInstance.orchestrator.GetMessages(r.Context(), chatId)
	if err != nil {
		writeDomainError(w, chatId, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToMessageListResponse(chatId, messages))
}

// GetDocumentsHandler godoc
// @Summary      List chat documents
// @Description  Returns every document uploaded into the chat with its ingestion status.
// @Tags         Chats
// @Produce      json
// @Param        chatID  path      string  true  "Chat ID"
// @Success      200  {object}  api.DocumentListResponse "The documents"
// @Failure      404  {object}  api.ErrorResponse "Chat not found"
// @Router       /chats/{chatID}/documents [get]
func GetDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	chatId := utils.GetChiURLParam(r, "chatID")
	docs, err := handlerInstance.orchestrator.ListDocuments(r.Context(), chatId)
	if err != nil {
		writeDomainError(w, chatId, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentListResponse(chatId, docs))
}

// DeleteChatHandler godoc
// @Summary      Delete a chat
// @Description  Removes the chat's messages, documents and vectors.
// @Tags         Chats
// @Produce      json
// @Param        chatID  path      string  true  "Chat ID"
// @Success      204  "Deleted"
// @Failure      404  {object}  api.ErrorResponse "Chat not found"
// @Router       /chats/{chatID} [delete]
func DeleteChatHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	chatId := utils.GetChiURLParam(r, "chatID")
	if err := handlerInstance.orchestrator.DeleteChat(r.Context(), chatId); err != nil {
		writeDomainError(w, chatId, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
