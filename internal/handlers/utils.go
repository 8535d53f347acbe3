package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/akolanti/RAGChat/internal/adapter"
	"github.com/akolanti/RAGChat/internal/config"
	"github.com/akolanti/RAGChat/internal/domain/chatModel"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response: %v", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}

// writeDomainError maps pipeline failures onto HTTP codes. Generation faults
// are the upstream's fault, timeouts get their own code so clients can retry.
func writeDomainError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, chatModel.ErrChatNotFound):
		WriteErrorResponse(w, http.StatusNotFound, id, "Chat not found")
	case errors.Is(err, chatModel.ErrQueryTooLong):
		WriteErrorResponse(w, http.StatusBadRequest, id, "Prompt too long")
	case errors.Is(err, context.DeadlineExceeded):
		WriteErrorResponse(w, http.StatusGatewayTimeout, id, "Generation timed out")
	case errors.Is(err, chatModel.ErrGeneration):
		WriteErrorResponse(w, http.StatusBadGateway, id, "Generation failed")
	default:
		WriteErrorResponse(w, http.StatusInternalServerError, id, "Internal Server Error")
	}
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.Warn("context error", "error", ctx.Err())
		return false
	}

	select {
	case <-ctx.Done():
		logRH.Warn("context cancelled")
		return false
	default:
		return true

	}
}

func getTraceId(ctx context.Context) string {
	traceId, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return traceId
}

func getTargetDirectory() (string, string) {
	root, err := os.Getwd()
	if err != nil {
		return "", "Storage Error"
	}

	targetDir := filepath.Join(root, "temporary_data")
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", "Storage Error"
	}
	return targetDir, ""
}
