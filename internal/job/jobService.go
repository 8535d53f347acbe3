package job

import (
	"github.com/akolanti/RAGChat/internal/domain/chatModel"
	"github.com/akolanti/RAGChat/internal/domain/commonModels"
)

// IngestJob is one uploaded file queued for the worker pool. ResultCh is
// buffered by the submitter so a worker never blocks on delivery.
type IngestJob struct {
	Doc      commonModels.Document
	Path     string
	TraceId  string
	ResultCh chan IngestResult
}

type IngestResult struct {
	DocId  string
	Chunks int
	Err    error
}

type Service struct {
	IngestChannel     chan IngestJob
	DispatcherChannel chan bool
	DocStore          chatModel.DocumentStore
}

type ServiceConfig struct {
	IngestChannel     chan IngestJob
	DispatcherChannel chan bool
	DocStore          chatModel.DocumentStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		IngestChannel:     cfg.IngestChannel,
		DispatcherChannel: cfg.DispatcherChannel,
		DocStore:          cfg.DocStore,
	}
}
