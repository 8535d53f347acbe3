package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/RAGChat/internal/config"
	"github.com/akolanti/RAGChat/internal/domain/chatModel"
	"github.com/akolanti/RAGChat/internal/domain/commonModels"
	"github.com/akolanti/RAGChat/internal/job"
	"github.com/akolanti/RAGChat/internal/rag"
	"github.com/akolanti/RAGChat/pkg/logger_i"
)

// MockRagService to track if jobs are executed
type MockRagService struct {
	ProcessedCount int32
}

func (m *MockRagService) ProcessQuery(ctx context.Context, chatId string, query string, history []chatModel.Message) (rag.QueryResult, error) {
	return rag.QueryResult{}, nil
}

func (m *MockRagService) IngestDocument(ctx context.Context, doc commonModels.Document, path string) (int, error) {
	atomic.AddInt32(&m.ProcessedCount, 1)
	return 3, nil
}

func (m *MockRagService) DeleteChatIndex(ctx context.Context, chatId string) error {
	return nil
}

// MockDocStore tracks status writes
type MockDocStore struct {
	OnSaveDocument func(ctx context.Context, doc commonModels.Document) error
}

func (m *MockDocStore) SaveDocument(ctx context.Context, doc commonModels.Document) error {
	if m.OnSaveDocument != nil {
		return m.OnSaveDocument(ctx, doc)
	}
	return nil
}

func (m *MockDocStore) GetDocument(ctx context.Context, docId string) (commonModels.Document, bool) {
	return commonModels.Document{}, false
}

func (m *MockDocStore) ListByChat(ctx context.Context, chatId string) ([]commonModels.Document, error) {
	return nil, nil
}

func (m *MockDocStore) DeleteByChat(ctx context.Context, chatId string) error {
	return nil
}

func TestWorkerPool_Flow(t *testing.T) {
	// 1. Setup
	var savedStatus atomic.Value
	jobSvc := &job.Service{
		IngestChannel:     make(chan job.IngestJob, 10),
		DispatcherChannel: make(chan bool, 10),
		DocStore: &MockDocStore{
			OnSaveDocument: func(ctx context.Context, doc commonModels.Document) error {
				savedStatus.Store(doc.Status)
				return nil
			},
		},
	}
	mockRag := &MockRagService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(jobSvc, mockRag)
	InitWorkerPool(stopChan, wg)

	// Reset global state for test
	atomic.StoreInt64(&currentWorkerCount, 0)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		// Signal dispatcher to create a worker
		jobSvc.DispatcherChannel <- true

		// Give it a millisecond to spawn
		time.Sleep(50 * time.Millisecond)

		count := atomic.LoadInt64(&currentWorkerCount)
		if count < 1 {
			t.Errorf("Expected at least 1 worker, got %d", count)
		}
	})

	t.Run("Worker processes an ingestion and reports back", func(t *testing.T) {
		resultCh := make(chan job.IngestResult, 1)
		jobSvc.IngestChannel <- job.IngestJob{
			Doc:      commonModels.Document{Id: "doc-1", ChatId: "chat-1", Name: "d.txt"},
			Path:     "/tmp/d.txt",
			TraceId:  "test-trace",
			ResultCh: resultCh,
		}

		select {
		case result := <-resultCh:
			if result.Err != nil {
				t.Errorf("unexpected result error: %v", result.Err)
			}
			if result.DocId != "doc-1" || result.Chunks != 3 {
				t.Errorf("wrong result: %+v", result)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("worker never delivered the result")
		}

		processed := atomic.LoadInt32(&mockRag.ProcessedCount)
		if processed != 1 {
			t.Errorf("Expected 1 document processed, got %d", processed)
		}
		if got := savedStatus.Load(); got != commonModels.DocStatusIngested {
			t.Errorf("document status got %v, want ingested", got)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		// Send stop signal
		close(stopChan)

		// Wait for workers to exit
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			// Success
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestWorker_IdleTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("idle retire waits a full IdleWorkerTimeout")
	}

	// Temporarily override config/globals for test
	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, 0)
	logger = logger_i.NewLogger("TestWorkerPool")
	jobSvc := &job.Service{
		IngestChannel: make(chan job.IngestJob),
	}
	InitServices(jobSvc, &MockRagService{})

	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stopChan

	// Spawn 1 worker manually
	createWorker()
	time.Sleep(config.IdleWorkerTimeout)

	time.Sleep(100 * time.Millisecond)
	count := atomic.LoadInt64(&currentWorkerCount)
	if count != 0 {
		t.Errorf("Assertion Failed: Worker should have timed out and retired, but count is %d", count)
	}
}
