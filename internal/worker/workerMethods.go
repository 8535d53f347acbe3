package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/RAGChat/internal/config"
	"github.com/akolanti/RAGChat/internal/domain/commonModels"
	"github.com/akolanti/RAGChat/internal/job"
	"github.com/akolanti/RAGChat/internal/metrics"
)

func executeJob(ingestJob job.IngestJob) {
	start := time.Now()
	status := "ok"
	defer func() {
		metrics.CaptureExecutionMetrics("ingest_job_"+status, time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, ingestJob.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, 60*time.Second)
	defer cancel()
	logger.Debug("Processing ingestion:", "doc Id:", ingestJob.Doc.Id)

	chunks, err := _ragService.IngestDocument(ctx, ingestJob.Doc, ingestJob.Path)
	if err != nil {
		status = "failed"
		logger.Error("Ingestion failed", "doc Id", ingestJob.Doc.Id, "error", err)
		saveDocState(ctx, ingestJob.Doc, commonModels.DocStatusFailed, err)
	} else {
		saveDocState(ctx, ingestJob.Doc, commonModels.DocStatusIngested, nil)
	}

	ingestJob.ResultCh <- job.IngestResult{
		DocId:  ingestJob.Doc.Id,
		Chunks: chunks,
		Err:    err,
	}
}

func removeWorker(reason string) {

	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()

}

func saveDocState(ctx context.Context, doc commonModels.Document, status commonModels.DocStatus, failErr error) {
	doc.Status = status
	if failErr != nil {
		doc.FailReason = failErr.Error()
	}
	if status == commonModels.DocStatusIngested {
		doc.IngestedAt = time.Now().UTC()
	}
	if err := _jobService.DocStore.SaveDocument(ctx, doc); err != nil {
		logger.Error("Failed to update document status", "err", err)
	}
}
