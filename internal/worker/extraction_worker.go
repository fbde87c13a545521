package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/visaflow/visa-assistant/internal/docai"
	"github.com/visaflow/visa-assistant/internal/extraction"
	"github.com/visaflow/visa-assistant/internal/models"
)

// DocumentRepositoryInterface defines the document store contract.
type DocumentRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*models.ExtractedDocument, error)
	GetByApplicationID(ctx context.Context, applicationID string) ([]*models.ExtractedDocument, error)
	Update(ctx context.Context, doc *models.ExtractedDocument) error
}

// ApplicationRepositoryInterface defines the application store contract.
type ApplicationRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*models.CanonicalApplicationRecord, error)
	Update(ctx context.Context, record *models.CanonicalApplicationRecord) error
}

// ExtractorInterface is the document AI collaborator.
type ExtractorInterface interface {
	ExtractFromFile(ctx context.Context, path, docType string) (*docai.ExtractionResult, error)
}

// ExtractionWorkerStatus reports current worker state.
type ExtractionWorkerStatus struct {
	IsRunning      bool
	ProcessedCount int
	FailedCount    int
	LastProcessed  time.Time
	LastError      error
}

// ExtractionWorker drains the task queue: extract fields from the uploaded
// file, persist the document result, and re-merge the application record.
// Failures mark the document failed and are logged; they never propagate
// back to the upload that enqueued the task.
type ExtractionWorker struct {
	queue          *Queue
	docRepo        DocumentRepositoryInterface
	appRepo        ApplicationRepositoryInterface
	extractor      ExtractorInterface
	merger         *extraction.Merger
	extractTimeout time.Duration
	logger         *zap.Logger

	mu             sync.RWMutex
	ctx            context.Context
	cancel         context.CancelFunc
	done           chan struct{}
	isRunning      bool
	processedCount int
	failedCount    int
	lastProcessed  time.Time
	lastError      error
}

// NewExtractionWorker creates a new ExtractionWorker.
func NewExtractionWorker(
	queue *Queue,
	docRepo DocumentRepositoryInterface,
	appRepo ApplicationRepositoryInterface,
	extractor ExtractorInterface,
	merger *extraction.Merger,
	logger *zap.Logger,
) *ExtractionWorker {
	return &ExtractionWorker{
		queue:          queue,
		docRepo:        docRepo,
		appRepo:        appRepo,
		extractor:      extractor,
		merger:         merger,
		extractTimeout: 120 * time.Second,
		logger:         logger,
	}
}

// SetExtractTimeout overrides the per-document extraction deadline.
func (w *ExtractionWorker) SetExtractTimeout(d time.Duration) {
	if d > 0 {
		w.extractTimeout = d
	}
}

// Name implements Worker.
func (w *ExtractionWorker) Name() string {
	return "extraction-worker"
}

// Start begins consuming the queue.
func (w *ExtractionWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return fmt.Errorf("extraction worker already running")
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.isRunning = true
	w.mu.Unlock()

	w.logger.Info("extraction worker started",
		zap.Duration("extract_timeout", w.extractTimeout))

	go w.consumeLoop()
	return nil
}

// Stop terminates the worker and waits for the in-flight task to finish.
func (w *ExtractionWorker) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = false
	done := w.done
	w.mu.Unlock()

	w.cancel()
	<-done

	w.logger.Info("extraction worker stopped",
		zap.Int("processed_count", w.processedCount),
		zap.Int("failed_count", w.failedCount))
}

// GetStatus returns a snapshot of the worker's counters.
func (w *ExtractionWorker) GetStatus() ExtractionWorkerStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return ExtractionWorkerStatus{
		IsRunning:      w.isRunning,
		ProcessedCount: w.processedCount,
		FailedCount:    w.failedCount,
		LastProcessed:  w.lastProcessed,
		LastError:      w.lastError,
	}
}

func (w *ExtractionWorker) consumeLoop() {
	defer close(w.done)

	for {
		select {
		case <-w.ctx.Done():
			return
		case task, ok := <-w.queue.Tasks():
			if !ok {
				return
			}
			w.handle(task)
		}
	}
}

func (w *ExtractionWorker) handle(task ExtractionTask) {
	err := w.ProcessTask(w.ctx, task)

	w.mu.Lock()
	w.lastProcessed = time.Now()
	if err != nil {
		w.failedCount++
		w.lastError = err
	} else {
		w.processedCount++
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("extraction task failed",
			zap.String("document_id", task.DocumentID),
			zap.String("application_id", task.ApplicationID),
			zap.Error(err))
	}
}

// ProcessTask runs one task synchronously. Exposed so tests and re-process
// endpoints can drive the pipeline without the queue.
func (w *ExtractionWorker) ProcessTask(ctx context.Context, task ExtractionTask) error {
	doc, err := w.docRepo.GetByID(ctx, task.DocumentID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("document %s not found", task.DocumentID)
	}

	doc.Status = models.DocStatusProcessing
	doc.ErrorMessage = ""
	if err := w.docRepo.Update(ctx, doc); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	extractCtx, cancel := context.WithTimeout(ctx, w.extractTimeout)
	defer cancel()

	result, extractErr := w.extractor.ExtractFromFile(extractCtx, doc.StoragePath, doc.Type)

	now := time.Now()
	doc.ProcessedAt = &now
	if extractErr != nil {
		doc.Status = models.DocStatusError
		doc.ErrorMessage = extractErr.Error()
		if result != nil {
			doc.RawText = result.RawText
		}
		if err := w.docRepo.Update(ctx, doc); err != nil {
			return fmt.Errorf("mark failed: %w", err)
		}
		return fmt.Errorf("extract document %s: %w", doc.ID, extractErr)
	}

	doc.Status = models.DocStatusCompleted
	doc.ExtractedFields = result.Fields
	doc.RawText = result.RawText
	if err := w.docRepo.Update(ctx, doc); err != nil {
		return fmt.Errorf("persist extraction: %w", err)
	}

	w.logger.Info("document extracted",
		zap.String("document_id", doc.ID),
		zap.String("doc_type", doc.Type),
		zap.Int("fields", len(result.Fields)))

	return w.remerge(ctx, task.ApplicationID)
}

// remerge recomputes the canonical record from every completed document of
// the application and persists the result.
func (w *ExtractionWorker) remerge(ctx context.Context, applicationID string) error {
	record, err := w.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("load application: %w", err)
	}
	if record == nil {
		return fmt.Errorf("application %s not found", applicationID)
	}

	docs, err := w.docRepo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	merged := w.merger.Merge(docs, record)
	for _, warning := range merged.Warnings {
		w.logger.Warn("merge warning",
			zap.String("application_id", applicationID),
			zap.String("warning", warning))
	}

	if err := w.appRepo.Update(ctx, merged.Record); err != nil {
		return fmt.Errorf("persist merged record: %w", err)
	}
	return nil
}
