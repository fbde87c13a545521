package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/visaflow/visa-assistant/internal/docai"
	"github.com/visaflow/visa-assistant/internal/extraction"
	"github.com/visaflow/visa-assistant/internal/models"
)

type mockDocRepo struct {
	docs    map[string]*models.ExtractedDocument
	updates []string
}

func newMockDocRepo(docs ...*models.ExtractedDocument) *mockDocRepo {
	repo := &mockDocRepo{docs: make(map[string]*models.ExtractedDocument)}
	for _, d := range docs {
		repo.docs[d.ID] = d
	}
	return repo
}

func (m *mockDocRepo) GetByID(_ context.Context, id string) (*models.ExtractedDocument, error) {
	return m.docs[id], nil
}

func (m *mockDocRepo) GetByApplicationID(_ context.Context, applicationID string) ([]*models.ExtractedDocument, error) {
	var out []*models.ExtractedDocument
	for _, d := range m.docs {
		if d.ApplicationID == applicationID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDocRepo) Update(_ context.Context, doc *models.ExtractedDocument) error {
	m.docs[doc.ID] = doc
	m.updates = append(m.updates, doc.Status)
	return nil
}

type mockAppRepo struct {
	records map[string]*models.CanonicalApplicationRecord
	updated *models.CanonicalApplicationRecord
}

func (m *mockAppRepo) GetByID(_ context.Context, id string) (*models.CanonicalApplicationRecord, error) {
	return m.records[id], nil
}

func (m *mockAppRepo) Update(_ context.Context, record *models.CanonicalApplicationRecord) error {
	m.records[record.ID] = record
	m.updated = record
	return nil
}

type mockExtractor struct {
	result *docai.ExtractionResult
	err    error
}

func (m *mockExtractor) ExtractFromFile(_ context.Context, _, _ string) (*docai.ExtractionResult, error) {
	return m.result, m.err
}

func newWorker(docRepo *mockDocRepo, appRepo *mockAppRepo, ex ExtractorInterface) *ExtractionWorker {
	logger := zap.NewNop()
	return NewExtractionWorker(NewQueue(4), docRepo, appRepo, ex, extraction.NewMerger(logger), logger)
}

func TestExtractionWorker_ProcessTask(t *testing.T) {
	doc := &models.ExtractedDocument{
		ID:            "doc-1",
		ApplicationID: "app-1",
		Type:          models.DocTypePassport,
		Status:        models.DocStatusPending,
		StoragePath:   "/uploads/passport.pdf",
	}
	docRepo := newMockDocRepo(doc)
	appRepo := &mockAppRepo{records: map[string]*models.CanonicalApplicationRecord{
		"app-1": {ID: "app-1", UserID: "user-1"},
	}}
	ex := &mockExtractor{result: &docai.ExtractionResult{
		Fields:  map[string]interface{}{"full_name": "Ana Souza", "nationality": "Brazil"},
		RawText: "PASSPORT",
	}}

	w := newWorker(docRepo, appRepo, ex)
	err := w.ProcessTask(context.Background(), ExtractionTask{DocumentID: "doc-1", ApplicationID: "app-1"})
	require.NoError(t, err)

	stored := docRepo.docs["doc-1"]
	assert.Equal(t, models.DocStatusCompleted, stored.Status)
	assert.Equal(t, "Ana Souza", stored.ExtractedFields["full_name"])
	assert.NotNil(t, stored.ProcessedAt)

	// The record was re-merged and persisted with the passport identity.
	require.NotNil(t, appRepo.updated)
	assert.Equal(t, "Ana Souza", appRepo.updated.ApplicantName)
	assert.Equal(t, "Brazil", appRepo.updated.HomeCountry)

	// Status went processing then completed.
	assert.Equal(t, []string{models.DocStatusProcessing, models.DocStatusCompleted}, docRepo.updates)
}

func TestExtractionWorker_ExtractionFailureMarksDocumentFailed(t *testing.T) {
	doc := &models.ExtractedDocument{
		ID:            "doc-1",
		ApplicationID: "app-1",
		Type:          models.DocTypeBankStatement,
		Status:        models.DocStatusPending,
	}
	docRepo := newMockDocRepo(doc)
	appRepo := &mockAppRepo{records: map[string]*models.CanonicalApplicationRecord{
		"app-1": {ID: "app-1"},
	}}
	ex := &mockExtractor{
		result: &docai.ExtractionResult{RawText: "partial text"},
		err:    docai.NewUpstreamError("document-extraction", fmt.Errorf("rate limited")),
	}

	w := newWorker(docRepo, appRepo, ex)
	err := w.ProcessTask(context.Background(), ExtractionTask{DocumentID: "doc-1", ApplicationID: "app-1"})
	require.Error(t, err)

	stored := docRepo.docs["doc-1"]
	assert.Equal(t, models.DocStatusError, stored.Status)
	assert.Contains(t, stored.ErrorMessage, "rate limited")
	assert.Equal(t, "partial text", stored.RawText, "degraded raw text is still persisted")

	// The record was never touched by the failed extraction.
	assert.Nil(t, appRepo.updated)
}

func TestExtractionWorker_UnknownDocument(t *testing.T) {
	w := newWorker(newMockDocRepo(), &mockAppRepo{}, &mockExtractor{})

	err := w.ProcessTask(context.Background(), ExtractionTask{DocumentID: "missing"})
	assert.Error(t, err)
}

func TestQueue(t *testing.T) {
	t.Run("enqueue and consume", func(t *testing.T) {
		q := NewQueue(2)
		require.NoError(t, q.Enqueue(ExtractionTask{DocumentID: "a"}))
		require.NoError(t, q.Enqueue(ExtractionTask{DocumentID: "b"}))
		assert.Equal(t, 2, q.Pending())

		task := <-q.Tasks()
		assert.Equal(t, "a", task.DocumentID)
		assert.False(t, task.EnqueuedAt.IsZero())
	})

	t.Run("full queue rejects instead of blocking", func(t *testing.T) {
		q := NewQueue(1)
		require.NoError(t, q.Enqueue(ExtractionTask{DocumentID: "a"}))

		err := q.Enqueue(ExtractionTask{DocumentID: "b"})
		assert.ErrorContains(t, err, "queue full")
	})

	t.Run("closed queue rejects", func(t *testing.T) {
		q := NewQueue(1)
		q.Close()
		assert.ErrorContains(t, q.Enqueue(ExtractionTask{}), "queue closed")
	})
}

func TestExtractionWorker_StartStop(t *testing.T) {
	doc := &models.ExtractedDocument{
		ID:            "doc-1",
		ApplicationID: "app-1",
		Type:          models.DocTypePassport,
		Status:        models.DocStatusPending,
	}
	docRepo := newMockDocRepo(doc)
	appRepo := &mockAppRepo{records: map[string]*models.CanonicalApplicationRecord{
		"app-1": {ID: "app-1"},
	}}
	ex := &mockExtractor{result: &docai.ExtractionResult{
		Fields:  map[string]interface{}{"full_name": "Ana Souza"},
		RawText: "PASSPORT",
	}}

	w := newWorker(docRepo, appRepo, ex)
	require.NoError(t, w.queue.Enqueue(ExtractionTask{DocumentID: "doc-1", ApplicationID: "app-1"}))
	w.queue.Close()

	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()), "double start is rejected")

	require.Eventually(t, func() bool {
		return w.GetStatus().ProcessedCount == 1
	}, time.Second, 10*time.Millisecond)

	w.Stop()

	status := w.GetStatus()
	assert.False(t, status.IsRunning)
	assert.Equal(t, 1, status.ProcessedCount)
}
