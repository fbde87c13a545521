package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/visaflow/visa-assistant/internal/models"
	"github.com/visaflow/visa-assistant/pkg/database"
)

// DocumentRepository stores uploaded documents and their extraction results.
type DocumentRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(db *database.DB, logger *zap.Logger) *DocumentRepository {
	return &DocumentRepository{db: db, logger: logger}
}

// Create inserts a newly uploaded document.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.ExtractedDocument) error {
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now()
	}
	if doc.Status == "" {
		doc.Status = models.DocStatusPending
	}

	fields, err := marshalFields(doc.ExtractedFields)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO documents
			(id, application_id, type, status, file_name, storage_path, file_url,
			 extracted_fields, raw_text, error_message, uploaded_at, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.ApplicationID, doc.Type, doc.Status, doc.FileName,
		doc.StoragePath, doc.FileURL, fields, doc.RawText, doc.ErrorMessage,
		doc.UploadedAt, doc.ProcessedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	r.logger.Info("document created",
		zap.String("document_id", doc.ID),
		zap.String("application_id", doc.ApplicationID),
		zap.String("type", doc.Type))
	return nil
}

// GetByID returns the document, or nil when no row exists.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.ExtractedDocument, error) {
	row := r.db.QueryRowContext(ctx, selectDocument+" WHERE id = ?", id)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return doc, err
}

// GetByApplicationID returns all documents of an application in upload order.
func (r *DocumentRepository) GetByApplicationID(ctx context.Context, applicationID string) ([]*models.ExtractedDocument, error) {
	rows, err := r.db.QueryContext(ctx,
		selectDocument+" WHERE application_id = ? ORDER BY uploaded_at, id", applicationID)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.ExtractedDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Update persists extraction state changes.
func (r *DocumentRepository) Update(ctx context.Context, doc *models.ExtractedDocument) error {
	fields, err := marshalFields(doc.ExtractedFields)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE documents SET
			status = ?, file_name = ?, storage_path = ?, file_url = ?,
			extracted_fields = ?, raw_text = ?, error_message = ?, processed_at = ?
		WHERE id = ?`,
		doc.Status, doc.FileName, doc.StoragePath, doc.FileURL,
		fields, doc.RawText, doc.ErrorMessage, doc.ProcessedAt, doc.ID)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, models.ErrNotFound)
	}
	return nil
}

// Delete removes a document row.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("document %s: %w", id, models.ErrNotFound)
	}
	return nil
}

const selectDocument = `
	SELECT id, application_id, type, status, file_name, storage_path, file_url,
	       extracted_fields, raw_text, error_message, uploaded_at, processed_at
	FROM documents`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*models.ExtractedDocument, error) {
	var doc models.ExtractedDocument
	var fields string
	var processedAt sql.NullTime

	err := row.Scan(&doc.ID, &doc.ApplicationID, &doc.Type, &doc.Status,
		&doc.FileName, &doc.StoragePath, &doc.FileURL,
		&fields, &doc.RawText, &doc.ErrorMessage, &doc.UploadedAt, &processedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	if fields != "" && fields != "{}" {
		if err := json.Unmarshal([]byte(fields), &doc.ExtractedFields); err != nil {
			return nil, fmt.Errorf("unmarshal extracted fields: %w", err)
		}
	}
	if processedAt.Valid {
		doc.ProcessedAt = &processedAt.Time
	}
	return &doc, nil
}

func marshalFields(fields map[string]interface{}) (string, error) {
	if len(fields) == 0 {
		return "{}", nil
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("marshal extracted fields: %w", err)
	}
	return string(payload), nil
}
