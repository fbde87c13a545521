package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/visaflow/visa-assistant/internal/models"
	"github.com/visaflow/visa-assistant/pkg/database"
)

// GeneratedDocumentRepository versions generated letters and statements.
// Every save creates a new row with the next version number and flips the
// is_current flag in the same transaction, so exactly one version per
// document type is current at any time.
type GeneratedDocumentRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewGeneratedDocumentRepository creates a new GeneratedDocumentRepository.
func NewGeneratedDocumentRepository(db *database.DB, logger *zap.Logger) *GeneratedDocumentRepository {
	return &GeneratedDocumentRepository{db: db, logger: logger}
}

// SaveNewVersion stores content as the next version and marks it current.
func (r *GeneratedDocumentRepository) SaveNewVersion(ctx context.Context, applicationID, docType, content string) (*models.GeneratedDocument, error) {
	doc := &models.GeneratedDocument{
		ID:            uuid.NewString(),
		ApplicationID: applicationID,
		DocType:       docType,
		Content:       content,
		IsCurrent:     true,
		CreatedAt:     time.Now(),
	}

	err := r.db.WithTransaction(func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(version), 0) FROM generated_documents
			WHERE application_id = ? AND doc_type = ?`,
			applicationID, docType)

		var maxVersion int
		if err := row.Scan(&maxVersion); err != nil {
			return fmt.Errorf("read max version: %w", err)
		}
		doc.Version = maxVersion + 1

		if _, err := tx.ExecContext(ctx, `
			UPDATE generated_documents SET is_current = 0
			WHERE application_id = ? AND doc_type = ?`,
			applicationID, docType); err != nil {
			return fmt.Errorf("clear current flag: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO generated_documents
				(id, application_id, doc_type, content, version, is_current, created_at)
			VALUES (?, ?, ?, ?, ?, 1, ?)`,
			doc.ID, doc.ApplicationID, doc.DocType, doc.Content, doc.Version, doc.CreatedAt); err != nil {
			return fmt.Errorf("insert generated document: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("generated document saved",
		zap.String("application_id", applicationID),
		zap.String("doc_type", docType),
		zap.Int("version", doc.Version))
	return doc, nil
}

// GetCurrent returns the current version for the document type, or nil when
// nothing was generated yet.
func (r *GeneratedDocumentRepository) GetCurrent(ctx context.Context, applicationID, docType string) (*models.GeneratedDocument, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, application_id, doc_type, content, version, is_current, created_at
		FROM generated_documents
		WHERE application_id = ? AND doc_type = ? AND is_current = 1`,
		applicationID, docType)

	var doc models.GeneratedDocument
	err := row.Scan(&doc.ID, &doc.ApplicationID, &doc.DocType, &doc.Content,
		&doc.Version, &doc.IsCurrent, &doc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query current generated document: %w", err)
	}
	return &doc, nil
}

// ListVersions returns all versions for the document type, newest first.
func (r *GeneratedDocumentRepository) ListVersions(ctx context.Context, applicationID, docType string) ([]*models.GeneratedDocument, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, application_id, doc_type, content, version, is_current, created_at
		FROM generated_documents
		WHERE application_id = ? AND doc_type = ?
		ORDER BY version DESC`,
		applicationID, docType)
	if err != nil {
		return nil, fmt.Errorf("query generated versions: %w", err)
	}
	defer rows.Close()

	var docs []*models.GeneratedDocument
	for rows.Next() {
		var doc models.GeneratedDocument
		if err := rows.Scan(&doc.ID, &doc.ApplicationID, &doc.DocType, &doc.Content,
			&doc.Version, &doc.IsCurrent, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan generated document: %w", err)
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}
