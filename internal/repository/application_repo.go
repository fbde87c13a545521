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

// ApplicationRepository stores canonical application records. The record
// itself lives as a JSON column; id, owner, and status are denormalized for
// querying.
type ApplicationRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewApplicationRepository creates a new ApplicationRepository.
func NewApplicationRepository(db *database.DB, logger *zap.Logger) *ApplicationRepository {
	return &ApplicationRepository{db: db, logger: logger}
}

// Create inserts a new application record.
func (r *ApplicationRepository) Create(ctx context.Context, record *models.CanonicalApplicationRecord) error {
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	if record.Status == "" {
		record.Status = models.ApplicationStatusDraft
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal application record: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO applications (id, user_id, status, record, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID, record.UserID, record.Status, string(payload), now, now)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}

	r.logger.Info("application created",
		zap.String("application_id", record.ID),
		zap.String("user_id", record.UserID))
	return nil
}

// GetByID returns the record, or nil when no row exists.
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*models.CanonicalApplicationRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT record FROM applications WHERE id = ?", id)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("query application: %w", err)
	}

	var record models.CanonicalApplicationRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("unmarshal application record: %w", err)
	}
	return &record, nil
}

// ListByUser returns every application owned by userID, newest first.
func (r *ApplicationRepository) ListByUser(ctx context.Context, userID string) ([]*models.CanonicalApplicationRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT record FROM applications WHERE user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	var records []*models.CanonicalApplicationRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		var record models.CanonicalApplicationRecord
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, fmt.Errorf("unmarshal application record: %w", err)
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}

// Update persists the full record.
func (r *ApplicationRepository) Update(ctx context.Context, record *models.CanonicalApplicationRecord) error {
	record.UpdatedAt = time.Now()

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal application record: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE applications SET status = ?, record = ?, updated_at = ?
		WHERE id = ?`,
		record.Status, string(payload), record.UpdatedAt, record.ID)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("application %s: %w", record.ID, models.ErrNotFound)
	}
	return nil
}

// Delete removes an application owned by userID. Foreign keys cascade to
// its documents and generated versions.
func (r *ApplicationRepository) Delete(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM applications WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("application %s: %w", id, models.ErrNotFound)
	}

	r.logger.Info("application deleted", zap.String("application_id", id))
	return nil
}
