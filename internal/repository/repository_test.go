package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/visaflow/visa-assistant/internal/models"
	"github.com/visaflow/visa-assistant/pkg/database"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zap.NewNop()
	db, err := database.New(database.Config{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(db, logger))
	return db
}

func TestApplicationRepository_CRUD(t *testing.T) {
	db := newTestDB(t)
	repo := NewApplicationRepository(db, zap.NewNop())
	ctx := context.Background()

	record := &models.CanonicalApplicationRecord{
		ID:            "app-1",
		UserID:        "user-1",
		ApplicantName: "Ana Souza",
	}
	require.NoError(t, repo.Create(ctx, record))
	assert.Equal(t, models.ApplicationStatusDraft, record.Status)

	loaded, err := repo.GetByID(ctx, "app-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Ana Souza", loaded.ApplicantName)
	assert.Equal(t, "user-1", loaded.UserID)

	loaded.HomeCountry = "Brazil"
	require.NoError(t, repo.Update(ctx, loaded))

	reloaded, err := repo.GetByID(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, "Brazil", reloaded.HomeCountry)

	list, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// Wrong owner cannot delete.
	assert.ErrorIs(t, repo.Delete(ctx, "app-1", "someone-else"), models.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, "app-1", "user-1"))

	gone, err := repo.GetByID(ctx, "app-1")
	require.NoError(t, err)
	assert.Nil(t, gone, "missing applications return nil, not an error")
}

func TestDocumentRepository_CRUD(t *testing.T) {
	db := newTestDB(t)
	appRepo := NewApplicationRepository(db, zap.NewNop())
	repo := NewDocumentRepository(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, appRepo.Create(ctx, &models.CanonicalApplicationRecord{
		ID: "app-1", UserID: "user-1",
	}))

	doc := &models.ExtractedDocument{
		ID:            "doc-1",
		ApplicationID: "app-1",
		Type:          models.DocTypePassport,
		FileName:      "passport.pdf",
		StoragePath:   "app-1/passport.pdf",
	}
	require.NoError(t, repo.Create(ctx, doc))
	assert.Equal(t, models.DocStatusPending, doc.Status)

	now := time.Now()
	doc.Status = models.DocStatusCompleted
	doc.ExtractedFields = map[string]interface{}{"full_name": "Ana Souza"}
	doc.RawText = "PASSPORT"
	doc.ProcessedAt = &now
	require.NoError(t, repo.Update(ctx, doc))

	loaded, err := repo.GetByID(ctx, "doc-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, models.DocStatusCompleted, loaded.Status)
	assert.Equal(t, "Ana Souza", loaded.ExtractedFields["full_name"])
	require.NotNil(t, loaded.ProcessedAt)

	docs, err := repo.GetByApplicationID(ctx, "app-1")
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	require.NoError(t, repo.Delete(ctx, "doc-1"))
	missing, err := repo.GetByID(ctx, "doc-1")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGeneratedDocumentRepository_Versioning(t *testing.T) {
	db := newTestDB(t)
	appRepo := NewApplicationRepository(db, zap.NewNop())
	repo := NewGeneratedDocumentRepository(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, appRepo.Create(ctx, &models.CanonicalApplicationRecord{
		ID: "app-1", UserID: "user-1",
	}))

	v1, err := repo.SaveNewVersion(ctx, "app-1", models.GeneratedTypeCoverLetter, "first draft")
	require.NoError(t, err)
	assert.Equal(t, 1, v1.Version)

	v2, err := repo.SaveNewVersion(ctx, "app-1", models.GeneratedTypeCoverLetter, "second draft")
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Version)

	current, err := repo.GetCurrent(ctx, "app-1", models.GeneratedTypeCoverLetter)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "second draft", current.Content)
	assert.Equal(t, 2, current.Version)

	versions, err := repo.ListVersions(ctx, "app-1", models.GeneratedTypeCoverLetter)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.True(t, versions[0].IsCurrent)
	assert.False(t, versions[1].IsCurrent, "exactly one version stays current")

	// A different doc type versions independently.
	s1, err := repo.SaveNewVersion(ctx, "app-1", models.GeneratedTypePersonalStatement, "statement")
	require.NoError(t, err)
	assert.Equal(t, 1, s1.Version)

	none, err := repo.GetCurrent(ctx, "app-1", "unknown_type")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestUserRepository_Upsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.User{
		ID: "user-1", FirstName: "Ana", Email: "ana@example.com",
	}))
	require.NoError(t, repo.Upsert(ctx, &models.User{
		ID: "user-1", FirstName: "Ana", LastName: "Souza", Email: "ana@example.com",
	}))

	user, err := repo.GetByID(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Souza", user.LastName)

	missing, err := repo.GetByID(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
