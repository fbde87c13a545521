package aggregate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visaflow/visa-assistant/internal/models"
	"go.uber.org/zap"
)

// MockApplicationRepository implements ApplicationRepositoryInterface.
type MockApplicationRepository struct {
	records map[string]*models.CanonicalApplicationRecord
	err     error
}

func (m *MockApplicationRepository) GetByID(_ context.Context, id string) (*models.CanonicalApplicationRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.records[id], nil
}

// MockDocumentRepository implements DocumentRepositoryInterface.
type MockDocumentRepository struct {
	docs map[string][]*models.ExtractedDocument
	err  error
}

func (m *MockDocumentRepository) GetByApplicationID(_ context.Context, applicationID string) ([]*models.ExtractedDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.docs[applicationID], nil
}

// MockUserRepository implements UserRepositoryInterface.
type MockUserRepository struct {
	users map[string]*models.User
}

func (m *MockUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	return m.users[id], nil
}

func newTestAggregator(apps *MockApplicationRepository, docs *MockDocumentRepository, users *MockUserRepository) *Aggregator {
	logger, _ := zap.NewDevelopment()
	if users == nil {
		users = &MockUserRepository{users: map[string]*models.User{}}
	}
	return NewAggregator(apps, docs, users, logger)
}

func completedDoc(id, docType string, fields map[string]interface{}) *models.ExtractedDocument {
	return &models.ExtractedDocument{
		ID:              id,
		Type:            docType,
		Status:          models.DocStatusCompleted,
		ExtractedFields: fields,
	}
}

func TestAggregator_OwnershipAndExistence(t *testing.T) {
	apps := &MockApplicationRepository{
		records: map[string]*models.CanonicalApplicationRecord{
			"app-1": {ID: "app-1", UserID: "user-1"},
		},
	}
	docs := &MockDocumentRepository{docs: map[string][]*models.ExtractedDocument{}}
	agg := newTestAggregator(apps, docs, nil)
	ctx := context.Background()

	t.Run("missing application yields NotFound", func(t *testing.T) {
		_, err := agg.Aggregate(ctx, "missing", "user-1")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("foreign application yields Unauthorized", func(t *testing.T) {
		_, err := agg.Aggregate(ctx, "app-1", "intruder")
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run("missing identity yields Unauthenticated", func(t *testing.T) {
		_, err := agg.Aggregate(ctx, "app-1", "")
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})
}

func TestAggregator_SingletonFirstWinsAndListsAppend(t *testing.T) {
	apps := &MockApplicationRepository{
		records: map[string]*models.CanonicalApplicationRecord{
			"app-1": {ID: "app-1", UserID: "user-1"},
		},
	}
	docs := &MockDocumentRepository{
		docs: map[string][]*models.ExtractedDocument{
			"app-1": {
				completedDoc("p1", models.DocTypePassport, map[string]interface{}{"fullName": "Maria Silva"}),
				completedDoc("p2", models.DocTypePassport, map[string]interface{}{"fullName": "Wrong Person"}),
				completedDoc("b1", models.DocTypeBankStatement, nil),
				completedDoc("b2", models.DocTypeBankStatement, nil),
				completedDoc("s1", models.DocTypeSponsorBankStatement, nil),
				{ID: "pending", Type: models.DocTypeI94, Status: models.DocStatusPending},
			},
		},
	}
	users := &MockUserRepository{users: map[string]*models.User{
		"user-1": {ID: "user-1", FirstName: "Maria", LastName: "Silva", Email: "maria@example.com"},
	}}

	agg := newTestAggregator(apps, docs, users)
	data, err := agg.Aggregate(context.Background(), "app-1", "user-1")
	require.NoError(t, err)

	require.NotNil(t, data.Passport)
	assert.Equal(t, "p1", data.Passport.DocumentID, "first completed passport wins")
	assert.Nil(t, data.I94, "pending documents are not summarized")
	assert.Len(t, data.BankStatements, 2)
	assert.Len(t, data.SponsorBankStatements, 1)
	assert.Len(t, data.Documents, 6, "flat list includes every document regardless of status")
	assert.Equal(t, "maria@example.com", data.User.Email)
}
