// Package aggregate composes the canonical record, the owner's identity
// fields, and per-type document summaries into the single view consumed by
// letter templates, PDF export, and the review screen.
package aggregate

import (
	"context"
	"fmt"

	"github.com/visaflow/visa-assistant/internal/models"
	"go.uber.org/zap"
)

// ApplicationRepositoryInterface defines the application lookup contract.
type ApplicationRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*models.CanonicalApplicationRecord, error)
}

// DocumentRepositoryInterface defines the document lookup contract.
type DocumentRepositoryInterface interface {
	GetByApplicationID(ctx context.Context, applicationID string) ([]*models.ExtractedDocument, error)
}

// UserRepositoryInterface defines the user lookup contract.
type UserRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Aggregator builds AggregatedApplicationData. It performs no writes.
type Aggregator struct {
	appRepo  ApplicationRepositoryInterface
	docRepo  DocumentRepositoryInterface
	userRepo UserRepositoryInterface
	logger   *zap.Logger
}

// NewAggregator creates a new Aggregator.
func NewAggregator(
	appRepo ApplicationRepositoryInterface,
	docRepo DocumentRepositoryInterface,
	userRepo UserRepositoryInterface,
	logger *zap.Logger,
) *Aggregator {
	return &Aggregator{
		appRepo:  appRepo,
		docRepo:  docRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

// Aggregate loads and composes everything for one application. The requester
// must own the application: a mismatch yields ErrUnauthorized with no detail
// about the actual owner, and a missing application yields ErrNotFound.
func (a *Aggregator) Aggregate(ctx context.Context, applicationID, requesterID string) (*models.AggregatedApplicationData, error) {
	if requesterID == "" {
		return nil, models.ErrUnauthenticated
	}

	record, err := a.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load application: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("application %s: %w", applicationID, models.ErrNotFound)
	}
	if record.UserID != requesterID {
		a.logger.Warn("Ownership mismatch on aggregate request",
			zap.String("application_id", applicationID))
		return nil, models.ErrUnauthorized
	}

	docs, err := a.docRepo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	data := &models.AggregatedApplicationData{
		Record:    record,
		Documents: make([]models.ExtractedDocument, 0, len(docs)),
	}

	user, err := a.userRepo.GetByID(ctx, record.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user != nil {
		data.User = *user
	}

	for _, doc := range docs {
		if doc == nil {
			continue
		}
		data.Documents = append(data.Documents, *doc)
		if doc.Status != models.DocStatusCompleted {
			continue
		}
		a.placeSummary(data, summarize(doc))
	}

	a.logger.Debug("Application data aggregated",
		zap.String("application_id", applicationID),
		zap.Int("documents", len(data.Documents)))

	return data, nil
}

func summarize(doc *models.ExtractedDocument) models.DocumentSummary {
	return models.DocumentSummary{
		DocumentID: doc.ID,
		Type:       doc.Type,
		FileName:   doc.FileName,
		Fields:     doc.ExtractedFields,
		RawText:    doc.RawText,
	}
}

// placeSummary routes a summary to its per-type slot. Singleton types are
// first-wins; list types append in completion order.
func (a *Aggregator) placeSummary(data *models.AggregatedApplicationData, s models.DocumentSummary) {
	switch s.Type {
	case models.DocTypePassport:
		if data.Passport == nil {
			data.Passport = &s
		}
	case models.DocTypeI94:
		if data.I94 == nil {
			data.I94 = &s
		}
	case models.DocTypeI20:
		if data.I20 == nil {
			data.I20 = &s
		}
	case models.DocTypeBankStatement:
		data.BankStatements = append(data.BankStatements, s)
	case models.DocTypeSponsorBankStatement:
		data.SponsorBankStatements = append(data.SponsorBankStatements, s)
	case models.DocTypeAssets, models.DocTypeSponsorAssets:
		data.Assets = append(data.Assets, s)
	case models.DocTypeSupportingDocuments:
		data.TiesDocuments = append(data.TiesDocuments, s)
	case models.DocTypeScholarshipDocument:
		data.ScholarshipDocuments = append(data.ScholarshipDocuments, s)
	case models.DocTypeOtherFunding:
		data.OtherFundingDocuments = append(data.OtherFundingDocuments, s)
	}
}
