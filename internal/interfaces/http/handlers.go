package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/visaflow/visa-assistant/internal/aggregate"
	"github.com/visaflow/visa-assistant/internal/export"
	"github.com/visaflow/visa-assistant/internal/formfill"
	"github.com/visaflow/visa-assistant/internal/layout"
	"github.com/visaflow/visa-assistant/internal/letter"
	"github.com/visaflow/visa-assistant/internal/models"
	"github.com/visaflow/visa-assistant/internal/pdf"
	"github.com/visaflow/visa-assistant/internal/requirements"
	"github.com/visaflow/visa-assistant/internal/worker"
)

// ApplicationStore is the application persistence contract.
type ApplicationStore interface {
	Create(ctx context.Context, record *models.CanonicalApplicationRecord) error
	GetByID(ctx context.Context, id string) (*models.CanonicalApplicationRecord, error)
	ListByUser(ctx context.Context, userID string) ([]*models.CanonicalApplicationRecord, error)
	Update(ctx context.Context, record *models.CanonicalApplicationRecord) error
	Delete(ctx context.Context, id, userID string) error
}

// DocumentStore is the uploaded-document persistence contract.
type DocumentStore interface {
	Create(ctx context.Context, doc *models.ExtractedDocument) error
	GetByID(ctx context.Context, id string) (*models.ExtractedDocument, error)
	GetByApplicationID(ctx context.Context, applicationID string) ([]*models.ExtractedDocument, error)
	Delete(ctx context.Context, id string) error
}

// GeneratedStore is the generated-document versioning contract.
type GeneratedStore interface {
	SaveNewVersion(ctx context.Context, applicationID, docType, content string) (*models.GeneratedDocument, error)
	GetCurrent(ctx context.Context, applicationID, docType string) (*models.GeneratedDocument, error)
}

// BlobStore is the blob storage contract.
type BlobStore interface {
	Upload(path string, content []byte, contentType string) (string, error)
	Delete(path string) error
	SignedUploadToken(path string, expiresIn time.Duration) (string, error)
	FullPath(path string) string
}

// StatementGenerator drafts the personal statement.
type StatementGenerator interface {
	Generate(ctx context.Context, record *models.CanonicalApplicationRecord) (string, error)
}

// FormFiller fills the government form from aggregated data.
type FormFiller interface {
	Fill(formBytes []byte, data *models.AggregatedApplicationData) (*formfill.FillResult, error)
}

// FormLocator fetches the government form template.
type FormLocator interface {
	Locate(ctx context.Context) ([]byte, string, error)
}

// Handlers carries every dependency the route handlers need.
type Handlers struct {
	apps       ApplicationStore
	docs       DocumentStore
	generated  GeneratedStore
	blobs      BlobStore
	queue      *worker.Queue
	aggregator *aggregate.Aggregator
	resolver   *requirements.Resolver
	engine     *letter.Engine
	validator  *letter.Validator
	planner    *layout.Planner
	renderer   *pdf.Renderer
	packager   *export.Packager
	statements StatementGenerator
	filler     FormFiller
	locator    FormLocator
	logger     *zap.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(
	apps ApplicationStore,
	docs DocumentStore,
	generated GeneratedStore,
	blobs BlobStore,
	queue *worker.Queue,
	aggregator *aggregate.Aggregator,
	statements StatementGenerator,
	filler FormFiller,
	locator FormLocator,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		apps:       apps,
		docs:       docs,
		generated:  generated,
		blobs:      blobs,
		queue:      queue,
		aggregator: aggregator,
		resolver:   requirements.NewResolver(),
		engine:     letter.NewEngine(logger),
		validator:  letter.NewValidator(logger),
		planner:    layout.NewPlanner(),
		renderer:   pdf.NewRenderer(logger),
		packager:   export.NewPackager(logger),
		statements: statements,
		filler:     filler,
		locator:    locator,
		logger:     logger,
	}
}

// HealthCheck reports liveness and queue depth.
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":        "ok",
		"queue_pending": h.queue.Pending(),
	})
}

// ownedApplication loads the application and enforces ownership.
func (h *Handlers) ownedApplication(c *gin.Context) (*models.CanonicalApplicationRecord, error) {
	user := currentUser(c)
	if user == nil {
		return nil, models.ErrUnauthenticated
	}

	id := c.Param("id")
	record, err := h.apps.GetByID(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("application %s: %w", id, models.ErrNotFound)
	}
	if record.UserID != user.ID {
		h.logger.Warn("ownership mismatch",
			zap.String("application_id", id))
		return nil, models.ErrUnauthorized
	}
	return record, nil
}
