package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/visaflow/visa-assistant/internal/models"
)

// applicationInput is the writable subset of the canonical record. Server
// managed fields (id, owner, timestamps) are never bound from the body.
type applicationInput struct {
	ApplicantName  string                  `json:"applicant_name"`
	Email          string                  `json:"email"`
	CurrentAddress string                  `json:"current_address"`
	HomeCountry    string                  `json:"home_country"`
	Ties           models.TiesToCountry    `json:"ties_to_country"`
	HasDependents  bool                    `json:"has_dependents"`
	Dependents     []models.Dependent      `json:"dependents"`
	Financial      models.FinancialSupport `json:"financial_support"`
}

func (in *applicationInput) apply(record *models.CanonicalApplicationRecord) {
	record.ApplicantName = in.ApplicantName
	record.Email = in.Email
	record.CurrentAddress = in.CurrentAddress
	record.HomeCountry = in.HomeCountry
	record.Ties = in.Ties
	record.HasDependents = in.HasDependents
	record.Dependents = in.Dependents
	record.Financial = in.Financial
}

// CreateApplication starts a new draft for the requesting user.
func (h *Handlers) CreateApplication(c *gin.Context) {
	user := currentUser(c)

	var in applicationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	record := &models.CanonicalApplicationRecord{
		ID:     uuid.NewString(),
		UserID: user.ID,
		Status: models.ApplicationStatusDraft,
	}
	in.apply(record)

	if err := h.apps.Create(c.Request.Context(), record); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// ListApplications returns the user's applications.
func (h *Handlers) ListApplications(c *gin.Context) {
	user := currentUser(c)

	records, err := h.apps.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	if records == nil {
		records = []*models.CanonicalApplicationRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"applications": records})
}

// GetApplication returns one owned application.
func (h *Handlers) GetApplication(c *gin.Context) {
	record, err := h.ownedApplication(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// UpdateApplication overwrites the writable record fields.
func (h *Handlers) UpdateApplication(c *gin.Context) {
	record, err := h.ownedApplication(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var in applicationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	in.apply(record)
	if err := h.apps.Update(c.Request.Context(), record); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// DeleteApplication removes an owned application and everything under it.
func (h *Handlers) DeleteApplication(c *gin.Context) {
	record, err := h.ownedApplication(c)
	if err != nil {
		writeError(c, err)
		return
	}

	user := currentUser(c)
	if err := h.apps.Delete(c.Request.Context(), record.ID, user.ID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetRequirements returns the derived document checklist.
func (h *Handlers) GetRequirements(c *gin.Context) {
	record, err := h.ownedApplication(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.resolver.Resolve(record))
}

// GetAggregate returns the full composed view of the application.
func (h *Handlers) GetAggregate(c *gin.Context) {
	user := currentUser(c)

	data, err := h.aggregator.Aggregate(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}
