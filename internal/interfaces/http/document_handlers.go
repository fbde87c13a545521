package http

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/visaflow/visa-assistant/internal/models"
	"github.com/visaflow/visa-assistant/internal/worker"
)

const maxUploadBytes = 15 << 20

var allowedUploadExts = map[string]bool{
	".pdf": true, ".jpg": true, ".jpeg": true, ".png": true,
}

// validDocTypes guards the type query parameter on uploads.
var validDocTypes = map[string]bool{
	models.DocTypePassport:             true,
	models.DocTypeI94:                  true,
	models.DocTypeI20:                  true,
	models.DocTypeBankStatement:        true,
	models.DocTypeSponsorBankStatement: true,
	models.DocTypeAssets:               true,
	models.DocTypeSponsorAssets:        true,
	models.DocTypeSupportingDocuments:  true,
	models.DocTypeScholarshipDocument:  true,
	models.DocTypeOtherFunding:         true,
	models.DocTypeDependentPassport:    true,
	models.DocTypeDependentI94:         true,
}

// UploadDocument stores the file, records the document, and enqueues
// extraction. The response is 202: extraction continues in the background
// and its failures never fail the upload.
func (h *Handlers) UploadDocument(c *gin.Context) {
	record, err := h.ownedApplication(c)
	if err != nil {
		writeError(c, err)
		return
	}

	docType := c.PostForm("type")
	if docType == "" {
		docType = c.Query("type")
	}
	if !validDocTypes[docType] {
		c.JSON(http.StatusBadRequest, errorBody{Error: fmt.Sprintf("unknown document type %q", docType)})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "file is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, errorBody{Error: "file too large"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedUploadExts[ext] {
		c.JSON(http.StatusBadRequest, errorBody{Error: fmt.Sprintf("unsupported file type %q", ext)})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		writeError(c, err)
		return
	}
	if len(content) > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, errorBody{Error: "file too large"})
		return
	}

	docID := uuid.NewString()
	storagePath := fmt.Sprintf("%s/%s%s", record.ID, docID, ext)

	fileURL, err := h.blobs.Upload(storagePath, content, contentTypeFor(ext))
	if err != nil {
		writeError(c, err)
		return
	}

	doc := &models.ExtractedDocument{
		ID:            docID,
		ApplicationID: record.ID,
		Type:          docType,
		Status:        models.DocStatusPending,
		FileName:      filepath.Base(fileHeader.Filename),
		StoragePath:   h.blobs.FullPath(storagePath),
		FileURL:       fileURL,
		UploadedAt:    time.Now(),
	}
	if err := h.docs.Create(c.Request.Context(), doc); err != nil {
		writeError(c, err)
		return
	}

	if err := h.queue.Enqueue(worker.ExtractionTask{
		DocumentID:    doc.ID,
		ApplicationID: record.ID,
	}); err != nil {
		// The upload already succeeded; a full queue only delays extraction.
		h.logger.Warn("failed to enqueue extraction",
			zap.String("document_id", doc.ID),
			zap.Error(err))
	}

	c.JSON(http.StatusAccepted, doc)
}

// ListDocuments returns all documents of an owned application.
func (h *Handlers) ListDocuments(c *gin.Context) {
	record, err := h.ownedApplication(c)
	if err != nil {
		writeError(c, err)
		return
	}

	docs, err := h.docs.GetByApplicationID(c.Request.Context(), record.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	if docs == nil {
		docs = []*models.ExtractedDocument{}
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// DeleteDocument removes a document record and its stored file.
func (h *Handlers) DeleteDocument(c *gin.Context) {
	record, err := h.ownedApplication(c)
	if err != nil {
		writeError(c, err)
		return
	}

	docID := c.Param("docID")
	doc, err := h.docs.GetByID(c.Request.Context(), docID)
	if err != nil {
		writeError(c, err)
		return
	}
	if doc == nil || doc.ApplicationID != record.ID {
		writeError(c, fmt.Errorf("document %s: %w", docID, models.ErrNotFound))
		return
	}

	if err := h.docs.Delete(c.Request.Context(), docID); err != nil {
		writeError(c, err)
		return
	}
	if doc.StoragePath != "" {
		if err := h.blobs.Delete(fmt.Sprintf("%s/%s", record.ID, filepath.Base(doc.StoragePath))); err != nil {
			h.logger.Warn("failed to delete stored file",
				zap.String("document_id", docID),
				zap.Error(err))
		}
	}
	c.Status(http.StatusNoContent)
}

// ReprocessDocument re-enqueues extraction for an existing document.
func (h *Handlers) ReprocessDocument(c *gin.Context) {
	record, err := h.ownedApplication(c)
	if err != nil {
		writeError(c, err)
		return
	}

	docID := c.Param("docID")
	doc, err := h.docs.GetByID(c.Request.Context(), docID)
	if err != nil {
		writeError(c, err)
		return
	}
	if doc == nil || doc.ApplicationID != record.ID {
		writeError(c, fmt.Errorf("document %s: %w", docID, models.ErrNotFound))
		return
	}

	if err := h.queue.Enqueue(worker.ExtractionTask{
		DocumentID:    doc.ID,
		ApplicationID: record.ID,
	}); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

// SignUpload issues a signed token for a direct client upload.
func (h *Handlers) SignUpload(c *gin.Context) {
	record, err := h.ownedApplication(c)
	if err != nil {
		writeError(c, err)
		return
	}

	fileName := filepath.Base(c.Query("file_name"))
	if fileName == "" || fileName == "." {
		c.JSON(http.StatusBadRequest, errorBody{Error: "file_name is required"})
		return
	}

	path := fmt.Sprintf("%s/%s", record.ID, fileName)
	token, err := h.blobs.SignedUploadToken(path, 15*time.Minute)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path, "token": token})
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
